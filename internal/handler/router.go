package handler

import (
	"github.com/gofiber/fiber/v2"

	"devcompass/internal/service"
	"devcompass/internal/store"
)

func RegisterRoutes(app *fiber.App,
	ingestSvc *service.IngestService,
	assistant *service.Assistant,
	diagramSvc *service.DiagramService,
	podcastSvc *service.PodcastService,
	repos *store.RepoStore,
	chats *store.ChatStore,
) {

	v1 := app.Group("/api/v1")
	NewIngestHandler(ingestSvc).Register(v1)
	NewChatHandler(assistant, chats).Register(v1)
	NewDiagramHandler(diagramSvc).Register(v1)
	NewPodcastHandler(podcastSvc).Register(v1)
	NewRepoHandler(assistant, repos).Register(v1)
}
