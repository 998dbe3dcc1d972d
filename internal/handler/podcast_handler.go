package handler

import (
	"github.com/gofiber/fiber/v2"

	"devcompass/internal/apperrors"
	"devcompass/internal/service"
)

// PodcastHandler wires HTTP → PodcastService.
type PodcastHandler struct {
	svc *service.PodcastService
}

// NewPodcastHandler returns a struct pointer so you can call Register on it.
func NewPodcastHandler(svc *service.PodcastService) *PodcastHandler {
	return &PodcastHandler{svc: svc}
}

// Register mounts the /podcast endpoint on the supplied router group.
func (h *PodcastHandler) Register(r fiber.Router) {
	r.Post("/podcast/:repo_id", h.podcast)
}

// podcast handles POST /podcast/:repo_id. Generation is expensive, so the
// script is cached on the repository record after the first success.
func (h *PodcastHandler) podcast(c *fiber.Ctx) error {
	repoID, err := parseRepoID(c)
	if err != nil {
		return err
	}

	script, err := h.svc.GenerateForRepo(c.UserContext(), repoID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "repository not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"repo_id": repoID,
		"script":  script,
	})
}
