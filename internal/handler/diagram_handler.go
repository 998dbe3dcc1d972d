package handler

import (
	"github.com/gofiber/fiber/v2"

	"devcompass/internal/apperrors"
	"devcompass/internal/service"
)

// DiagramHandler wires HTTP → DiagramService.
type DiagramHandler struct {
	svc *service.DiagramService
}

// NewDiagramHandler returns a struct pointer so you can call Register on it.
func NewDiagramHandler(svc *service.DiagramService) *DiagramHandler {
	return &DiagramHandler{svc: svc}
}

// Register mounts the /diagram endpoint on the supplied router group.
func (h *DiagramHandler) Register(r fiber.Router) {
	r.Get("/diagram/:repo_id", h.diagram)
}

// diagram handles GET /diagram/:repo_id. The first call generates and caches
// the Mermaid script; later calls serve the cached copy.
func (h *DiagramHandler) diagram(c *fiber.Ctx) error {
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
		"diagram": script,
	})
}
