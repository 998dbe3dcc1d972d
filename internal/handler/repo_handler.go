package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"devcompass/internal/apperrors"
	"devcompass/internal/service"
	"devcompass/internal/store"
)

// RepoHandler wires HTTP → the repository store and assistant lookups.
type RepoHandler struct {
	assistant *service.Assistant
	repos     *store.RepoStore
}

// NewRepoHandler returns a struct pointer so you can call Register on it.
func NewRepoHandler(assistant *service.Assistant, repos *store.RepoStore) *RepoHandler {
	return &RepoHandler{assistant: assistant, repos: repos}
}

// Register mounts the repository endpoints on the supplied router group.
func (h *RepoHandler) Register(r fiber.Router) {
	r.Get("/repos", h.list)
	r.Get("/repos/:repo_id", h.get)
	r.Delete("/repos/:repo_id", h.remove)
	r.Get("/repo-by-url", h.getByURL)
}

// list handles GET /repos
func (h *RepoHandler) list(c *fiber.Ctx) error {
	repos, err := h.repos.List()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"repositories": repos})
}

// get handles GET /repos/:repo_id
func (h *RepoHandler) get(c *fiber.Ctx) error {
	repoID, err := parseRepoID(c)
	if err != nil {
		return err
	}

	repo, err := h.repos.GetByID(repoID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "repository not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(repo)
}

// getByURL handles GET /repo-by-url?url=...
func (h *RepoHandler) getByURL(c *fiber.Ctx) error {
	repoURL := c.Query("url")
	if repoURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "url is required")
	}

	repo, err := h.repos.GetByURL(repoURL)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "repository not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(repo)
}

// remove handles DELETE /repos/:repo_id and clears both the relational record
// and the vector collection.
func (h *RepoHandler) remove(c *fiber.Ctx) error {
	repoID, err := parseRepoID(c)
	if err != nil {
		return err
	}

	deleted, err := h.assistant.DeleteRepository(c.UserContext(), repoID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !deleted {
		return fiber.NewError(fiber.StatusNotFound, "repository not found")
	}
	return c.JSON(fiber.Map{"deleted": true, "repo_id": repoID})
}

// parseRepoID reads the :repo_id route parameter shared by several handlers.
func parseRepoID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("repo_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "repo_id must be a positive integer")
	}
	return uint(id), nil
}
