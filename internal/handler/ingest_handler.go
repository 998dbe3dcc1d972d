package handler

import (
	"github.com/gofiber/fiber/v2"

	"devcompass/internal/apperrors"
	"devcompass/internal/service"
)

// IngestHandler wires HTTP → IngestService.
type IngestHandler struct {
	svc *service.IngestService
}

// NewIngestHandler returns a struct pointer so you can call Register on it.
func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// Register mounts the ingestion endpoints on the supplied router group.
func (h *IngestHandler) Register(r fiber.Router) {
	r.Post("/setup", h.setup)
	r.Get("/status/:job_id", h.status)
	r.Get("/status", h.latest)
}

type setupRequest struct {
	RepoURL string `json:"repo_url"`
}

// setup handles POST /setup  { "repo_url": "https://github.com/owner/name" }.
// Ingestion runs in the background; the response carries the job to poll.
func (h *IngestHandler) setup(c *fiber.Ctx) error {
	var req setupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if req.RepoURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "repo_url is required")
	}

	job, created := h.svc.Start(req.RepoURL)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job":     job,
		"started": created,
	})
}

// status handles GET /status/:job_id
func (h *IngestHandler) status(c *fiber.Ctx) error {
	jobID := c.Params("job_id")

	job, err := h.svc.Status(jobID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "unknown job")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(job)
}

// latest handles GET /status?repo_url=... and reports the most recent
// ingestion job for that repository locator.
func (h *IngestHandler) latest(c *fiber.Ctx) error {
	repoURL := c.Query("repo_url")
	if repoURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "repo_url is required")
	}

	job, err := h.svc.LatestFor(repoURL)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "no ingestion recorded for repository")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(job)
}
