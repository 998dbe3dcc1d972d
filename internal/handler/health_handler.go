package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db     *gorm.DB
	vector *mongo.Client
}

func NewHealthHandler(db *gorm.DB, vector *mongo.Client) *HealthHandler {
	return &HealthHandler{
		db:     db,
		vector: vector,
	}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "ok",
		"dbs": fiber.Map{
			"relational": h.checkSQL(),
			"vector":     h.checkMongo(),
		},
	}

	return c.JSON(status)
}

func (h *HealthHandler) checkSQL() string {
	if h.db == nil {
		return "not_configured"
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return "error"
	}
	if err := sqlDB.Ping(); err != nil {
		return "error"
	}
	return "connected"
}

func (h *HealthHandler) checkMongo() string {
	if h.vector == nil {
		return "not_configured"
	}
	if err := h.vector.Ping(context.Background(), nil); err != nil {
		return "error"
	}
	return "connected"
}
