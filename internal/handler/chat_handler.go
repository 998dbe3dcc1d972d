package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"devcompass/internal/apperrors"
	"devcompass/internal/service"
	"devcompass/internal/store"
)

// ChatHandler wires HTTP → Assistant Q&A plus the chat history store.
type ChatHandler struct {
	assistant *service.Assistant
	chats     *store.ChatStore
}

// NewChatHandler returns a struct pointer so you can call Register on it.
func NewChatHandler(assistant *service.Assistant, chats *store.ChatStore) *ChatHandler {
	return &ChatHandler{assistant: assistant, chats: chats}
}

// Register mounts the chat endpoints on the supplied router group.
func (h *ChatHandler) Register(r fiber.Router) {
	r.Post("/chat/:repo_id", h.chat)
	r.Get("/chat/:repo_id/history", h.history)
}

type chatRequest struct {
	Question string `json:"question"`
}

// chat handles POST /chat/:repo_id  { "question": "..." }
func (h *ChatHandler) chat(c *fiber.Ctx) error {
	repoID, err := parseRepoID(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if req.Question == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}

	answer, err := h.assistant.Answer(c.UserContext(), repoID, req.Question)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, "repository not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// History is best effort; a write failure never loses the answer.
	if err := h.chats.Add(repoID, req.Question, answer); err != nil {
		log.Printf("[Chat] could not save history for repo %d: %v", repoID, err)
	}

	return c.JSON(fiber.Map{
		"repo_id": repoID,
		"answer":  answer,
	})
}

// history handles GET /chat/:repo_id/history
func (h *ChatHandler) history(c *fiber.Ctx) error {
	repoID, err := parseRepoID(c)
	if err != nil {
		return err
	}

	messages, err := h.chats.History(repoID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"repo_id": repoID,
		"history": messages,
	})
}
