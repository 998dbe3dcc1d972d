package store

import (
	"gorm.io/gorm"

	"devcompass/internal/apperrors"
	"devcompass/internal/models"
)

// ChatStore persists the append-only chat history per repository.
type ChatStore struct {
	db *gorm.DB
}

// NewChatStore wires the database handle.
func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

// Add appends one question/answer exchange to the repository's history.
func (s *ChatStore) Add(repoID uint, query, response string) error {
	msg := models.ChatMessage{
		RepoID:   repoID,
		Query:    query,
		Response: response,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return apperrors.NewFatal("chat add", err)
	}
	return nil
}

// History returns the repository's chat messages in timestamp order.
func (s *ChatStore) History(repoID uint) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	err := s.db.Where("repo_id = ?", repoID).Order("timestamp asc").Find(&history).Error
	if err != nil {
		return nil, apperrors.NewFatal("chat history", err)
	}
	return history, nil
}
