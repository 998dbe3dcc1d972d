package database

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"devcompass/internal/models"
)

// NewSQLite opens (creating the parent directory if needed) the SQLite
// database holding Repository and ChatMessage records, and migrates the
// schema. Foreign keys are enabled so the Repository → ChatMessage cascade
// actually fires.
func NewSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.Repository{}, &models.ChatMessage{}); err != nil {
		return nil, err
	}

	return db, nil
}
