// Package store provides gorm-backed persistence for repository records and
// chat history. Vector documents live elsewhere; this layer is the
// authoritative record of which repositories exist.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"

	"gorm.io/gorm"

	"devcompass/internal/apperrors"
	"devcompass/internal/models"
)

// RepoStore is the repository metadata & cache store.
type RepoStore struct {
	db *gorm.DB
}

// NewRepoStore wires the database handle.
func NewRepoStore(db *gorm.DB) *RepoStore {
	return &RepoStore{db: db}
}

// CollectionNameFor derives the vector-collection identifier for a locator.
// Deterministic, so the same URL always maps to the same collection.
func CollectionNameFor(repoURL string) string {
	sum := sha256.Sum256([]byte(repoURL))
	return "repo_" + hex.EncodeToString(sum[:])[:12]
}

// GetOrCreate returns the id of the repository with the given locator,
// creating the record (with its derived collection name) on first sight.
// Idempotent: re-ingesting a known locator reuses the existing identity.
func (s *RepoStore) GetOrCreate(repoURL string) (uint, error) {
	var repo models.Repository
	err := s.db.Where("repo_url = ?", repoURL).First(&repo).Error
	if err == nil {
		return repo.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.NewFatal("repo lookup", err)
	}

	repo = models.Repository{
		RepoURL:        repoURL,
		CollectionName: CollectionNameFor(repoURL),
	}
	if err := s.db.Create(&repo).Error; err != nil {
		return 0, apperrors.NewFatal("repo create", err)
	}
	return repo.ID, nil
}

// GetByID fetches the full repository record.
func (s *RepoStore) GetByID(id uint) (models.Repository, error) {
	var repo models.Repository
	err := s.db.First(&repo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Repository{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.Repository{}, apperrors.NewFatal("repo get", err)
	}
	return repo, nil
}

// GetByURL fetches the full repository record by its locator.
func (s *RepoStore) GetByURL(repoURL string) (models.Repository, error) {
	var repo models.Repository
	err := s.db.Where("repo_url = ?", repoURL).First(&repo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Repository{}, apperrors.ErrNotFound
	}
	if err != nil {
		return models.Repository{}, apperrors.NewFatal("repo get by url", err)
	}
	return repo, nil
}

// List returns all repositories; order is unspecified.
func (s *RepoStore) List() ([]models.Repository, error) {
	var repos []models.Repository
	if err := s.db.Find(&repos).Error; err != nil {
		return nil, apperrors.NewFatal("repo list", err)
	}
	return repos, nil
}

// UpdateMetadata refreshes the fetched GitHub metadata on the record.
// Partial by construction: only the descriptive fields are touched.
func (s *RepoStore) UpdateMetadata(id uint, meta models.RepoMetadata) error {
	lastActivity := ""
	if len(meta.LastCommits) > 0 {
		if raw, err := json.Marshal(meta.LastCommits); err == nil {
			lastActivity = string(raw)
		} else {
			log.Printf("[RepoStore] could not encode commit history for repo %d: %v", id, err)
		}
	}

	updates := map[string]any{
		"name":          meta.Name,
		"description":   meta.Description,
		"stars":         meta.Stars,
		"forks":         meta.Forks,
		"issues":        meta.Issues,
		"license":       meta.License,
		"owner":         meta.Owner,
		"last_activity": lastActivity,
	}

	res := s.db.Model(&models.Repository{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperrors.NewFatal("repo metadata update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetDiagramScript caches a generated diagram script for the repository.
func (s *RepoStore) SetDiagramScript(id uint, script string) error {
	return s.setScript(id, "diagram_script", script)
}

// SetPodcastScript caches a generated podcast script for the repository.
func (s *RepoStore) SetPodcastScript(id uint, script string) error {
	return s.setScript(id, "podcast_script", script)
}

func (s *RepoStore) setScript(id uint, column, script string) error {
	res := s.db.Model(&models.Repository{}).Where("id = ?", id).Update(column, script)
	if res.Error != nil {
		return apperrors.NewFatal("cache "+column, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes the repository record; owned chat messages go with it via
// the foreign-key cascade. The caller is separately responsible for the
// matching vector collection; the two deletions are not transactional.
func (s *RepoStore) Delete(id uint) (bool, error) {
	res := s.db.Select("ChatMessages").Delete(&models.Repository{ID: id})
	if res.Error != nil {
		return false, apperrors.NewFatal("repo delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}
