package models

import "time"

// Repository is the durable record for one ingested GitHub repository.
// RepoURL is the unique locator; CollectionName is derived from it once at
// creation time and never changes afterwards. DiagramScript and
// PodcastScript are lazily populated caches, cleared only when the record
// is deleted.
type Repository struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RepoURL        string    `gorm:"uniqueIndex;not null" json:"repo_url"`
	CollectionName string    `gorm:"not null" json:"collection_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"last_updated"`

	// Cached generated artifacts (nullable).
	DiagramScript *string `gorm:"type:text" json:"-"`
	PodcastScript *string `gorm:"type:text" json:"-"`

	// Fetched GitHub metadata, refreshed on every re-ingestion.
	Name         string `json:"name"`
	Description  string `gorm:"type:text" json:"description"`
	Stars        int    `json:"stars"`
	Forks        int    `json:"forks"`
	Issues       int    `json:"issues"`
	License      string `json:"license"`
	Owner        string `json:"owner"`
	LastActivity string `gorm:"type:text" json:"last_activity"` // JSON-encoded []CommitInfo

	ChatMessages []ChatMessage `gorm:"foreignKey:RepoID;constraint:OnDelete:CASCADE" json:"-"`
}

// ChatMessage is one question/answer exchange against a repository.
// Append-only; removed in cascade when the owning Repository is deleted.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RepoID    uint      `gorm:"index;not null" json:"repo_id"`
	Query     string    `gorm:"type:text;not null" json:"query"`
	Response  string    `gorm:"type:text;not null" json:"response"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// CommitInfo is one entry of a repository's recent-commit history.
type CommitInfo struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// RepoMetadata carries the descriptive stats fetched from GitHub before
// they are flattened onto the Repository record.
type RepoMetadata struct {
	Name        string
	Description string
	Stars       int
	Forks       int
	Issues      int
	License     string
	Owner       string
	LastCommits []CommitInfo
}
