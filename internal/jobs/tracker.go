// Package jobs tracks background ingestion work as explicit per-job state
// records instead of process-wide flags, so concurrent ingestions of
// different repositories can be polled independently.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"devcompass/internal/apperrors"
)

// State is the lifecycle of one ingestion job.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Job is one ingestion run for a repository locator.
type Job struct {
	ID         string     `json:"id"`
	RepoURL    string     `json:"repo_url"`
	RepoID     uint       `json:"repo_id,omitempty"`
	State      State      `json:"state"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Elapsed is how long the job has been (or was) in flight.
func (j Job) Elapsed() time.Duration {
	if j.FinishedAt != nil {
		return j.FinishedAt.Sub(j.StartedAt)
	}
	return time.Since(j.StartedAt)
}

// active reports whether the job still holds its locator's ingestion slot.
func (j Job) active() bool {
	return j.State == StatePending || j.State == StateRunning
}

// Tracker is a mutex-guarded in-memory job table keyed by job id, with a
// per-locator index used to deduplicate concurrent ingestion requests.
type Tracker struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	byLocator map[string]string // repo URL -> latest job id
}

// NewTracker returns an empty job table.
func NewTracker() *Tracker {
	return &Tracker{
		jobs:      make(map[string]*Job),
		byLocator: make(map[string]string),
	}
}

// Start registers a pending job for the locator. If a pending or running
// job for the same locator already exists it is returned instead, with
// created=false: two writers must never ingest into one collection at once.
func (t *Tracker) Start(repoURL string) (job Job, created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byLocator[repoURL]; ok {
		if existing := t.jobs[id]; existing != nil && existing.active() {
			return *existing, false
		}
	}

	j := &Job{
		ID:        uuid.NewString(),
		RepoURL:   repoURL,
		State:     StatePending,
		StartedAt: time.Now(),
	}
	t.jobs[j.ID] = j
	t.byLocator[repoURL] = j.ID
	return *j, true
}

// Running marks the job as in flight.
func (t *Tracker) Running(jobID string) {
	t.transition(jobID, func(j *Job) {
		j.State = StateRunning
	})
}

// Ready marks the job as successfully completed for the given repository id.
func (t *Tracker) Ready(jobID string, repoID uint) {
	t.transition(jobID, func(j *Job) {
		j.State = StateReady
		j.RepoID = repoID
		now := time.Now()
		j.FinishedAt = &now
	})
}

// Failed marks the job as failed with a caller-visible message.
func (t *Tracker) Failed(jobID string, msg string) {
	t.transition(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = msg
		now := time.Now()
		j.FinishedAt = &now
	})
}

// Get returns the job record for an id.
func (t *Tracker) Get(jobID string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[jobID]
	if !ok {
		return Job{}, apperrors.ErrNotFound
	}
	return *j, nil
}

// Latest returns the most recent job for a repository locator.
func (t *Tracker) Latest(repoURL string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.byLocator[repoURL]
	if !ok {
		return Job{}, apperrors.ErrNotFound
	}
	return *t.jobs[id], nil
}

func (t *Tracker) transition(jobID string, apply func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[jobID]; ok {
		apply(j)
	}
}
