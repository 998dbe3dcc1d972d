package service

import (
	"context"
	"log"

	"devcompass/internal/jobs"
)

// IngestService runs repository ingestion as background jobs. The
// triggering caller gets an accepted/processing acknowledgment immediately
// and polls the job state for completion.
type IngestService struct {
	assistant *Assistant
	tracker   *jobs.Tracker
}

// NewIngestService wires the assistant and the job tracker.
func NewIngestService(assistant *Assistant, tracker *jobs.Tracker) *IngestService {
	return &IngestService{assistant: assistant, tracker: tracker}
}

// Start kicks off ingestion for the locator in the background and returns
// the job record. Concurrent requests for the same locator are deduplicated
// onto the already-active job, so one collection never has two writers.
func (s *IngestService) Start(repoURL string) (jobs.Job, bool) {
	job, created := s.tracker.Start(repoURL)
	if !created {
		log.Printf("[Ingest] reusing active job %s for %s", job.ID, repoURL)
		return job, false
	}

	go s.run(job.ID, repoURL)
	return job, true
}

// Status returns the job record for polling.
func (s *IngestService) Status(jobID string) (jobs.Job, error) {
	return s.tracker.Get(jobID)
}

// LatestFor returns the most recent job for a locator.
func (s *IngestService) LatestFor(repoURL string) (jobs.Job, error) {
	return s.tracker.Latest(repoURL)
}

func (s *IngestService) run(jobID, repoURL string) {
	s.tracker.Running(jobID)

	// The job outlives the triggering request; external calls inside the
	// pipeline carry their own timeout boundaries.
	repoID, err := s.assistant.ProcessRepository(context.Background(), repoURL)
	if err != nil {
		log.Printf("[Ingest] job %s failed for %s: %v", jobID, repoURL, err)
		s.tracker.Failed(jobID, err.Error())
		return
	}
	s.tracker.Ready(jobID, repoID)
}
