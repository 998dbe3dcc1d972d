package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devcompass/internal/apperrors"
	"devcompass/internal/jobs"
)

func TestIngestService_BackgroundJobCompletes(t *testing.T) {
	fx := newAssistantFixture(t)
	svc := NewIngestService(fx.assistant, jobs.NewTracker())

	job, created := svc.Start("https://github.com/octocat/demo")
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, err := svc.Status(job.ID)
		return err == nil && got.State == jobs.StateReady
	}, 5*time.Second, 10*time.Millisecond)

	got, err := svc.Status(job.ID)
	require.NoError(t, err)
	assert.NotZero(t, got.RepoID)
	assert.NotNil(t, got.FinishedAt)
}

func TestIngestService_FailedFetchReportsErrorState(t *testing.T) {
	fx := newAssistantFixture(t)
	svc := NewIngestService(fx.assistant, jobs.NewTracker())

	job, created := svc.Start("https://github.com/octocat/missing")
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, err := svc.Status(job.ID)
		return err == nil && got.State == jobs.StateFailed
	}, 5*time.Second, 10*time.Millisecond)

	got, err := svc.Status(job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Error)
}

func TestIngestService_StatusUnknownJob(t *testing.T) {
	fx := newAssistantFixture(t)
	svc := NewIngestService(fx.assistant, jobs.NewTracker())

	_, err := svc.Status("no-such-job")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestIngestService_LatestFor(t *testing.T) {
	fx := newAssistantFixture(t)
	svc := NewIngestService(fx.assistant, jobs.NewTracker())

	job, _ := svc.Start("https://github.com/octocat/demo")

	latest, err := svc.LatestFor("https://github.com/octocat/demo")
	require.NoError(t, err)
	assert.Equal(t, job.ID, latest.ID)
}
