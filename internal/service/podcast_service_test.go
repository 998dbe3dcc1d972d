package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devcompass/internal/apperrors"
)

func TestPodcast_GeneratesOnceAndCaches(t *testing.T) {
	fx := newGeneratorFixture(t)
	llm := &fakeLLM{reply: "Hello there! Today, we're diving into demo..."}
	svc := NewPodcastService(fx.repos, fx.vectors, llm)
	ctx := context.Background()

	first, err := svc.GenerateForRepo(ctx, fx.repoID)
	require.NoError(t, err)
	second, err := svc.GenerateForRepo(ctx, fx.repoID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, llm.callCount())

	// The podcast path feeds full document text, not just paths.
	assert.Contains(t, llm.lastPrompt(), "Summary: entry point")
	assert.Contains(t, llm.lastPrompt(), "A deep dive into the demo repository.")
}

func TestPodcast_FailureIsNotCached(t *testing.T) {
	fx := newGeneratorFixture(t)
	llm := &fakeLLM{fail: true}
	svc := NewPodcastService(fx.repos, fx.vectors, llm)
	ctx := context.Background()

	got, err := svc.GenerateForRepo(ctx, fx.repoID)
	require.NoError(t, err)
	assert.Contains(t, got, ErrorAnswerPrefix)

	repo, err := fx.repos.GetByID(fx.repoID)
	require.NoError(t, err)
	assert.Nil(t, repo.PodcastScript)

	llm.setFail(false)
	llm.reply = "a fresh script"
	got, err = svc.GenerateForRepo(ctx, fx.repoID)
	require.NoError(t, err)
	assert.Equal(t, "a fresh script", got)
}

func TestPodcast_UnknownRepoIsNotFound(t *testing.T) {
	fx := newGeneratorFixture(t)
	svc := NewPodcastService(fx.repos, fx.vectors, &fakeLLM{})

	_, err := svc.GenerateForRepo(context.Background(), 999)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTruncateContext_DropsWholeTrailingDocument(t *testing.T) {
	first := strings.Repeat("a", 100)
	second := strings.Repeat("b", 100)
	third := strings.Repeat("c", 100)

	// Budget fits the first two (plus separators) but not the third; the
	// third must be dropped entirely, never sliced.
	got := truncateContext([]string{first, second, third}, 280)

	assert.Contains(t, got, first)
	assert.Contains(t, got, second)
	assert.NotContains(t, got, "c")
}

func TestTruncateContext_EmptyInput(t *testing.T) {
	assert.Empty(t, truncateContext(nil, 100))
}
