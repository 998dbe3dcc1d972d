package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"devcompass/internal/github"
	"devcompass/internal/models"
	"devcompass/internal/store"
	"devcompass/internal/vector"
)

// stallingLLM never answers on its own; it blocks until the caller's
// context expires and records whether that context carried a deadline.
type stallingLLM struct {
	mu           sync.Mutex
	sawDeadlines []bool
}

func (s *stallingLLM) GenerateResponse(ctx context.Context, _ string, _ GenerateOptions) (string, error) {
	_, hasDeadline := ctx.Deadline()
	s.mu.Lock()
	s.sawDeadlines = append(s.sawDeadlines, hasDeadline)
	s.mu.Unlock()

	<-ctx.Done()
	return "", ctx.Err()
}

func (s *stallingLLM) allCallsHadDeadline(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sawDeadlines)
	for _, saw := range s.sawDeadlines {
		assert.True(t, saw)
	}
}

func TestBoundedLLM_DeadlineOnStalledCall(t *testing.T) {
	stall := &stallingLLM{}
	bounded := NewBoundedLLM(stall, 50*time.Millisecond)

	start := time.Now()
	_, err := bounded.GenerateResponse(context.Background(), "prompt", GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	stall.allCallsHadDeadline(t)
}

func TestBoundedLLM_ZeroTimeoutIsPassthrough(t *testing.T) {
	llm := &fakeLLM{reply: "text"}
	assert.Same(t, llm, NewBoundedLLM(llm, 0))
}

func TestBoundedEmbedder_DeadlineOnCall(t *testing.T) {
	var sawDeadline bool
	inner := embedderFunc(func(ctx context.Context, _ string) ([]float32, error) {
		_, sawDeadline = ctx.Deadline()
		return []float32{1}, nil
	})

	_, err := NewBoundedEmbedder(inner, time.Second).Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, sawDeadline)
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

func TestSummarize_StalledBackendFallsBackInsteadOfHanging(t *testing.T) {
	stall := &stallingLLM{}
	summarizer := NewSummarizer(NewBoundedLLM(stall, 50*time.Millisecond))

	start := time.Now()
	got := summarizer.Summarize(context.Background(), "print(1)", "main.py", nil, nil)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "File: main.py\nContent preview: print(1)...", got)
	stall.allCallsHadDeadline(t)
}

// A background ingestion run starts from context.Background(), so the only
// deadline a stalled generative backend ever sees is the bounded wrapper's.
// The run must complete with fallback summaries, not block.
func TestProcessRepository_StalledBackendCompletesWithFallback(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Repository{}, &models.ChatMessage{}))

	srv := newStubGitHub(t)
	gh := github.NewClientWithBaseURL("", srv.URL, 5*time.Second)

	stall := &stallingLLM{}
	repos := store.NewRepoStore(db)
	vectors := vector.NewMemoryStore(fakeEmbedder{})
	assistant := NewAssistant(repos, gh, vectors, NewBoundedLLM(stall, 50*time.Millisecond), []string{".py"}, 2)

	done := make(chan struct{})
	var repoID uint
	go func() {
		defer close(done)
		repoID, err = assistant.ProcessRepository(context.Background(), "https://github.com/octocat/demo")
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("ingestion did not terminate with a stalled generative backend")
	}
	require.NoError(t, err)
	stall.allCallsHadDeadline(t)

	summary, ok := assistant.GetFileSummary(repoID, "main.py")
	require.True(t, ok)
	assert.Contains(t, summary.Summary, "Content preview:")
}
