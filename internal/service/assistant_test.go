package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"devcompass/internal/apperrors"
	"devcompass/internal/github"
	"devcompass/internal/models"
	"devcompass/internal/store"
	"devcompass/internal/vector"
)

const pythonFile = `def hello(name):
    return name

class Greeter:
    pass
`

// newStubGitHub serves a three-file repository: one Python file, one
// markdown file and one binary image.
func newStubGitHub(t *testing.T) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	entry := func(name, typ string, size int) map[string]any {
		return map[string]any{
			"name": name, "path": name, "type": typ, "size": size,
			"html_url": "https://github.com/octocat/demo/blob/main/" + name,
		}
	}
	fileBody := func(name, content string) map[string]any {
		return map[string]any{
			"name": name, "path": name, "type": "file", "size": len(content),
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
			"encoding": "base64",
			"html_url": "https://github.com/octocat/demo/blob/main/" + name,
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octocat/demo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name": "demo", "description": "a demo repo",
			"stargazers_count": 7, "forks_count": 2, "open_issues_count": 1,
			"default_branch": "main",
			"license":        map[string]any{"spdx_id": "MIT"},
			"owner":          map[string]any{"login": "octocat"},
		})
	})
	mux.HandleFunc("/repos/octocat/demo/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{
			"sha": "abc123", "html_url": "https://github.com/octocat/demo/commit/abc123",
			"commit": map[string]any{
				"message": "initial commit",
				"author":  map[string]any{"name": "octocat", "date": "2024-01-01T00:00:00Z"},
			},
		}})
	})
	mux.HandleFunc("/repos/octocat/demo/contents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []any{
			entry("main.py", "file", len(pythonFile)),
			entry("README.md", "file", 20),
			entry("logo.png", "file", 1024),
		})
	})
	mux.HandleFunc("/repos/octocat/demo/contents/main.py", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fileBody("main.py", pythonFile))
	})
	mux.HandleFunc("/repos/octocat/demo/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fileBody("README.md", "# demo\n\nhello there"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type assistantFixture struct {
	assistant *Assistant
	repos     *store.RepoStore
	vectors   *vector.MemoryStore
	llm       *fakeLLM
}

func newAssistantFixture(t *testing.T) assistantFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Repository{}, &models.ChatMessage{}))

	srv := newStubGitHub(t)
	gh := github.NewClientWithBaseURL("", srv.URL, 5*time.Second)

	llm := &fakeLLM{reply: "a grounded answer about main.py"}
	repos := store.NewRepoStore(db)
	vectors := vector.NewMemoryStore(fakeEmbedder{})
	assistant := NewAssistant(repos, gh, vectors, llm, []string{".py", ".go"}, 2)

	return assistantFixture{assistant: assistant, repos: repos, vectors: vectors, llm: llm}
}

func TestProcessRepository_EndToEnd(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	repoID, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)

	// Only main.py matches the allowed extensions; the markdown and the
	// binary never become documents.
	repo, err := fx.repos.GetByID(repoID)
	require.NoError(t, err)
	assert.Equal(t, 1, fx.vectors.Count(repo.CollectionName))

	docs, err := fx.vectors.Dump(ctx, repo.CollectionName)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "main.py", docs[0].Metadata["file_path"])
	assert.Equal(t, "code_file", docs[0].Metadata["type"])
	assert.Contains(t, docs[0].Text, "File: main.py")

	functions := fx.assistant.ListFunctions(repoID, "")
	require.Len(t, functions, 1)
	assert.Equal(t, "hello", functions[0].Name)

	classes := fx.assistant.ListClasses(repoID, "")
	require.Len(t, classes, 1)
	assert.Equal(t, "Greeter", classes[0].Name)

	// Metadata was flattened onto the durable record.
	assert.Equal(t, "demo", repo.Name)
	assert.Equal(t, 7, repo.Stars)
	assert.Equal(t, "MIT", repo.License)
	assert.Contains(t, repo.LastActivity, "abc123")
}

func TestProcessRepository_ReingestKeepsIdentityAndUpserts(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	first, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)
	second, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	repo, err := fx.repos.GetByID(first)
	require.NoError(t, err)
	// Upsert semantics: re-ingestion replaces, it does not duplicate.
	assert.Equal(t, 1, fx.vectors.Count(repo.CollectionName))
}

func TestProcessRepository_UnknownRepoIsNotFound(t *testing.T) {
	fx := newAssistantFixture(t)

	_, err := fx.assistant.ProcessRepository(context.Background(), "https://github.com/octocat/missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAnswer_GroundedInRetrievedDocuments(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	repoID, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)

	answer, err := fx.assistant.Answer(ctx, repoID, "what does hello do?")
	require.NoError(t, err)
	assert.Equal(t, "a grounded answer about main.py", answer)

	// The agent's prompt carries the retrieved document text.
	assert.Contains(t, fx.llm.lastPrompt(), "File: main.py")
	assert.Contains(t, fx.llm.lastPrompt(), "what does hello do?")
}

func TestAnswer_UnknownRepoIsNotFound(t *testing.T) {
	fx := newAssistantFixture(t)

	_, err := fx.assistant.Answer(context.Background(), 999, "anything")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAnswer_GenerationFailureIsErrorShapedString(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	repoID, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)

	fx.llm.setFail(true)
	answer, err := fx.assistant.Answer(ctx, repoID, "what does hello do?")
	require.NoError(t, err)
	assert.Contains(t, answer, ErrorAnswerPrefix)
}

func TestDeleteRepository_Barrier(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	repoID, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)
	repo, err := fx.repos.GetByID(repoID)
	require.NoError(t, err)

	deleted, err := fx.assistant.DeleteRepository(ctx, repoID)
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.False(t, fx.vectors.HasCollection(repo.CollectionName))

	_, err = fx.assistant.Answer(ctx, repoID, "still there?")
	assert.True(t, apperrors.IsNotFound(err))

	assert.Empty(t, fx.assistant.ListFunctions(repoID, ""))

	// Deleting an already-deleted repository reports false, not an error.
	deleted, err = fx.assistant.DeleteRepository(ctx, repoID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAgentFor_ConstructedOnceUnderConcurrency(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	repoID, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)

	const n = 16
	agents := make([]*repoAgent, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agent, err := fx.assistant.agentFor(repoID)
			assert.NoError(t, err)
			agents[i] = agent
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, agents[0], agents[i], fmt.Sprintf("agent %d differs", i))
	}
}

func TestGetFileSummary(t *testing.T) {
	fx := newAssistantFixture(t)
	ctx := context.Background()

	repoID, err := fx.assistant.ProcessRepository(ctx, "https://github.com/octocat/demo")
	require.NoError(t, err)

	summary, ok := fx.assistant.GetFileSummary(repoID, "main.py")
	require.True(t, ok)
	assert.Equal(t, pythonFile, summary.Content)

	_, ok = fx.assistant.GetFileSummary(repoID, "nope.py")
	assert.False(t, ok)
}

func TestAnswer_EmptyRetrievalGivesGuidanceNotError(t *testing.T) {
	fx := newAssistantFixture(t)

	// Known repository, but nothing ingested yet: retrieval comes back empty.
	repoID, err := fx.repos.GetOrCreate("https://github.com/octocat/demo")
	require.NoError(t, err)

	answer, err := fx.assistant.Answer(context.Background(), repoID, "what does this repo do?")
	require.NoError(t, err)
	assert.Contains(t, answer, "couldn't find any relevant code summaries")
	assert.NotContains(t, answer, ErrorAnswerPrefix)
	assert.Zero(t, fx.llm.callCount())
}
