package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"devcompass/internal/analysis"
	"devcompass/internal/apperrors"
	"devcompass/internal/github"
	"devcompass/internal/models"
	"devcompass/internal/store"
	"devcompass/internal/vector"
)

// ErrorAnswerPrefix marks a generation failure surfaced as text instead of
// an error, so consumers can tell a failed-but-not-cached answer apart from
// a real one and retry later.
const ErrorAnswerPrefix = "An error occurred"

// documentPreviewLimit is how much raw content each vector document carries
// alongside its summary.
const documentPreviewLimit = 500

// agentInstructions steer the per-repository reasoning agent.
const agentInstructions = `You are a GitHub repository assistant that can answer questions about code repositories.
Ground every answer in the provided code summaries; do not invent facts that are not supported by them.
Provide detailed explanations about code structure, functionality, and relationships.
When explaining code, include file paths and specific function/class names when relevant.`

// Assistant is the knowledge-backed core of the system: it ingests
// repositories into per-repository vector collections and answers questions
// against them through a lazily constructed per-repository agent.
type Assistant struct {
	repos      *store.RepoStore
	gh         *github.Client
	vectors    vector.Store
	summarizer *Summarizer
	llm        LLM
	extensions []string
	workers    int

	// mu guards the lazy per-repository caches below so concurrent first
	// access constructs each agent at most once.
	mu        sync.Mutex
	agents    map[uint]*repoAgent
	summaries map[uint][]models.CodeSummary
}

// NewAssistant wires the stores and AI backends.
func NewAssistant(repos *store.RepoStore, gh *github.Client, vectors vector.Store, llm LLM, extensions []string, workers int) *Assistant {
	if workers <= 0 {
		workers = 1
	}
	return &Assistant{
		repos:      repos,
		gh:         gh,
		vectors:    vectors,
		summarizer: NewSummarizer(llm),
		llm:        llm,
		extensions: extensions,
		workers:    workers,
		agents:     make(map[uint]*repoAgent),
		summaries:  make(map[uint][]models.CodeSummary),
	}
}

// ProcessRepository runs the full ingestion pipeline for one locator:
// fetch tree → extract structure → summarize → embed and store. The
// repository is ready for querying only once every document write has
// completed. Idempotent at the identity level: a known locator keeps its id
// and collection name, and document upserts replace earlier versions.
func (a *Assistant) ProcessRepository(ctx context.Context, repoURL string) (uint, error) {
	log.Printf("[Assistant] processing repository: %s", repoURL)

	repoID, err := a.repos.GetOrCreate(repoURL)
	if err != nil {
		return 0, err
	}

	// Refresh descriptive metadata on every (re-)ingestion.
	meta, err := a.gh.FetchMetadata(ctx, repoURL)
	if err != nil {
		return 0, err
	}
	if err := a.repos.UpdateMetadata(repoID, meta); err != nil {
		return 0, err
	}

	repo, err := a.repos.GetByID(repoID)
	if err != nil {
		return 0, err
	}

	files, err := a.gh.FetchRepoFiles(ctx, repoURL, a.extensions)
	if err != nil {
		return 0, err
	}
	log.Printf("[Assistant] found %d code files in %s", len(files), repoURL)

	// Summarization is independent per file; parallelize it with a bound,
	// keeping results indexed so document assembly stays deterministic.
	summaries := make([]models.CodeSummary, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, file := range files {
		g.Go(func() error {
			functions, classes := analysis.ExtractCodeElements(file.Content, file.Path)
			summary := a.summarizer.Summarize(gctx, file.Content, file.Path, functions, classes)
			summaries[i] = models.CodeSummary{
				FilePath:  file.Path,
				Content:   file.Content,
				Summary:   summary,
				Functions: functions,
				Classes:   classes,
				Metadata: map[string]any{
					"repo_url":  repoURL,
					"repo_id":   repoID,
					"file_size": file.Size,
					"file_url":  file.URL,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	docs := make([]vector.Document, len(summaries))
	for i, cs := range summaries {
		docs[i] = vector.Document{
			ID:   fmt.Sprintf("%d:%s", repoID, cs.FilePath),
			Text: documentText(cs),
			Metadata: map[string]any{
				"file_path": cs.FilePath,
				"repo_url":  repoURL,
				"repo_id":   repoID,
				"type":      "code_file",
			},
		}
	}

	if len(docs) > 0 {
		if err := a.vectors.Add(ctx, repo.CollectionName, docs); err != nil {
			return 0, err
		}
	}

	a.mu.Lock()
	a.summaries[repoID] = summaries
	a.mu.Unlock()

	log.Printf("[Assistant] successfully processed %d files from %s", len(files), repoURL)
	return repoID, nil
}

// Answer retrieves relevant documents for the question and produces a
// grounded answer. Unknown repository ids yield apperrors.ErrNotFound; a
// generation failure yields an error-shaped string, never an error.
func (a *Assistant) Answer(ctx context.Context, repoID uint, question string) (string, error) {
	agent, err := a.agentFor(repoID)
	if err != nil {
		return "", err
	}
	return agent.answer(ctx, question), nil
}

// DeleteRepository removes the durable record (cascading to chat history),
// then best-effort deletes the vector collection and evicts in-process
// state. The two deletions are not transactional: the durable record is
// authoritative, and an orphaned collection is logged, not fatal.
func (a *Assistant) DeleteRepository(ctx context.Context, repoID uint) (bool, error) {
	repo, err := a.repos.GetByID(repoID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	deleted, err := a.repos.Delete(repoID)
	if err != nil || !deleted {
		return false, err
	}

	if err := a.vectors.DeleteCollection(ctx, repo.CollectionName); err != nil {
		log.Printf("[Assistant] could not delete collection %q: %v", repo.CollectionName, err)
	}

	a.mu.Lock()
	delete(a.agents, repoID)
	delete(a.summaries, repoID)
	a.mu.Unlock()

	return true, nil
}

// GetFileSummary returns the in-process summary for one file of a
// repository, if ingestion produced it in this process's lifetime.
func (a *Assistant) GetFileSummary(repoID uint, filePath string) (models.CodeSummary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, cs := range a.summaries[repoID] {
		if cs.FilePath == filePath {
			return cs, true
		}
	}
	return models.CodeSummary{}, false
}

// ListFunctions returns all extracted functions, optionally filtered by file.
func (a *Assistant) ListFunctions(repoID uint, filePath string) []models.CodeElement {
	return a.listElements(repoID, filePath, func(cs models.CodeSummary) []models.CodeElement {
		return cs.Functions
	})
}

// ListClasses returns all extracted classes, optionally filtered by file.
func (a *Assistant) ListClasses(repoID uint, filePath string) []models.CodeElement {
	return a.listElements(repoID, filePath, func(cs models.CodeSummary) []models.CodeElement {
		return cs.Classes
	})
}

func (a *Assistant) listElements(repoID uint, filePath string, pick func(models.CodeSummary) []models.CodeElement) []models.CodeElement {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.CodeElement
	for _, cs := range a.summaries[repoID] {
		if filePath == "" || cs.FilePath == filePath {
			out = append(out, pick(cs)...)
		}
	}
	return out
}

// agentFor returns the repository's cached agent, constructing it at most
// once even under concurrent first access.
func (a *Assistant) agentFor(repoID uint) (*repoAgent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if agent, ok := a.agents[repoID]; ok {
		return agent, nil
	}

	repo, err := a.repos.GetByID(repoID)
	if err != nil {
		return nil, err
	}

	agent := &repoAgent{
		collection: repo.CollectionName,
		vectors:    a.vectors,
		llm:        a.llm,
	}
	a.agents[repoID] = agent
	return agent, nil
}

// repoAgent binds one repository's vector collection to the reasoning
// model: retrieve relevant documents, then generate a grounded answer.
type repoAgent struct {
	collection string
	vectors    vector.Store
	llm        LLM
}

func (r *repoAgent) answer(ctx context.Context, question string) string {
	docs, err := r.vectors.Query(ctx, r.collection, question, 10)
	if err != nil {
		log.Printf("[Agent] retrieval failed for collection %q: %v", r.collection, err)
		return ErrorAnswerPrefix + " while searching the repository knowledge base."
	}
	if len(docs) == 0 {
		return "I couldn't find any relevant code summaries to answer your question. Please try rephrasing it or ask about a different aspect of the codebase."
	}

	var sb strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&sb, "%d. %s\n\n", i+1, doc.Text)
	}

	prompt := fmt.Sprintf(`%s

Question: %s

Relevant code summaries:
%s
Answer the question using only the summaries above.`,
		agentInstructions, question, sb.String())

	answer, err := r.llm.GenerateResponse(ctx, prompt, GenerateOptions{
		MaxTokens:   1500,
		Temperature: 0.3,
	})
	if err != nil {
		log.Printf("[Agent] generation failed for collection %q: %v", r.collection, err)
		return ErrorAnswerPrefix + " while generating the answer. Please try again."
	}
	return answer
}

// documentText assembles the vector document body for one file summary.
func documentText(cs models.CodeSummary) string {
	return fmt.Sprintf(`File: %s

Summary: %s

Functions: %s
Classes: %s

Content Preview:
%s`,
		cs.FilePath,
		cs.Summary,
		elementNames(cs.Functions),
		elementNames(cs.Classes),
		truncate(cs.Content, documentPreviewLimit))
}
