package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"devcompass/internal/store"
	"devcompass/internal/vector"
)

// diagramErrorAnswer is returned (and never cached) when generation fails,
// so a later request retries instead of serving a poisoned cache entry.
const diagramErrorAnswer = ErrorAnswerPrefix + " while generating the diagram."

// DiagramService generates (and caches) a Mermaid graph of a repository's
// file structure from the vector store's metadata dump.
type DiagramService struct {
	repos   *store.RepoStore
	vectors vector.Store
	llm     LLM
}

// NewDiagramService wires dependencies.
func NewDiagramService(repos *store.RepoStore, vectors vector.Store, llm LLM) *DiagramService {
	return &DiagramService{repos: repos, vectors: vectors, llm: llm}
}

// GenerateForRepo returns the cached diagram script when present, otherwise
// generates one from the repository's file paths, caches it on success and
// returns it. Unknown ids surface apperrors.ErrNotFound.
func (s *DiagramService) GenerateForRepo(ctx context.Context, repoID uint) (string, error) {
	repo, err := s.repos.GetByID(repoID)
	if err != nil {
		return "", err
	}

	if repo.DiagramScript != nil && *repo.DiagramScript != "" {
		log.Printf("[Diagram] returning cached diagram for repo %d", repoID)
		return *repo.DiagramScript, nil
	}

	// The diagram needs the whole file tree, not a relevant subset, so it
	// reads the raw metadata dump rather than going through the agent.
	docs, err := s.vectors.Dump(ctx, repo.CollectionName)
	if err != nil {
		log.Printf("[Diagram] dump failed for collection %q: %v", repo.CollectionName, err)
		return diagramErrorAnswer, nil
	}

	var filePaths []string
	for _, doc := range docs {
		if p, ok := doc.Metadata["file_path"].(string); ok && p != "" {
			filePaths = append(filePaths, p)
		}
	}
	if len(filePaths) == 0 {
		log.Printf("[Diagram] no file paths stored for repo %d; has it been processed?", repoID)
		return diagramErrorAnswer, nil
	}

	script, err := s.generate(ctx, repo.RepoURL, filePaths)
	if err != nil {
		log.Printf("[Diagram] generation failed for repo %d: %v", repoID, err)
		return diagramErrorAnswer, nil
	}

	if err := s.repos.SetDiagramScript(repoID, script); err != nil {
		// The script is still valid; only the cache write failed.
		log.Printf("[Diagram] could not cache diagram for repo %d: %v", repoID, err)
	}
	return script, nil
}

func (s *DiagramService) generate(ctx context.Context, repoURL string, filePaths []string) (string, error) {
	var fileList strings.Builder
	for _, p := range filePaths {
		fmt.Fprintf(&fileList, "- %s\n", p)
	}

	prompt := fmt.Sprintf(`You are an expert at creating Mermaid diagrams. Your task is to generate a Mermaid graph that visualizes the file structure of a GitHub repository.

Repository: %s

File Structure:
%s
Instructions:
1. Create a graph TD (top-down tree graph).
2. Represent directories and files as nodes. Use the full path for uniqueness if necessary, but render only the base name.
3. Show the hierarchy by connecting directories to their subdirectories and files.
4. Do not include the root directory '.' in the graph.
5. Provide only the Mermaid code block, starting with `+"```mermaid and ending with ```"+`. Do not add any other explanation.

Now, generate the Mermaid graph for the provided file structure.`,
		repoURL, fileList.String())

	return s.llm.GenerateResponse(ctx, prompt, GenerateOptions{
		MaxTokens:   2000,
		Temperature: 0.1,
	})
}
