package service

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"devcompass/internal/store"
	"devcompass/internal/vector"
)

// podcastErrorAnswer is returned (and never cached) when generation fails.
const podcastErrorAnswer = ErrorAnswerPrefix + " while generating the podcast script."

// podcastContextBudget caps how much corpus text is fed into the generative
// call. A trailing document that would exceed the budget is dropped whole,
// never sliced mid-document.
const podcastContextBudget = 6500

// PodcastService generates (and caches) a narrated episode script about a
// repository from the full document dump of its vector collection.
type PodcastService struct {
	repos   *store.RepoStore
	vectors vector.Store
	llm     LLM
}

// NewPodcastService wires dependencies.
func NewPodcastService(repos *store.RepoStore, vectors vector.Store, llm LLM) *PodcastService {
	return &PodcastService{repos: repos, vectors: vectors, llm: llm}
}

// GenerateForRepo returns the cached podcast script when present, otherwise
// generates one from the repository's full corpus, caches it on success and
// returns it. Unknown ids surface apperrors.ErrNotFound.
func (s *PodcastService) GenerateForRepo(ctx context.Context, repoID uint) (string, error) {
	repo, err := s.repos.GetByID(repoID)
	if err != nil {
		return "", err
	}

	if repo.PodcastScript != nil && *repo.PodcastScript != "" {
		log.Printf("[Podcast] returning cached script for repo %d", repoID)
		return *repo.PodcastScript, nil
	}

	docs, err := s.vectors.Dump(ctx, repo.CollectionName)
	if err != nil {
		log.Printf("[Podcast] dump failed for collection %q: %v", repo.CollectionName, err)
		return podcastErrorAnswer, nil
	}
	if len(docs) == 0 {
		log.Printf("[Podcast] no context stored for repo %d; has it been processed?", repoID)
		return podcastErrorAnswer, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	corpus := truncateContext(texts, podcastContextBudget)
	topic := fmt.Sprintf("A deep dive into the %s repository.", path.Base(repo.RepoURL))

	script, err := s.generate(ctx, repo.RepoURL, topic, corpus)
	if err != nil {
		log.Printf("[Podcast] generation failed for repo %d: %v", repoID, err)
		return podcastErrorAnswer, nil
	}

	if err := s.repos.SetPodcastScript(repoID, script); err != nil {
		log.Printf("[Podcast] could not cache script for repo %d: %v", repoID, err)
	}
	return script, nil
}

// truncateContext concatenates documents until adding the next would exceed
// the character budget; the remainder is dropped entirely.
func truncateContext(docs []string, maxChars int) string {
	var sb strings.Builder
	for _, doc := range docs {
		if sb.Len()+len(doc) > maxChars {
			break
		}
		sb.WriteString("\n\n---\n\n")
		sb.WriteString(doc)
	}
	return sb.String()
}

func (s *PodcastService) generate(ctx context.Context, repoURL, topic, corpus string) (string, error) {
	prompt := fmt.Sprintf(`You are the host of "Code Cast," a podcast that breaks down software projects for developers.
Your task is to create a short, engaging podcast script based on the provided information.

Podcast Details:
- Repository: %s
- Episode Topic: %s

Context from the repository's documentation and code summaries:
---
%s
---

Instructions:
1. Start with a catchy intro: "Hello there! Today, we're diving into..."
2. Use the provided context to explain the repository and the episode's topic in a clear, conversational, and slightly enthusiastic tone.
3. Structure the script like a monologue. You can use sections like "What is it?", "How does it work?", and "Key Takeaways".
4. Do not just repeat the context. Synthesize it into a narrative.
5. Conclude with a summary and a teaser for the next episode.
6. The script should be approximately 2-3 minutes long when read aloud.

Now, generate the podcast script.`,
		repoURL, topic, corpus)

	return s.llm.GenerateResponse(ctx, prompt, GenerateOptions{
		MaxTokens:   1500,
		Temperature: 0.4,
	})
}
