package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"devcompass/internal/apperrors"
	"devcompass/internal/models"
)

// Client is a minimal wrapper around GitHub's REST API v3.
// It covers just the endpoints our services require.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient returns a ready-to-use GitHub API client.
// token may be an empty string, but unauthenticated requests hit very low rate limits.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.github.com",
		token:   token,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(token, baseURL string, timeout time.Duration) *Client {
	c := NewClient(token, timeout)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// ParseRepoURL splits a repository locator such as
// "https://github.com/torvalds/linux" into ("torvalds", "linux").
func ParseRepoURL(repoURL string) (owner, name string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	idx := strings.Index(trimmed, "github.com/")
	if idx == -1 {
		return "", "", fmt.Errorf("github: not a repository URL: %s", repoURL)
	}
	parts := strings.Split(trimmed[idx+len("github.com/"):], "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("github: not a repository URL: %s", repoURL)
	}
	return parts[0], parts[1], nil
}

// contentEntry mirrors one object of the repository contents API.
type contentEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file" | "dir" | "symlink" | "submodule"
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	HTMLURL  string `json:"html_url"`
}

// FetchRepoFiles pulls every file from the repository whose extension is in
// extensions, walking directory entries depth-first in the order the API
// lists them. A single file's decode failure is logged and the file is
// skipped; it never aborts the fetch. An unreachable repository surfaces as
// apperrors.ErrNotFound.
func (c *Client) FetchRepoFiles(ctx context.Context, repoURL string, extensions []string) ([]models.RepoFile, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[ext] = true
	}

	var files []models.RepoFile
	if err := c.walkContents(ctx, owner, name, "", allowed, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// walkContents recurses through one directory of the contents API.
func (c *Client) walkContents(ctx context.Context, owner, name, dir string, allowed map[string]bool, out *[]models.RepoFile) error {
	var entries []contentEntry
	if err := c.getJSON(ctx, c.contentsURL(owner, name, dir), &entries); err != nil {
		return err
	}

	for _, entry := range entries {
		switch entry.Type {
		case "dir":
			if err := c.walkContents(ctx, owner, name, entry.Path, allowed, out); err != nil {
				return err
			}
		case "file":
			if !allowed[path.Ext(entry.Path)] {
				continue
			}
			file, err := c.fetchFile(ctx, owner, name, entry)
			if err != nil {
				// Partial-failure tolerance: skip the file, keep the fetch alive.
				log.Printf("[GitHub] skipping %s: %v", entry.Path, err)
				continue
			}
			*out = append(*out, file)
		}
	}
	return nil
}

// fetchFile reads and decodes a single file's base64 content.
func (c *Client) fetchFile(ctx context.Context, owner, name string, entry contentEntry) (models.RepoFile, error) {
	var full contentEntry
	if err := c.getJSON(ctx, c.contentsURL(owner, name, entry.Path), &full); err != nil {
		return models.RepoFile{}, err
	}
	if full.Encoding != "base64" {
		return models.RepoFile{}, fmt.Errorf("unexpected encoding %q", full.Encoding)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(full.Content, "\n", ""))
	if err != nil {
		return models.RepoFile{}, fmt.Errorf("base64 decode: %w", err)
	}
	if !utf8.Valid(raw) {
		return models.RepoFile{}, fmt.Errorf("content is not valid UTF-8")
	}

	return models.RepoFile{
		Path:    entry.Path,
		Content: string(raw),
		Size:    entry.Size,
		URL:     entry.HTMLURL,
	}, nil
}

// repoResponse mirrors the subset of GET /repos/{owner}/{repo} we use.
type repoResponse struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Stars           int    `json:"stargazers_count"`
	Forks           int    `json:"forks_count"`
	OpenIssuesCount int    `json:"open_issues_count"`
	DefaultBranch   string `json:"default_branch"`
	License         *struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// commitResponse mirrors one entry of GET /repos/{owner}/{repo}/commits.
type commitResponse struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// FetchMetadata reads the repository's descriptive stats plus up to three
// recent commits on the default branch.
func (c *Client) FetchMetadata(ctx context.Context, repoURL string) (models.RepoMetadata, error) {
	owner, name, err := ParseRepoURL(repoURL)
	if err != nil {
		return models.RepoMetadata{}, apperrors.ErrNotFound
	}

	var repo repoResponse
	u := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(name))
	if err := c.getJSON(ctx, u, &repo); err != nil {
		return models.RepoMetadata{}, err
	}

	meta := models.RepoMetadata{
		Name:        repo.Name,
		Description: repo.Description,
		Stars:       repo.Stars,
		Forks:       repo.Forks,
		Issues:      repo.OpenIssuesCount,
		Owner:       repo.Owner.Login,
	}
	if repo.License != nil {
		meta.License = repo.License.SPDXID
	}

	var commits []commitResponse
	cu := fmt.Sprintf("%s/repos/%s/%s/commits?sha=%s&per_page=3",
		c.baseURL, url.PathEscape(owner), url.PathEscape(name), url.QueryEscape(repo.DefaultBranch))
	if err := c.getJSON(ctx, cu, &commits); err != nil {
		// Commit history is decorative; metadata without it is still useful.
		log.Printf("[GitHub] could not list commits for %s/%s: %v", owner, name, err)
		return meta, nil
	}
	for _, commit := range commits {
		meta.LastCommits = append(meta.LastCommits, models.CommitInfo{
			SHA:     commit.SHA,
			Message: commit.Commit.Message,
			Author:  commit.Commit.Author.Name,
			Date:    commit.Commit.Author.Date,
			URL:     commit.HTMLURL,
		})
	}
	return meta, nil
}

// contentsURL builds the contents API URL for a path within the repo.
func (c *Client) contentsURL(owner, name, p string) string {
	u := fmt.Sprintf("%s/repos/%s/%s/contents", c.baseURL, url.PathEscape(owner), url.PathEscape(name))
	if p != "" {
		escaped := make([]string, 0, 4)
		for _, seg := range strings.Split(p, "/") {
			escaped = append(escaped, url.PathEscape(seg))
		}
		u += "/" + strings.Join(escaped, "/")
	}
	return u
}

// getJSON executes an authenticated GET and decodes the JSON body into v.
// 404 maps to apperrors.ErrNotFound; everything else network-shaped becomes
// a TransientError.
func (c *Client) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewTransient("github", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return apperrors.NewTransient("github", fmt.Errorf("unexpected status %s", resp.Status))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// addHeaders sets authentication and Accept headers.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "devcompass-api")
}
