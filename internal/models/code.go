package models

// RepoFile is one source file pulled from a repository tree: path relative
// to the repo root, decoded UTF-8 content, size in bytes and a browsable URL.
type RepoFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
	URL     string `json:"url"`
}

// CodeElement is a single extracted declaration (function or class).
// Line is 1-based; Signature is the raw trimmed declaration line.
// Immutable once produced.
type CodeElement struct {
	Name      string `json:"name"`
	Line      int    `json:"line"`
	Signature string `json:"signature"`
	FilePath  string `json:"file_path"`
}

// CodeSummary holds the full analysis result for one ingested file. It is
// owned by the parent repository's in-process summary collection and never
// persisted; only the derived vector documents reach durable storage.
type CodeSummary struct {
	FilePath  string
	Content   string
	Summary   string
	Functions []CodeElement
	Classes   []CodeElement
	Metadata  map[string]any
}
