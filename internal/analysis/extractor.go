// Package analysis extracts a best-effort list of function and class
// declarations from source text. It is a line-prefix matcher, not a parser:
// it understands the common `def`/`class` declaration style and silently
// yields nothing for files written in other syntaxes.
package analysis

import (
	"strings"

	"devcompass/internal/models"
)

// ExtractCodeElements scans content line by line (1-indexed) and collects
// function and class declarations. A line counts only when, after trimming
// leading whitespace, it begins with the declaration keyword; a keyword
// that merely appears inside the line (say, in a string literal or behind a
// comment marker) is never matched. Pure and deterministic; no I/O.
func ExtractCodeElements(content, filePath string) (functions, classes []models.CodeElement) {
	for i, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "def "):
			functions = append(functions, models.CodeElement{
				Name:      declaredName(stripped, "def "),
				Line:      i + 1,
				Signature: stripped,
				FilePath:  filePath,
			})
		case strings.HasPrefix(stripped, "class "):
			classes = append(classes, models.CodeElement{
				Name:      declaredName(stripped, "class "),
				Line:      i + 1,
				Signature: stripped,
				FilePath:  filePath,
			})
		}
	}
	return functions, classes
}

// declaredName slices the identifier out of a declaration line: everything
// after the keyword up to the first parameter-list or body-opening marker.
func declaredName(stripped, keyword string) string {
	name := strings.TrimPrefix(stripped, keyword)
	if idx := strings.IndexAny(name, "(:"); idx != -1 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
