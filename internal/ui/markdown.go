// ABOUTME: Markdown renderer wrapper around glamour for transcript bodies
// ABOUTME: Caches rendered results keyed by content hash, width and palette

package ui

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer wraps glamour to render markdown with caching.
type MarkdownRenderer struct {
	cache map[string]string // "hash:width:style" -> rendered
}

// NewMarkdownRenderer creates a MarkdownRenderer with an empty cache.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{cache: make(map[string]string)}
}

// Render returns the terminal-styled rendering of md. On a glamour error
// the raw text is returned.
func (r *MarkdownRenderer) Render(md string, width int, dark bool) string {
	if md == "" {
		return ""
	}
	style := "light"
	if dark {
		style = "dark"
	}
	if width < 10 {
		width = 10
	}

	key := cacheKey(md, width, style)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	// glamour pads with blank lines and trailing spaces
	rendered = strings.Trim(rendered, "\n")
	rendered = strings.TrimRight(rendered, " ")

	r.cache[key] = rendered
	return rendered
}

// cacheKey produces a string key from content hash, width and style.
func cacheKey(content string, width int, style string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d:%s", h[:8], width, style)
}
