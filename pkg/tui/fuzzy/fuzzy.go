// ABOUTME: Thin wrapper over sahilm/fuzzy for matching and highlighting popup rows
// ABOUTME: Highlight styles the runes of a label that matched the typed query

package fuzzy

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match represents a single fuzzy match result.
type Match struct {
	Str            string
	Index          int
	MatchedIndexes []int
	Score          int
}

// Find performs case-insensitive fuzzy matching of pattern against items.
// Returns matches sorted by score (best first).
func Find(pattern string, items []string) []Match {
	results := fuzzy.Find(pattern, items)
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Str:            r.Str,
			Index:          r.Index,
			MatchedIndexes: r.MatchedIndexes,
			Score:          r.Score,
		}
	}
	return matches
}

// Highlight returns label with each matched rune passed through style.
// Unmatched labels and empty patterns come back unchanged.
func Highlight(label, pattern string, style func(string) string) string {
	if pattern == "" || style == nil {
		return label
	}
	ms := Find(pattern, []string{label})
	if len(ms) == 0 {
		return label
	}
	hit := make(map[int]bool, len(ms[0].MatchedIndexes))
	for _, i := range ms[0].MatchedIndexes {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range label {
		if hit[i] {
			b.WriteString(style(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
