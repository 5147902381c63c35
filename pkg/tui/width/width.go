// ABOUTME: Display width of plain strings with grapheme-aware segmentation
// ABOUTME: Truncation and caret-column helpers for rendering composer labels and lines

package width

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Ellipsis is the default truncation tail.
const Ellipsis = "…"

// VisibleWidth returns the display width of s in terminal cells. Grapheme
// clusters count once, East Asian wide characters and emoji count twice.
func VisibleWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += graphemeWidth(cluster)
	}
	return w
}

// isPlainASCII returns true if s contains only printable ASCII (0x20-0x7E).
func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}

// graphemeWidth returns the display width of a single grapheme cluster.
func graphemeWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

// Truncate shortens s to at most max cells, ending with tail when cut.
// Clusters are never split.
func Truncate(s string, max int, tail string) string {
	if max <= 0 {
		return ""
	}
	if VisibleWidth(s) <= max {
		return s
	}
	tw := VisibleWidth(tail)
	if tw >= max {
		tail, tw = "", 0
	}

	var b strings.Builder
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := graphemeWidth(cluster)
		if w+cw > max-tw {
			break
		}
		b.WriteString(cluster)
		w += cw
	}
	b.WriteString(tail)
	return b.String()
}

// Column returns the caret column after s: the width of its last line.
func Column(s string) int {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return VisibleWidth(s)
}

// PadRight pads s with spaces to w cells.
func PadRight(s string, w int) string {
	if n := w - VisibleWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
