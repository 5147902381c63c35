// ABOUTME: URL presentation helpers: link target normalization and shortened alt titles

package linear

import (
	"fmt"
	"regexp"
	"strings"
)

// UnknownSite labels a link whose preview has no title.
const UnknownSite = "unknown site"

var longTitle = regexp.MustCompile(`^(\S{8})\S+(\S{4})$`)

// ShortenTitle elides the middle of a single long word.
func ShortenTitle(title string) string {
	if title == "" {
		return UnknownSite
	}
	return longTitle.ReplaceAllString(title, "$1...$2")
}

// AltTitle is the hover text of a link token.
func AltTitle(title, raw string) string {
	return fmt.Sprintf("%s (%s)", ShortenTitle(title), raw)
}

// Href returns raw as a navigable target. Relative paths and URLs with a
// scheme pass through; bare hosts get http://.
func Href(raw string) string {
	if strings.HasPrefix(raw, "/") || strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}
