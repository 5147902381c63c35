// ABOUTME: Stateless sanitizer and safe factory for entity nodes inserted into the document
// ABOUTME: Strips attribute-breaking characters, caps attribute length, normalizes to NFC

// Package sanitize cleans user-derived strings before they become node
// attributes or display text.
package sanitize

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

// MaxAttrLen bounds attribute values; longer values are dropped entirely.
const MaxAttrLen = 100

var stripper = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "", "&", "")

// Input removes characters that could break attribute serialization and
// normalizes the result to NFC.
func Input(s string) string {
	if s == "" {
		return ""
	}
	return norm.NFC.String(stripper.Replace(s))
}

// Attr sanitizes an attribute value. It reports false when the value is too
// long to be trusted.
func Attr(s string) (string, bool) {
	s = Input(s)
	if len([]rune(s)) >= MaxAttrLen {
		return "", false
	}
	return s, true
}

// Trigger returns the literal prefix for an entity kind.
func Trigger(k document.EntityKind) string {
	if k == document.EntityAgent {
		return "/"
	}
	return "@"
}

// NewEntityNode builds a detached entity node with sanitized fields. It
// returns nil when the id is empty or an attribute is unusable.
func NewEntityNode(k document.EntityKind, id, displayName string) *document.Node {
	id, ok := Attr(id)
	if !ok || id == "" {
		return nil
	}
	name, ok := Attr(displayName)
	if !ok {
		return nil
	}
	title := "@" + name
	if k == document.EntityAgent {
		title = "AI agent " + name
	}
	return document.NewEntity(document.Entity{
		Identity:    document.Identity{Kind: k, ID: id},
		DisplayName: name,
		DisplayText: Trigger(k) + name,
		Title:       title,
	})
}
