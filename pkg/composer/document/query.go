// ABOUTME: Selector queries over the child list, the model's equivalent of querySelectorAll
// ABOUTME: Selector.Key is the stable cache key used by domcache

package document

import (
	"strconv"
	"strings"
)

// Selector matches children by kind and, optionally, by entity or attachment
// flavour and identity. Zero fields match anything.
type Selector struct {
	Kind           NodeKind
	EntityKind     EntityKind
	AttachmentKind AttachmentKind
	ID             string
}

// Entities selects entity nodes of the given kind ("" for any).
func Entities(k EntityKind) Selector {
	return Selector{Kind: KindEntity, EntityKind: k}
}

// Attachments selects attachment nodes of the given kind ("" for any).
func Attachments(k AttachmentKind) Selector {
	return Selector{Kind: KindAttachment, AttachmentKind: k}
}

// Key returns a canonical string for the selector.
func (s Selector) Key() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	switch s.Kind {
	case KindEntity:
		b.WriteString("[kind=")
		b.WriteString(string(s.EntityKind))
		b.WriteString("]")
	case KindAttachment:
		b.WriteString("[kind=")
		b.WriteString(string(s.AttachmentKind))
		b.WriteString("]")
	}
	if s.ID != "" {
		b.WriteString("[id=")
		b.WriteString(strconv.Quote(s.ID))
		b.WriteString("]")
	}
	return b.String()
}

// Match reports whether n satisfies the selector.
func (s Selector) Match(n *Node) bool {
	if n.kind != s.Kind {
		return false
	}
	switch n.kind {
	case KindEntity:
		if s.EntityKind != "" && n.entity.Kind != s.EntityKind {
			return false
		}
		if s.ID != "" && n.entity.ID != s.ID {
			return false
		}
	case KindAttachment:
		if s.AttachmentKind != "" && n.attachment.Kind != s.AttachmentKind {
			return false
		}
		if s.ID != "" && n.attachment.ID != s.ID {
			return false
		}
	}
	return true
}

// Select returns the children matching sel in document order.
func (d *Document) Select(sel Selector) []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if sel.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of children matching sel.
func (d *Document) Count(sel Selector) int {
	c := 0
	for _, n := range d.nodes {
		if sel.Match(n) {
			c++
		}
	}
	return c
}
