// ABOUTME: TagManager: idempotent insertion and removal of atomic mention entities at the caret
// ABOUTME: The mention list is always re-derived from entity nodes via Extract, never kept incrementally

// Package tag inserts, removes and extracts mention entities.
package tag

import (
	"regexp"
	"unicode/utf8"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/domcache"
	"github.com/mauromedda/msgcomposer/pkg/composer/selection"
)

// DefaultMatchCap bounds how much typed trigger text an insertion may consume.
const DefaultMatchCap = 50

var (
	// UserTrigger matches a partially typed "@name" before the caret.
	UserTrigger = regexp.MustCompile(`@[^@\s]*$`)
	// AgentTrigger matches a partially typed "/name" before the caret.
	AgentTrigger = regexp.MustCompile(`/[^/\s]*$`)
)

// TriggerFor returns the consume pattern for an entity kind.
func TriggerFor(k document.EntityKind) *regexp.Regexp {
	if k == document.EntityAgent {
		return AgentTrigger
	}
	return UserTrigger
}

// Mention is an entity parsed back out of the document.
type Mention struct {
	Kind        document.EntityKind
	ID          string
	DisplayName string
}

// Manager mutates entity nodes through the selection manager and keeps the
// query cache coherent.
type Manager struct {
	sel      *selection.Manager
	cache    *domcache.Cache
	matchCap int
	log      selection.Logger
}

// New returns a Manager. A non-positive matchCap selects DefaultMatchCap.
func New(sel *selection.Manager, cache *domcache.Cache, matchCap int, log selection.Logger) *Manager {
	if matchCap <= 0 {
		matchCap = DefaultMatchCap
	}
	if log == nil {
		log = selection.NopLogger
	}
	return &Manager{sel: sel, cache: cache, matchCap: matchCap, log: log}
}

// Has reports whether an entity with this id is already in the document.
func (m *Manager) Has(id string) bool {
	if m.sel.Root() == nil {
		return false
	}
	return len(m.cache.Query(document.Selector{Kind: document.KindEntity, ID: id})) > 0
}

// Insert splices n at the caret, consuming the trigger text matched by
// pattern, and optionally follows it with a single space. It returns false
// without mutating anything when the id is empty, the root is not mounted or
// an entity with the same id already exists.
func (m *Manager) Insert(n *document.Node, id document.Identity, pattern *regexp.Regexp, trailingSpace bool) bool {
	if n == nil || id.ID == "" {
		return false
	}
	doc := m.sel.Root()
	if doc == nil {
		return false
	}
	if m.Has(id.ID) {
		return false
	}

	r, ok := m.sel.InsertionRange()
	if !ok {
		return false
	}
	caret := r.End
	if !r.Collapsed() {
		var err error
		if caret, err = doc.DeleteRange(r); err != nil {
			m.log.Warn("tag: clearing selection: %v", err)
			caret = doc.End()
		}
	}
	if pattern != nil {
		caret = m.consumeTrigger(doc, caret, pattern)
	}

	after, err := doc.InsertNode(caret, n)
	if err != nil {
		m.log.Warn("tag: inserting %s %q: %v", id.Kind, id.ID, err)
		m.cache.Clear()
		return false
	}
	if trailingSpace {
		if after, err = doc.InsertText(after, " "); err != nil {
			m.log.Warn("tag: trailing space: %v", err)
		}
	}
	m.sel.Collapse(after)
	m.cache.Clear()
	return true
}

// consumeTrigger deletes the pattern match that ends exactly at the caret
// inside the text run holding (or immediately preceding) the caret.
func (m *Manager) consumeTrigger(doc *document.Document, caret document.Point, pattern *regexp.Regexp) document.Point {
	b, ok := doc.Resolve(caret)
	if !ok {
		return caret
	}
	idx, off := b.Index, b.Offset
	if !b.InText {
		if b.Index == 0 || doc.At(b.Index-1).Kind() != document.KindText {
			return caret
		}
		idx = b.Index - 1
		off = utf8.RuneCountInString(doc.At(idx).Text())
	}
	run := doc.At(idx)
	runes := []rune(run.Text())
	before := string(runes[:off])

	loc := pattern.FindStringIndex(before)
	if loc == nil || loc[1] != len(before) {
		return caret
	}
	span := utf8.RuneCountInString(before[loc[0]:])
	if span == 0 || span > m.matchCap {
		return caret
	}
	start := off - span
	doc.DeleteText(run.ID(), start, off)
	return document.Point{Node: run.ID(), Offset: start}
}

// Remove deletes every entity node carrying id.
func (m *Manager) Remove(id string) bool {
	doc := m.sel.Root()
	if doc == nil || id == "" {
		return false
	}
	n := doc.RemoveWhere(document.Selector{Kind: document.KindEntity, ID: id})
	m.cache.Clear()
	return n > 0
}

// RemoveAt deletes one entity node, as its delete affordance does.
func (m *Manager) RemoveAt(nid document.NodeID) bool {
	doc := m.sel.Root()
	if doc == nil {
		return false
	}
	n, ok := doc.Node(nid)
	if !ok || n.Kind() != document.KindEntity {
		return false
	}
	doc.Remove(nid)
	m.cache.Clear()
	return true
}

// Extract applies parse to every node matching sel and drops the rejects.
// It is a pure query over the current document.
func Extract[T any](m *Manager, sel document.Selector, parse func(*document.Node) (T, bool)) []T {
	if m.sel.Root() == nil {
		return nil
	}
	var out []T
	for _, n := range m.cache.Query(sel) {
		if v, ok := parse(n); ok {
			out = append(out, v)
		}
	}
	return out
}

// ParseMention converts an entity node into a Mention. Nodes with a missing
// id are treated as malformed and skipped.
func ParseMention(n *document.Node) (Mention, bool) {
	e := n.Entity()
	if e == nil || e.ID == "" {
		return Mention{}, false
	}
	return Mention{Kind: e.Kind, ID: e.ID, DisplayName: e.DisplayName}, true
}

// Mentions returns the entities of kind k, deduplicated by id in document order.
func (m *Manager) Mentions(k document.EntityKind) []Mention {
	all := Extract(m, document.Entities(k), ParseMention)
	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, mn := range all {
		if seen[mn.ID] {
			continue
		}
		seen[mn.ID] = true
		out = append(out, mn)
	}
	return out
}
