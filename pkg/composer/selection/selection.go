// ABOUTME: SelectionManager: wraps the host's selection primitives over the document model
// ABOUTME: Every host failure degrades to "no selection"; callers fall back to caret-at-end

// Package selection validates and restores carets against the editable root.
package selection

import (
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

// Host is the editable surface as the platform exposes it.
type Host interface {
	// Root returns the mounted document or nil.
	Root() *document.Document
	// Selection returns the current selection. ok is false when there is none.
	Selection() (r document.Range, ok bool, err error)
	SetSelection(r document.Range)
	Focus()
}

// Logger receives degraded-path diagnostics.
type Logger interface {
	Warn(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...any) {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

// Manager is the selection facade used by every mutating component.
type Manager struct {
	host Host
	log  Logger
}

// New returns a Manager over host. A nil logger discards diagnostics.
func New(host Host, log Logger) *Manager {
	if log == nil {
		log = NopLogger
	}
	return &Manager{host: host, log: log}
}

// Host returns the wrapped host.
func (m *Manager) Host() Host { return m.host }

// Root returns the mounted document or nil.
func (m *Manager) Root() *document.Document {
	if m.host == nil {
		return nil
	}
	return m.host.Root()
}

// CurrentSelection returns the host selection, or false when there is none
// or the host failed to report it.
func (m *Manager) CurrentSelection() (document.Range, bool) {
	if m.host == nil {
		return document.Range{}, false
	}
	r, ok, err := m.host.Selection()
	if err != nil {
		m.log.Warn("selection: host selection failed: %v", err)
		return document.Range{}, false
	}
	return r, ok
}

// ActiveRange returns the first range of the current selection.
func (m *Manager) ActiveRange() (document.Range, bool) {
	return m.CurrentSelection()
}

// IsWithinEditableRoot reports whether both ends of r resolve inside the
// mounted document.
func (m *Manager) IsWithinEditableRoot(r document.Range) bool {
	d := m.Root()
	if d == nil {
		return false
	}
	return d.ContainsPoint(r.Start) && d.ContainsPoint(r.End)
}

// ValidRange returns the active range only when it lies inside the root.
func (m *Manager) ValidRange() (document.Range, bool) {
	r, ok := m.ActiveRange()
	if !ok || !m.IsWithinEditableRoot(r) {
		return document.Range{}, false
	}
	return r, true
}

// Snapshot freezes the active range if it is inside the root.
func (m *Manager) Snapshot() (document.Snapshot, bool) {
	r, ok := m.ValidRange()
	if !ok {
		return document.Snapshot{}, false
	}
	return document.SnapshotOf(r), true
}

// Restore reapplies s, or places the caret at the end when s no longer
// resolves. It reports whether the snapshot itself was used.
func (m *Manager) Restore(s document.Snapshot) bool {
	d := m.Root()
	if d == nil {
		return false
	}
	if !s.ValidIn(d) {
		m.RestoreCaretToEnd()
		return false
	}
	m.host.Focus()
	m.host.SetSelection(s.Range())
	return true
}

// RestoreCaretToEnd focuses the root and collapses the selection to its end.
func (m *Manager) RestoreCaretToEnd() bool {
	_, ok := m.CreateRangeAtDocumentEnd()
	return ok
}

// CreateRangeAtDocumentEnd focuses the root, collapses the selection to its
// end and returns that range.
func (m *Manager) CreateRangeAtDocumentEnd() (document.Range, bool) {
	d := m.Root()
	if d == nil {
		return document.Range{}, false
	}
	r := document.Caret(d.End())
	m.host.Focus()
	m.host.SetSelection(r)
	return r, true
}

// InsertionRange returns the valid active range or falls back to the end
// of the document.
func (m *Manager) InsertionRange() (document.Range, bool) {
	if r, ok := m.ValidRange(); ok {
		return r, true
	}
	return m.CreateRangeAtDocumentEnd()
}

// Collapse places a caret at p.
func (m *Manager) Collapse(p document.Point) {
	if m.host == nil {
		return
	}
	m.host.SetSelection(document.Caret(p))
}
