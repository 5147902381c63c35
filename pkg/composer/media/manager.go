// ABOUTME: Attachment manager: one placeholder node per insert, count cap, handle lifecycle
// ABOUTME: Insert runs on the UI goroutine; Pending.Load probes metadata off it; Resolve commits

// Package media inserts image, video and file placeholders into the
// document and tracks their preview handles and upload state.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/domcache"
	"github.com/mauromedda/msgcomposer/pkg/composer/selection"
)

// DefaultMaxCount is the per-kind attachment cap.
const DefaultMaxCount = 9

// Probe derives metadata from a source file. It runs outside the UI
// goroutine and must not touch the document.
type Probe func(ctx context.Context, f document.File) (document.Metadata, error)

// Config parameterizes one manager instance.
type Config struct {
	Kind     document.AttachmentKind
	MaxCount int
	// MaxBytes rejects larger sources when positive.
	MaxBytes int64
	// Allowed reports whether the current conversation accepts this kind.
	// Nil means always allowed.
	Allowed func() bool
	Probe   Probe
	// ProbeTimeout bounds one metadata load. Zero means no bound.
	ProbeTimeout time.Duration
}

// Manager is one Idle -> Inserting -> Ready | Failed state machine per node.
type Manager struct {
	cfg   Config
	sel   *selection.Manager
	cache *domcache.Cache
	reg   *Registry
	log   selection.Logger
}

// New returns a manager for cfg.Kind.
func New(cfg Config, sel *selection.Manager, cache *domcache.Cache, reg *Registry, log selection.Logger) *Manager {
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = DefaultMaxCount
	}
	if reg == nil {
		reg = NewRegistry()
	}
	if log == nil {
		log = selection.NopLogger
	}
	return &Manager{cfg: cfg, sel: sel, cache: cache, reg: reg, log: log}
}

// Kind returns the attachment kind handled by m.
func (m *Manager) Kind() document.AttachmentKind { return m.cfg.Kind }

// MaxCount returns the configured cap.
func (m *Manager) MaxCount() int { return m.cfg.MaxCount }

// Registry returns the handle registry.
func (m *Manager) Registry() *Registry { return m.reg }

// Pending is an inserted placeholder whose metadata has not resolved yet.
type Pending struct {
	Node  document.NodeID
	ID    string
	file  document.File
	probe Probe
	limit time.Duration
}

// Result is what Load hands back to the UI goroutine.
type Result struct {
	Node document.NodeID
	ID   string
	Meta document.Metadata
	Err  error
}

// Load runs the probe. It is safe to call from any goroutine.
func (p *Pending) Load(ctx context.Context) Result {
	res := Result{Node: p.Node, ID: p.ID}
	if p.probe == nil {
		return res
	}
	if p.limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.limit)
		defer cancel()
	}
	res.Meta, res.Err = p.probe(ctx, p.file)
	return res
}

// Insert validates preconditions, then splices a placeholder at the caret
// and moves the caret after it in one step. Rejections leave the document
// untouched and return a *RejectError.
func (m *Manager) Insert(f document.File, displayName string) (*Pending, error) {
	kind := m.cfg.Kind
	one, many := noun(kind)
	doc := m.sel.Root()
	if doc == nil {
		return nil, reject(kind, ErrNotMounted, "composer is not ready")
	}
	if m.cfg.Allowed != nil && !m.cfg.Allowed() {
		return nil, reject(kind, ErrKindForbidden, "this conversation does not accept %s", many)
	}
	if m.Count() >= m.cfg.MaxCount {
		return nil, reject(kind, ErrLimitReached, "at most %d %s per message", m.cfg.MaxCount, many)
	}
	size := f.Size
	if size == 0 {
		size = int64(len(f.Data))
	}
	if m.cfg.MaxBytes > 0 && size > m.cfg.MaxBytes {
		return nil, reject(kind, ErrTooLarge, "%s exceeds %s", one, humanBytes(m.cfg.MaxBytes))
	}
	f.Size = size

	if h := m.sel.Host(); h != nil {
		h.Focus()
	}
	r, ok := m.sel.InsertionRange()
	if !ok {
		return nil, reject(kind, ErrNotMounted, "composer is not ready")
	}

	handle := m.reg.Allocate(f.Data)
	if displayName == "" {
		displayName = f.Name
	}
	if displayName == "" {
		displayName = one
	}
	att := &document.Attachment{
		ID:          handle.URL,
		Kind:        kind,
		File:        f,
		DisplayName: displayName,
		Status:      document.StatusPending,
		Handle:      handle,
	}
	node := document.NewAttachment(att)

	caret := r.End
	if !r.Collapsed() {
		var err error
		if caret, err = doc.DeleteRange(r); err != nil {
			caret = doc.End()
		}
	}
	after, err := doc.InsertNode(caret, node)
	if err != nil {
		handle.Release()
		m.cache.Clear()
		return nil, fmt.Errorf("inserting %s: %w", one, err)
	}
	m.sel.Collapse(after)
	m.cache.Clear()

	return &Pending{Node: node.ID(), ID: att.ID, file: f, probe: m.cfg.Probe, limit: m.cfg.ProbeTimeout}, nil
}

// Resolve commits a probe result on the UI goroutine. A result for a node
// that is gone is dropped with ErrDetached. A failed probe marks the node
// failed, releases its handle and returns a *RejectError wrapping ErrMetadata.
func (m *Manager) Resolve(res Result) error {
	doc := m.sel.Root()
	if doc == nil {
		return ErrDetached
	}
	n, ok := doc.Node(res.Node)
	if !ok || !n.Attached() || n.Attachment() == nil {
		return ErrDetached
	}
	att := n.Attachment()
	if res.Err != nil {
		one, _ := noun(m.cfg.Kind)
		rej := &RejectError{Kind: m.cfg.Kind, Reason: one + " could not be loaded", Err: fmt.Errorf("%w: %w", ErrMetadata, res.Err)}
		att.Status = document.StatusFailed
		att.Err = rej
		if att.Handle != nil {
			att.Handle.Release()
			att.Handle = nil
		}
		m.log.Warn("media: %s %s: %v", one, att.ID, res.Err)
		return rej
	}
	att.Meta = res.Meta
	att.Ready = true
	return nil
}

// InsertAndWait inserts and resolves synchronously. Meant for callers that
// do not run an event loop.
func (m *Manager) InsertAndWait(ctx context.Context, f document.File, displayName string) (document.NodeID, error) {
	p, err := m.Insert(f, displayName)
	if err != nil {
		return 0, err
	}
	if err := m.Resolve(p.Load(ctx)); err != nil {
		return p.Node, err
	}
	return p.Node, nil
}

func (m *Manager) selector() document.Selector {
	return document.Attachments(m.cfg.Kind)
}

// Count returns the number of nodes of this kind, read from the document.
func (m *Manager) Count() int {
	if m.sel.Root() == nil {
		return 0
	}
	return len(m.cache.Query(m.selector()))
}

// GetAll returns the descriptors of every ready, non-failed node.
func (m *Manager) GetAll() []*document.Attachment {
	if m.sel.Root() == nil {
		return nil
	}
	var out []*document.Attachment
	for _, n := range m.cache.Query(m.selector()) {
		a := n.Attachment()
		if a == nil || !a.Ready || a.Status == document.StatusFailed {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Clear removes every node of this kind and releases every handle. Safe to
// call on an empty or unmounted document.
func (m *Manager) Clear() {
	doc := m.sel.Root()
	if doc == nil {
		return
	}
	if doc.RemoveWhere(m.selector()) > 0 {
		m.cache.Clear()
	}
}

// Delete removes one node, releasing its handle first.
func (m *Manager) Delete(id string) bool {
	n, ok := m.find(id)
	if !ok {
		return false
	}
	m.sel.Root().Remove(n.ID())
	m.cache.Clear()
	return true
}

// SetProgress records upload progress reported by the transport.
func (m *Manager) SetProgress(id string, percent int) bool {
	n, ok := m.find(id)
	if !ok {
		return false
	}
	n.Attachment().Percent = max(0, min(100, percent))
	return true
}

// MarkUploaded stores the stable key returned by the transport.
func (m *Manager) MarkUploaded(id, key string) bool {
	n, ok := m.find(id)
	if !ok {
		return false
	}
	a := n.Attachment()
	a.Status = document.StatusUploaded
	a.Percent = 100
	a.Key = key
	return true
}

// MarkFailed records an upload failure.
func (m *Manager) MarkFailed(id string, err error) bool {
	n, ok := m.find(id)
	if !ok {
		return false
	}
	a := n.Attachment()
	a.Status = document.StatusFailed
	a.Err = err
	return true
}

func (m *Manager) find(id string) (*document.Node, bool) {
	doc := m.sel.Root()
	if doc == nil || id == "" {
		return nil, false
	}
	sel := m.selector()
	sel.ID = id
	nodes := m.cache.Query(sel)
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
