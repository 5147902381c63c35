// ABOUTME: In-memory Host: a document, an optional selection and a focus flag
// ABOUTME: Used by the terminal UI and by tests; Err simulates a failing platform API

package selection

import "github.com/mauromedda/msgcomposer/pkg/composer/document"

// MemoryHost keeps the selection next to the document it belongs to.
type MemoryHost struct {
	Doc     *document.Document
	Sel     document.Range
	HasSel  bool
	Focused bool
	// Err, when set, is returned from Selection.
	Err error
}

// NewMemoryHost mounts a fresh empty document.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{Doc: document.New()}
}

// Root implements Host.
func (h *MemoryHost) Root() *document.Document { return h.Doc }

// Selection implements Host.
func (h *MemoryHost) Selection() (document.Range, bool, error) {
	if h.Err != nil {
		return document.Range{}, false, h.Err
	}
	return h.Sel, h.HasSel, nil
}

// SetSelection implements Host.
func (h *MemoryHost) SetSelection(r document.Range) {
	h.Sel = r
	h.HasSel = true
}

// Focus implements Host.
func (h *MemoryHost) Focus() { h.Focused = true }

// Blur drops focus and the selection.
func (h *MemoryHost) Blur() {
	h.Focused = false
	h.HasSel = false
}

// Caret returns the focus end of the selection, or the end of the document.
func (h *MemoryHost) Caret() document.Point {
	if h.HasSel && h.Doc.ContainsPoint(h.Sel.End) {
		return h.Sel.End
	}
	return h.Doc.End()
}
