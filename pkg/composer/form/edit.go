// ABOUTME: Editing operations on the live document: typing, deletion, caret moves, paste
// ABOUTME: Every mutation collapses the caret, invalidates the query cache and schedules input

package form

import (
	"strings"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/paste"
	"github.com/mauromedda/msgcomposer/pkg/composer/sanitize"
)

func newEntity(kind document.EntityKind, cand Candidate) *document.Node {
	return sanitize.NewEntityNode(kind, cand.ID, cand.DisplayName)
}

// insertionPoint returns the caret to insert at, deleting a non-collapsed
// selection first. It falls back to the document end.
func (c *Composer) insertionPoint() (*document.Document, document.Point, bool) {
	doc := c.sel.Root()
	if doc == nil {
		return nil, document.Point{}, false
	}
	r, ok := c.sel.InsertionRange()
	if !ok {
		return doc, doc.End(), true
	}
	if r.Collapsed() {
		return doc, r.End, true
	}
	p, err := doc.DeleteRange(r)
	if err != nil {
		c.log.Warn("form: deleting selection: %v", err)
		return doc, doc.End(), true
	}
	return doc, p, true
}

func (c *Composer) mutated(p document.Point) {
	c.sel.Collapse(p)
	c.cache.Clear()
	c.Input()
}

// Type inserts s at the caret, replacing any selection.
func (c *Composer) Type(s string) bool {
	if s == "" {
		return false
	}
	doc, p, ok := c.insertionPoint()
	if !ok {
		return false
	}
	after, err := doc.InsertText(p, s)
	if err != nil {
		c.log.Warn("form: typing: %v", err)
		return false
	}
	c.mutated(after)
	return true
}

// BreakLine inserts a newline at the caret, replacing any selection and
// falling back to the end of the document.
func (c *Composer) BreakLine() {
	doc, p, ok := c.insertionPoint()
	if !ok {
		return
	}
	after, err := doc.InsertText(p, "\n")
	if err != nil {
		c.log.Warn("form: line break: %v", err)
		if after, err = doc.InsertText(doc.End(), "\n"); err != nil {
			return
		}
	}
	if h := c.sel.Host(); h != nil {
		h.Focus()
	}
	c.mutated(after)
}

// Backspace deletes the selection or the grapheme (or atomic node) before
// the caret.
func (c *Composer) Backspace() bool {
	return c.erase(func(doc *document.Document, p document.Point) (document.Point, bool) {
		return doc.Backspace(p)
	})
}

// DeleteForward deletes the selection or the grapheme (or atomic node)
// after the caret.
func (c *Composer) DeleteForward() bool {
	return c.erase(func(doc *document.Document, p document.Point) (document.Point, bool) {
		return doc.DeleteForward(p)
	})
}

func (c *Composer) erase(op func(*document.Document, document.Point) (document.Point, bool)) bool {
	doc := c.sel.Root()
	if doc == nil {
		return false
	}
	r, ok := c.sel.ValidRange()
	if !ok {
		r = document.Caret(doc.End())
	}
	if !r.Collapsed() {
		p, err := doc.DeleteRange(r)
		if err != nil {
			c.log.Warn("form: deleting selection: %v", err)
			return false
		}
		c.mutated(p)
		return true
	}
	p, changed := op(doc, r.End)
	if !changed {
		return false
	}
	c.mutated(p)
	return true
}

// MoveCaret moves the caret one position left (delta < 0) or right,
// stepping over atomic nodes whole.
func (c *Composer) MoveCaret(delta int) {
	doc := c.sel.Root()
	if doc == nil {
		return
	}
	p := c.Caret()
	if delta < 0 {
		p = doc.MoveLeft(p)
	} else {
		p = doc.MoveRight(p)
	}
	c.sel.Collapse(p)
	c.Input()
}

// CaretToStart places the caret at the start of the document.
func (c *Composer) CaretToStart() {
	if doc := c.sel.Root(); doc != nil {
		c.sel.Collapse(doc.Start())
		c.Input()
	}
}

// CaretToEnd places the caret at the end of the document.
func (c *Composer) CaretToEnd() {
	c.sel.RestoreCaretToEnd()
	c.Input()
}

// RemoveNode is the delete affordance of an entity or attachment node.
func (c *Composer) RemoveNode(id document.NodeID) bool {
	doc := c.sel.Root()
	if doc == nil {
		return false
	}
	n, ok := doc.Node(id)
	if !ok {
		return false
	}
	switch n.Kind() {
	case document.KindEntity:
		ok = c.tags.RemoveAt(id)
	case document.KindAttachment:
		ok = c.Media(n.Attachment().Kind).Delete(n.Attachment().ID)
	default:
		return false
	}
	if ok {
		c.refresh()
		c.Input()
	}
	return ok
}

// roster resolves pasted tags against the conversation.
func (c *Composer) roster() paste.Roster {
	return paste.RosterFunc(func(kind document.EntityKind, id string) (string, bool) {
		list := c.conv.Users
		if kind == document.EntityAgent {
			list = c.conv.Agents
		}
		for _, cand := range list {
			if cand.ID == id {
				return cand.DisplayName, true
			}
		}
		return "", false
	})
}

// PasteHTML splices a pasted HTML fragment, keeping copied mention tags for
// known identities.
func (c *Composer) PasteHTML(fragment string) error {
	pieces, err := paste.FromHTML(fragment, c.roster())
	if err != nil {
		return err
	}
	return c.paste(pieces)
}

// PasteText splices plain text.
func (c *Composer) PasteText(s string) error {
	return c.paste(paste.FromText(sanitize.Input(strings.ReplaceAll(s, "\r\n", "\n"))))
}

func (c *Composer) paste(pieces []paste.Piece) error {
	if len(pieces) == 0 {
		return nil
	}
	doc, p, ok := c.insertionPoint()
	if !ok {
		return nil
	}
	after, err := paste.Insert(doc, p, pieces, c.tags.Has)
	if err != nil {
		c.log.Warn("form: paste: %v", err)
		after = doc.End()
	}
	c.mutated(after)
	c.refresh()
	return err
}

// HasContent reports whether the input has non-blank text or any atomic node.
func (c *Composer) HasContent() bool {
	doc := c.sel.Root()
	if doc == nil {
		return false
	}
	for _, n := range doc.Nodes() {
		if n.IsAtomic() || strings.TrimSpace(n.Text()) != "" {
			return true
		}
	}
	return false
}

// Clear empties the input, releasing every attachment handle.
func (c *Composer) Clear() {
	c.closePopup()
	for _, m := range c.media {
		m.Clear()
	}
	if doc := c.sel.Root(); doc != nil {
		doc.Clear()
	}
	c.cache.Clear()
	if c.debounce != nil {
		c.debounce.Flush()
	}
	c.refresh()
}
