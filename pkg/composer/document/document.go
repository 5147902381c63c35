// ABOUTME: EditableDocument: ordered child list of text runs and atomic nodes
// ABOUTME: All mutations bump Version; every removal path releases attachment handles

package document

import (
	"errors"
	"strings"

	"github.com/rivo/uniseg"
)

var (
	// ErrForeignPoint is returned when a point does not resolve in the document.
	ErrForeignPoint = errors.New("point is not inside the document")
	// ErrAttached is returned when inserting a node that already has an owner.
	ErrAttached = errors.New("node is already attached")
)

// Document is the live model of the composer surface.
// Not safe for concurrent use; the composer runs on a single goroutine.
type Document struct {
	root    NodeID
	nodes   []*Node
	version uint64
}

// New creates an empty document.
func New() *Document {
	return &Document{root: newID()}
}

// Root returns the identifier of the editable root.
func (d *Document) Root() NodeID { return d.root }

// Version increases on every mutation. Caches compare it to detect staleness.
func (d *Document) Version() uint64 { return d.version }

// Len returns the number of children.
func (d *Document) Len() int { return len(d.nodes) }

// At returns child i.
func (d *Document) At(i int) *Node { return d.nodes[i] }

// Nodes returns a copy of the child list.
func (d *Document) Nodes() []*Node {
	out := make([]*Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// IndexOf returns the child index of id, or -1.
func (d *Document) IndexOf(id NodeID) int {
	for i, n := range d.nodes {
		if n.id == id {
			return i
		}
	}
	return -1
}

// Node returns the child with the given id.
func (d *Document) Node(id NodeID) (*Node, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.nodes[i], true
	}
	return nil, false
}

// Contains reports whether id is the root or one of its children.
func (d *Document) Contains(id NodeID) bool {
	return id == d.root || d.IndexOf(id) >= 0
}

// IsEmpty reports whether the document has no children or only empty text runs.
func (d *Document) IsEmpty() bool {
	for _, n := range d.nodes {
		if n.kind != KindText || n.text != "" {
			return false
		}
	}
	return true
}

// Text returns the logical text of the whole document.
func (d *Document) Text() string {
	var b strings.Builder
	for _, n := range d.nodes {
		b.WriteString(n.LogicalText())
	}
	return b.String()
}

// InsertText inserts s at p and returns the caret after it. Text typed at a
// root boundary joins the neighbouring text run when there is one.
func (d *Document) InsertText(p Point, s string) (Point, error) {
	b, ok := d.Resolve(p)
	if !ok {
		return Point{}, ErrForeignPoint
	}
	if s == "" {
		return p, nil
	}
	d.version++
	added := len([]rune(s))

	if b.InText {
		n := d.nodes[b.Index]
		r := []rune(n.text)
		n.text = string(r[:b.Offset]) + s + string(r[b.Offset:])
		return Point{Node: n.id, Offset: b.Offset + added}, nil
	}
	if b.Index > 0 && d.nodes[b.Index-1].kind == KindText {
		n := d.nodes[b.Index-1]
		end := n.runeLen()
		n.text += s
		return Point{Node: n.id, Offset: end + added}, nil
	}
	if b.Index < len(d.nodes) && d.nodes[b.Index].kind == KindText {
		n := d.nodes[b.Index]
		n.text = s + n.text
		return Point{Node: n.id, Offset: added}, nil
	}
	n := NewText(s)
	d.insertAt(b.Index, n)
	return Point{Node: n.id, Offset: added}, nil
}

// InsertNode splices n at p, splitting a text run when p falls inside one.
// It returns the root point immediately after n.
func (d *Document) InsertNode(p Point, n *Node) (Point, error) {
	if n.owner != nil {
		return Point{}, ErrAttached
	}
	b, ok := d.Resolve(p)
	if !ok {
		return Point{}, ErrForeignPoint
	}
	d.version++

	idx := b.Index
	if b.InText {
		t := d.nodes[b.Index]
		r := []rune(t.text)
		switch {
		case b.Offset == 0:
			idx = b.Index
		case b.Offset >= len(r):
			idx = b.Index + 1
		default:
			t.text = string(r[:b.Offset])
			rest := NewText(string(r[b.Offset:]))
			d.insertAt(b.Index+1, rest)
			idx = b.Index + 1
		}
	}
	d.insertAt(idx, n)
	return Point{Node: d.root, Offset: idx + 1}, nil
}

// SetText replaces the content of a text run.
func (d *Document) SetText(id NodeID, s string) bool {
	n, ok := d.Node(id)
	if !ok || n.kind != KindText {
		return false
	}
	d.version++
	n.text = s
	return true
}

// DeleteText removes runes [start, end) from a text run.
func (d *Document) DeleteText(id NodeID, start, end int) bool {
	n, ok := d.Node(id)
	if !ok || n.kind != KindText {
		return false
	}
	r := []rune(n.text)
	start = clamp(start, 0, len(r))
	end = clamp(end, start, len(r))
	if start == end {
		return false
	}
	d.version++
	n.text = string(r[:start]) + string(r[end:])
	return true
}

// Remove detaches the node and releases its resource.
func (d *Document) Remove(id NodeID) bool {
	idx := d.IndexOf(id)
	if idx < 0 {
		return false
	}
	d.removeAt(idx)
	return true
}

// RemoveWhere removes every child matching sel and returns how many went.
func (d *Document) RemoveWhere(sel Selector) int {
	kept := d.nodes[:0]
	removed := 0
	for _, n := range d.nodes {
		if sel.Match(n) {
			release(n)
			removed++
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(d.nodes); i++ {
		d.nodes[i] = nil
	}
	d.nodes = kept
	if removed > 0 {
		d.version++
	}
	return removed
}

// Clear removes every child, releasing all attachment handles whether or not
// their metadata ever resolved.
func (d *Document) Clear() {
	for _, n := range d.nodes {
		release(n)
	}
	d.nodes = nil
	d.version++
}

// DeleteRange removes the contents of r and returns the collapsed caret.
// Atomic nodes touched by the range go as a whole.
func (d *Document) DeleteRange(r Range) (Point, error) {
	a, ok := d.Resolve(r.Start)
	if !ok {
		return Point{}, ErrForeignPoint
	}
	z, ok := d.Resolve(r.End)
	if !ok {
		return Point{}, ErrForeignPoint
	}
	if z.less(a) {
		a, z = z, a
		r.Start, r.End = r.End, r.Start
	}
	if r.Collapsed() || (!a.less(z) && !z.less(a)) {
		return r.Start, nil
	}
	d.version++

	// Same text run.
	if a.InText && z.InText && a.Index == z.Index {
		n := d.nodes[a.Index]
		rs := []rune(n.text)
		n.text = string(rs[:a.Offset]) + string(rs[z.Offset:])
		return Point{Node: n.id, Offset: a.Offset}, nil
	}

	first := a.Index
	if a.InText {
		n := d.nodes[a.Index]
		n.text = string([]rune(n.text)[:a.Offset])
		first = a.Index + 1
	}
	last := z.Index // exclusive
	if z.InText {
		n := d.nodes[z.Index]
		n.text = string([]rune(n.text)[z.Offset:])
	}
	for i := last - 1; i >= first; i-- {
		d.removeAt(i)
	}
	if a.InText {
		return Point{Node: d.nodes[a.Index].id, Offset: a.Offset}, nil
	}
	return Point{Node: d.root, Offset: first}, nil
}

// Backspace deletes the grapheme or atomic node before p.
// It returns the new caret and whether anything was removed.
func (d *Document) Backspace(p Point) (Point, bool) {
	b, ok := d.Resolve(p)
	if !ok {
		return d.End(), false
	}
	if b.InText && b.Offset > 0 {
		n := d.nodes[b.Index]
		rs := []rune(n.text)
		k := lastGraphemeLen(string(rs[:b.Offset]))
		n.text = string(rs[:b.Offset-k]) + string(rs[b.Offset:])
		d.version++
		return Point{Node: n.id, Offset: b.Offset - k}, true
	}
	prev := b.Index - 1
	for prev >= 0 && d.nodes[prev].kind == KindText && d.nodes[prev].text == "" {
		d.removeAt(prev)
		prev--
	}
	if prev < 0 {
		return d.Start(), false
	}
	n := d.nodes[prev]
	if n.IsAtomic() {
		d.removeAt(prev)
		return Point{Node: d.root, Offset: prev}, true
	}
	rs := []rune(n.text)
	k := lastGraphemeLen(n.text)
	n.text = string(rs[:len(rs)-k])
	d.version++
	return Point{Node: n.id, Offset: len(rs) - k}, true
}

// DeleteForward deletes the grapheme or atomic node after p.
func (d *Document) DeleteForward(p Point) (Point, bool) {
	b, ok := d.Resolve(p)
	if !ok {
		return d.End(), false
	}
	if b.InText {
		n := d.nodes[b.Index]
		rs := []rune(n.text)
		if b.Offset < len(rs) {
			k := firstGraphemeLen(string(rs[b.Offset:]))
			n.text = string(rs[:b.Offset]) + string(rs[b.Offset+k:])
			d.version++
			return p, true
		}
		b = Boundary{Index: b.Index + 1}
		p = Point{Node: n.id, Offset: len(rs)}
	}
	next := b.Index
	for next < len(d.nodes) && d.nodes[next].kind == KindText && d.nodes[next].text == "" {
		d.removeAt(next)
	}
	if next >= len(d.nodes) {
		return p, false
	}
	n := d.nodes[next]
	if n.IsAtomic() {
		d.removeAt(next)
		if p.Node == d.root {
			return Point{Node: d.root, Offset: next}, true
		}
		return p, true
	}
	k := firstGraphemeLen(n.text)
	n.text = string([]rune(n.text)[k:])
	d.version++
	return p, true
}

func (d *Document) insertAt(idx int, n *Node) {
	n.owner = d
	d.nodes = append(d.nodes, nil)
	copy(d.nodes[idx+1:], d.nodes[idx:])
	d.nodes[idx] = n
}

func (d *Document) removeAt(idx int) {
	n := d.nodes[idx]
	copy(d.nodes[idx:], d.nodes[idx+1:])
	d.nodes[len(d.nodes)-1] = nil
	d.nodes = d.nodes[:len(d.nodes)-1]
	release(n)
	d.version++
}

// lastGraphemeLen returns the rune length of the final grapheme cluster of s.
func lastGraphemeLen(s string) int {
	last := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		last = len([]rune(cluster))
	}
	return last
}

// firstGraphemeLen returns the rune length of the first grapheme cluster of s.
func firstGraphemeLen(s string) int {
	if s == "" {
		return 0
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return len([]rune(cluster))
}
