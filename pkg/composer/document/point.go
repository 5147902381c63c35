// ABOUTME: Caret and range primitives: boundary points addressed as (node, offset)
// ABOUTME: A point on the root addresses a child index; a point on a text run addresses a rune offset

package document

// Point is a boundary point. When Node is the document root, Offset is a
// child index; when Node is a text run, Offset is a rune offset inside it.
// A point on an atomic node means "before" for offset 0 and "after" otherwise.
type Point struct {
	Node   NodeID
	Offset int
}

// Range spans two points. Start and End may be given in either order.
type Range struct {
	Start Point
	End   Point
}

// Caret returns a collapsed range at p.
func Caret(p Point) Range {
	return Range{Start: p, End: p}
}

// Collapsed reports whether the range is a caret.
func (r Range) Collapsed() bool {
	return r.Start == r.End
}

// Boundary is a point resolved against the current child list.
// With InText the caret sits inside child Index at rune Offset; otherwise it
// sits before child Index (Index == Len() means at the end).
type Boundary struct {
	Index  int
	Offset int
	InText bool
}

// less orders two boundaries in document order.
func (b Boundary) less(o Boundary) bool {
	bi, bo := b.Index, b.Offset
	oi, oo := o.Index, o.Offset
	if !b.InText {
		bo = 0
	}
	if !o.InText {
		oo = 0
	}
	if bi != oi {
		return bi < oi
	}
	return bo < oo
}

// Resolve maps a point to a boundary. It reports false when the point
// references a node that is not in this document.
func (d *Document) Resolve(p Point) (Boundary, bool) {
	if p.Node == d.root {
		return Boundary{Index: clamp(p.Offset, 0, len(d.nodes))}, true
	}
	idx := d.IndexOf(p.Node)
	if idx < 0 {
		return Boundary{}, false
	}
	n := d.nodes[idx]
	if n.kind != KindText {
		if p.Offset <= 0 {
			return Boundary{Index: idx}, true
		}
		return Boundary{Index: idx + 1}, true
	}
	return Boundary{Index: idx, Offset: clamp(p.Offset, 0, n.runeLen()), InText: true}, true
}

// ContainsPoint reports whether the point resolves inside this document.
func (d *Document) ContainsPoint(p Point) bool {
	_, ok := d.Resolve(p)
	return ok
}

// Start returns the point before the first child.
func (d *Document) Start() Point {
	return Point{Node: d.root, Offset: 0}
}

// End returns the point after the last child.
func (d *Document) End() Point {
	return Point{Node: d.root, Offset: len(d.nodes)}
}

// After returns the root point immediately after the node.
func (d *Document) After(id NodeID) (Point, bool) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return Point{}, false
	}
	return Point{Node: d.root, Offset: idx + 1}, true
}

// Before returns the root point immediately before the node.
func (d *Document) Before(id NodeID) (Point, bool) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return Point{}, false
	}
	return Point{Node: d.root, Offset: idx}, true
}

// MoveLeft returns the caret one step to the left. Atomic nodes are skipped
// as a whole.
func (d *Document) MoveLeft(p Point) Point {
	b, ok := d.Resolve(p)
	if !ok {
		return d.End()
	}
	if b.InText && b.Offset > 0 {
		return Point{Node: d.nodes[b.Index].id, Offset: b.Offset - 1}
	}
	prev := b.Index - 1
	if prev < 0 {
		return d.Start()
	}
	n := d.nodes[prev]
	if n.kind == KindText && n.runeLen() > 0 {
		return Point{Node: n.id, Offset: n.runeLen() - 1}
	}
	return Point{Node: d.root, Offset: prev}
}

// MoveRight returns the caret one step to the right.
func (d *Document) MoveRight(p Point) Point {
	b, ok := d.Resolve(p)
	if !ok {
		return d.End()
	}
	if b.InText {
		n := d.nodes[b.Index]
		if b.Offset < n.runeLen() {
			return Point{Node: n.id, Offset: b.Offset + 1}
		}
		b = Boundary{Index: b.Index + 1}
	}
	if b.Index >= len(d.nodes) {
		return d.End()
	}
	n := d.nodes[b.Index]
	if n.kind == KindText && n.runeLen() > 0 {
		return Point{Node: n.id, Offset: 1}
	}
	return Point{Node: d.root, Offset: b.Index + 1}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
