// ABOUTME: Immutable selection snapshot used to restore the caret after async work
// ABOUTME: A snapshot is only restorable while every node it references is still attached

package document

// Snapshot is a frozen anchor/focus pair.
type Snapshot struct {
	Anchor Point
	Focus  Point
}

// SnapshotOf captures r.
func SnapshotOf(r Range) Snapshot {
	return Snapshot{Anchor: r.Start, Focus: r.End}
}

// Range returns the snapshot as a range.
func (s Snapshot) Range() Range {
	return Range{Start: s.Anchor, End: s.Focus}
}

// ValidIn reports whether both points still resolve in d. A point on the root
// is valid as long as its index is in bounds.
func (s Snapshot) ValidIn(d *Document) bool {
	return s.validPoint(d, s.Anchor) && s.validPoint(d, s.Focus)
}

func (s Snapshot) validPoint(d *Document, p Point) bool {
	if p.Node == d.root {
		return p.Offset >= 0 && p.Offset <= len(d.nodes)
	}
	n, ok := d.Node(p.Node)
	if !ok || !n.Attached() {
		return false
	}
	if n.kind == KindText {
		return p.Offset >= 0 && p.Offset <= n.runeLen()
	}
	return true
}
