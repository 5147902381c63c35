// ABOUTME: Converts pasted HTML fragments into document nodes, keeping copied mention tags
// ABOUTME: data-type=at-user|ai-robot with data-uid become entities when the roster knows the id

// Package paste turns clipboard payloads into insertable node sequences.
package paste

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/sanitize"
)

// Roster resolves a copied tag back to a live identity.
type Roster interface {
	// Lookup returns the display name for id, or false when unknown.
	Lookup(kind document.EntityKind, id string) (string, bool)
}

// RosterFunc adapts a function to Roster.
type RosterFunc func(kind document.EntityKind, id string) (string, bool)

// Lookup implements Roster.
func (f RosterFunc) Lookup(kind document.EntityKind, id string) (string, bool) { return f(kind, id) }

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Tr: true, atom.Table: true,
}

// Piece is one item of a paste: either Text or an entity Node.
type Piece struct {
	Text string
	Node *document.Node
}

// FromHTML parses fragment and returns the pieces in document order. Text
// is sanitized; adjacent text is merged. Unknown or malformed tags degrade to
// their text content.
func FromHTML(fragment string, roster Roster) ([]Piece, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return nil, fmt.Errorf("parsing pasted html: %w", err)
	}
	c := &collector{roster: roster, seen: map[string]bool{}}
	for _, n := range nodes {
		c.walk(n)
	}
	c.flush()
	return trimNewlines(c.out), nil
}

// FromText splits plain text into a single text piece.
func FromText(s string) []Piece {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return nil
	}
	return []Piece{{Text: s}}
}

type collector struct {
	roster Roster
	out    []Piece
	buf    strings.Builder
	seen   map[string]bool
}

func (c *collector) flush() {
	if c.buf.Len() == 0 {
		return
	}
	c.out = append(c.out, Piece{Text: sanitize.Input(c.buf.String())})
	c.buf.Reset()
}

func (c *collector) newline() {
	s := c.buf.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		c.buf.WriteByte('\n')
		return
	}
	if s == "" && len(c.out) > 0 && c.out[len(c.out)-1].Node != nil {
		c.buf.WriteByte('\n')
	}
}

func (c *collector) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.buf.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			c.buf.WriteByte('\n')
			return
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.Img:
			if alt := attr(n, "alt"); alt != "" {
				c.buf.WriteString(alt)
			}
			return
		}
		if node := c.entity(n); node != nil {
			c.flush()
			c.out = append(c.out, Piece{Node: node})
			return
		}
	}
	block := n.Type == html.ElementNode && blockAtoms[n.DataAtom]
	if block {
		c.newline()
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.walk(ch)
	}
	if block {
		c.newline()
	}
}

func (c *collector) entity(n *html.Node) *document.Node {
	var kind document.EntityKind
	switch attr(n, "data-type") {
	case "at-user":
		kind = document.EntityUser
	case "ai-robot":
		kind = document.EntityAgent
	default:
		return nil
	}
	id := attr(n, "data-uid")
	if id == "" || c.roster == nil || c.seen[id] {
		return nil
	}
	name, ok := c.roster.Lookup(kind, id)
	if !ok {
		return nil
	}
	node := sanitize.NewEntityNode(kind, id, name)
	if node != nil {
		c.seen[id] = true
	}
	return node
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func trimNewlines(ps []Piece) []Piece {
	if len(ps) > 0 && ps[0].Node == nil {
		ps[0].Text = strings.TrimLeft(ps[0].Text, "\n")
	}
	if n := len(ps); n > 0 && ps[n-1].Node == nil {
		ps[n-1].Text = strings.TrimRight(ps[n-1].Text, "\n")
	}
	out := ps[:0]
	for _, p := range ps {
		if p.Node == nil && p.Text == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
