// ABOUTME: Tests for idempotent entity insertion, trigger consumption and extraction purity

package tag

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/domcache"
	"github.com/mauromedda/msgcomposer/pkg/composer/sanitize"
	"github.com/mauromedda/msgcomposer/pkg/composer/selection"
)

func setup(t *testing.T) (*Manager, *selection.MemoryHost) {
	t.Helper()
	h := selection.NewMemoryHost()
	frozen := time.Unix(100, 0)
	c := domcache.New(h.Doc, time.Hour, func() time.Time { return frozen })
	return New(selection.New(h, nil), c, 0, nil), h
}

func typeText(t *testing.T, h *selection.MemoryHost, s string) {
	t.Helper()
	p, err := h.Doc.InsertText(h.Caret(), s)
	require.NoError(t, err)
	h.SetSelection(document.Caret(p))
}

func alice() (*document.Node, document.Identity) {
	return sanitize.NewEntityNode(document.EntityUser, "u1", "alice"),
		document.Identity{Kind: document.EntityUser, ID: "u1"}
}

func TestInsertConsumesTrigger(t *testing.T) {
	m, h := setup(t)
	typeText(t, h, "hello @al")

	n, id := alice()
	require.True(t, m.Insert(n, id, UserTrigger, true))

	assert.Equal(t, "hello @alice ", h.Doc.Text())
	// Caret sits after the trailing space.
	last := h.Doc.At(h.Doc.Len() - 1)
	assert.Equal(t, document.Caret(document.Point{Node: last.ID(), Offset: 1}), h.Sel)
}

func TestDuplicateInsertionIdempotence(t *testing.T) {
	m, h := setup(t)
	n, id := alice()
	require.True(t, m.Insert(n, id, UserTrigger, false))
	v := h.Doc.Version()

	again, _ := alice()
	assert.False(t, m.Insert(again, id, UserTrigger, false))
	assert.Equal(t, v, h.Doc.Version())
	assert.Len(t, h.Doc.Select(document.Selector{Kind: document.KindEntity, ID: "u1"}), 1)
}

func TestInsertEmptyID(t *testing.T) {
	m, h := setup(t)
	n, _ := alice()
	assert.False(t, m.Insert(n, document.Identity{Kind: document.EntityUser}, nil, false))
	assert.Equal(t, 0, h.Doc.Len())
}

func TestInsertFallsBackToEnd(t *testing.T) {
	m, h := setup(t)
	typeText(t, h, "abc")
	stray := document.New()
	h.SetSelection(document.Caret(stray.End()))

	n, id := alice()
	require.True(t, m.Insert(n, id, UserTrigger, false))
	assert.Equal(t, "abc@alice", h.Doc.Text())
}

func TestInsertMatchCap(t *testing.T) {
	m, h := setup(t)
	long := "@" + strings.Repeat("x", DefaultMatchCap)
	typeText(t, h, long)

	n, id := alice()
	require.True(t, m.Insert(n, id, UserTrigger, false))
	assert.Equal(t, long+"@alice", h.Doc.Text())
}

func TestInsertReplacesSelection(t *testing.T) {
	m, h := setup(t)
	typeText(t, h, "one two")
	run := h.Doc.At(0).ID()
	h.SetSelection(document.Range{
		Start: document.Point{Node: run, Offset: 4},
		End:   document.Point{Node: run, Offset: 7},
	})

	n, id := alice()
	require.True(t, m.Insert(n, id, UserTrigger, false))
	assert.Equal(t, "one @alice", h.Doc.Text())
}

func TestExtractIsPure(t *testing.T) {
	m, _ := setup(t)
	n, id := alice()
	require.True(t, m.Insert(n, id, nil, false))
	bot := sanitize.NewEntityNode(document.EntityAgent, "b1", "helper")
	require.True(t, m.Insert(bot, document.Identity{Kind: document.EntityAgent, ID: "b1"}, nil, false))

	first := Extract(m, document.Entities(document.EntityUser), ParseMention)
	second := Extract(m, document.Entities(document.EntityUser), ParseMention)
	assert.Equal(t, first, second)
	assert.Equal(t, []Mention{{Kind: document.EntityUser, ID: "u1", DisplayName: "alice"}}, first)
	assert.Len(t, m.Mentions(document.EntityAgent), 1)
}

func TestCacheInvalidationOnMutation(t *testing.T) {
	m, h := setup(t)
	sel := document.Entities(document.EntityUser)
	assert.Empty(t, Extract(m, sel, ParseMention))

	n, id := alice()
	require.True(t, m.Insert(n, id, nil, false))
	assert.Len(t, Extract(m, sel, ParseMention), 1)

	require.True(t, m.Remove("u1"))
	assert.Empty(t, Extract(m, sel, ParseMention))

	n2, _ := alice()
	require.True(t, m.Insert(n2, id, nil, false))
	require.True(t, m.RemoveAt(n2.ID()))
	assert.Empty(t, Extract(m, sel, ParseMention))

	// Direct document edits bypass the manager; the version check still catches them.
	n3, _ := alice()
	_, err := h.Doc.InsertNode(h.Doc.End(), n3)
	require.NoError(t, err)
	assert.Len(t, Extract(m, sel, ParseMention), 1)
}

func TestParseMentionSkipsMalformed(t *testing.T) {
	n := document.NewEntity(document.Entity{Identity: document.Identity{Kind: document.EntityUser}})
	_, ok := ParseMention(n)
	assert.False(t, ok)
}
