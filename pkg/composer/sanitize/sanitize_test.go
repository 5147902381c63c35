// ABOUTME: Tests for input sanitization and the entity node factory

package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

func TestInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"alice", "alice"},
		{`<b>"x"&'y'</b>`, "bxy/b"},
		{"café", "café"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Input(tt.in), "Input(%q)", tt.in)
	}
}

func TestAttrLength(t *testing.T) {
	_, ok := Attr(strings.Repeat("a", MaxAttrLen-1))
	assert.True(t, ok)
	_, ok = Attr(strings.Repeat("a", MaxAttrLen))
	assert.False(t, ok)
}

func TestNewEntityNode(t *testing.T) {
	n := NewEntityNode(document.EntityUser, "u1", "<alice>")
	require.NotNil(t, n)
	e := n.Entity()
	assert.Equal(t, "u1", e.ID)
	assert.Equal(t, "alice", e.DisplayName)
	assert.Equal(t, "@alice", e.DisplayText)

	a := NewEntityNode(document.EntityAgent, "bot", "Helper")
	require.NotNil(t, a)
	assert.Equal(t, "/Helper", a.Entity().DisplayText)

	assert.Nil(t, NewEntityNode(document.EntityUser, "", "x"))
	assert.Nil(t, NewEntityNode(document.EntityUser, `"&`, "x"))
}
