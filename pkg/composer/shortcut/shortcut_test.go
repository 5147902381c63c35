// ABOUTME: Tests for shortcut matching, composition gating and table edits

package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventString(t *testing.T) {
	t.Parallel()

	e := Event{Key: "K", Ctrl: true, Shift: true, Meta: true}
	assert.Equal(t, "ctrl+shift+cmd+k", e.String(false))
	assert.Equal(t, "cmd+shift+ctrl+k", e.String(true))
	assert.Equal(t, "space", Event{Key: " "}.String(false))
	assert.Equal(t, "up", Event{Key: "ArrowUp"}.String(false))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mac  bool
		ev   Event
		cat  Category
		want Action
		ok   bool
	}{
		{"enter sends", false, Event{Key: "enter"}, CategoryLocal, ActionSend, true},
		{"shift enter breaks", false, Event{Key: "enter", Shift: true}, CategoryLocal, ActionLineBreak, true},
		{"alt enter breaks", false, Event{Key: "enter", Alt: true}, CategoryLocal, ActionLineBreak, true},
		{"arrow up switches", false, Event{Key: "ArrowUp"}, CategoryLocal, ActionSwitchChat, true},
		{"down switches", false, Event{Key: "down"}, CategoryLocal, ActionSwitchChat, true},
		{"theme linux", false, Event{Key: "k", Alt: true}, CategoryApp, ActionToggleTheme, true},
		{"theme mac", true, Event{Key: "k", Meta: true}, CategoryApp, ActionToggleTheme, true},
		{"linux key on mac", true, Event{Key: "k", Alt: true}, CategoryApp, "", false},
		{"wrong category", false, Event{Key: "enter"}, CategoryApp, "", false},
		{"unbound", false, Event{Key: "x"}, CategoryLocal, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewGate(tt.mac, nil)
			got, ok := g.Resolve(tt.ev, tt.cat)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%+v) = %q, %v; want %q, %v", tt.ev, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSendSuppressedWhileComposing(t *testing.T) {
	t.Parallel()

	g := NewGate(false, nil)
	g.StartComposition()
	assert.True(t, g.Composing())
	_, ok := g.Resolve(Event{Key: "enter"}, CategoryLocal)
	assert.False(t, ok)

	a, ok := g.Resolve(Event{Key: "enter", Shift: true}, CategoryLocal)
	assert.True(t, ok)
	assert.Equal(t, ActionLineBreak, a)

	g.EndComposition()
	a, ok = g.Resolve(Event{Key: "enter"}, CategoryLocal)
	assert.True(t, ok)
	assert.Equal(t, ActionSend, a)
}

func TestRestricted(t *testing.T) {
	t.Parallel()

	assert.True(t, Restricted(Event{Key: "b", Ctrl: true}))
	assert.True(t, Restricted(Event{Key: "I", Meta: true}))
	assert.True(t, Restricted(Event{Key: "u", Ctrl: true, Shift: true}))
	assert.False(t, Restricted(Event{Key: "b"}))
	assert.False(t, Restricted(Event{Key: "k", Ctrl: true}))
}

func TestToggleAndReset(t *testing.T) {
	t.Parallel()

	g := NewGate(false, nil)
	assert.True(t, g.Toggle("Enter", CategoryLocal, false))
	assert.False(t, g.IsEnabled(ActionSend, CategoryLocal))
	_, ok := g.Resolve(Event{Key: "enter"}, CategoryLocal)
	assert.False(t, ok)

	assert.False(t, g.Toggle("Nope", CategoryLocal, false))

	g.Reset()
	assert.True(t, g.IsEnabled(ActionSend, CategoryLocal))

	table := Defaults()
	table[3].Key = "Ctrl+S"
	g.Replace(table)
	a, ok := g.Resolve(Event{Key: "s", Ctrl: true}, CategoryLocal)
	assert.True(t, ok)
	assert.Equal(t, ActionSend, a)
	table[3].Key = "Enter"
	_, ok = g.Resolve(Event{Key: "enter"}, CategoryLocal)
	assert.False(t, ok, "Replace must copy the table")
}

func TestRebindAndConflicts(t *testing.T) {
	t.Parallel()

	g := NewGate(false, nil)
	assert.True(t, g.HasConflict("enter", CategoryLocal, ""))
	assert.False(t, g.HasConflict("enter", CategoryLocal, "Enter"))
	assert.True(t, g.HasConflict("Alt+Enter", CategoryLocal, "Enter"))
	assert.False(t, g.HasConflict("enter", CategoryApp, ""))

	assert.False(t, g.Rebind("Enter", CategoryLocal, "Alt+Enter"), "conflicts with line break")
	assert.False(t, g.Rebind("Up/Down", CategoryLocal, "Ctrl+N"), "locked binding")
	assert.True(t, g.Rebind("Enter", CategoryLocal, "Ctrl+Enter"))

	a, ok := g.Resolve(Event{Key: "enter", Ctrl: true}, CategoryLocal)
	assert.True(t, ok)
	assert.Equal(t, ActionSend, a)
}

func TestAlternatives(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Up", "Down"}, alternatives("Up/Down"))
	assert.Equal(t, []string{"Ctrl+/"}, alternatives("Ctrl+/"))
	assert.Equal(t, []string{"/"}, alternatives("/"))
	assert.True(t, matches("ctrl+/", "Ctrl+/", false))
	assert.True(t, matches("ctrl+shift+k", "Shift+Ctrl+K", false))
	assert.True(t, matches("ctrl++", "Ctrl++", false))
	assert.Equal(t, Event{Key: "+"}, ParseCombo("+"))
	assert.Equal(t, []string{"shift+enter", "alt+enter"}, Alternatives("Shift+Enter/Alt+Enter", false))
}

func TestPlatformKey(t *testing.T) {
	t.Parallel()

	b, ok := NewGate(true, nil).ByAction(ActionCloseWindow)
	assert.True(t, ok)
	assert.Equal(t, "Cmd+W", NewGate(true, nil).PlatformKey(b))
	assert.Equal(t, "Ctrl+W", NewGate(false, nil).PlatformKey(b))
	assert.Equal(t, "Cmd", NewGate(true, nil).ModifierKey())
	assert.Len(t, NewGate(false, nil).ByCategory(CategoryLocal), 3)
}
