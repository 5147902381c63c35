// ABOUTME: Keybindings manager with O(1) key-to-shortcut lookup for terminal key events
// ABOUTME: Translates Bubble Tea key messages into shortcut events, detects conflicts, renders help

package keybindings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/msgcomposer/pkg/composer/shortcut"
)

// ConflictInfo describes a binding conflict where multiple actions share a key.
type ConflictInfo struct {
	Key      string
	Category shortcut.Category
	Actions  []shortcut.Action
}

// Manager provides O(1) key-to-binding lookup over a shortcut table.
type Manager struct {
	mac    bool
	table  []shortcut.Binding
	lookup map[string][]shortcut.Binding // "ctrl+w" -> bindings in table order
}

// New creates a Manager over table, or the stock table when nil.
func New(table []shortcut.Binding, mac bool) *Manager {
	m := &Manager{mac: mac}
	m.Reload(table)
	return m
}

// Reload replaces the table and rebuilds the lookup.
func (m *Manager) Reload(table []shortcut.Binding) {
	if table == nil {
		table = shortcut.Defaults()
	}
	m.table = table
	m.buildLookup()
}

// Table returns the current shortcut table.
func (m *Manager) Table() []shortcut.Binding { return m.table }

// BindingForKey returns the first enabled binding for msg, if any.
func (m *Manager) BindingForKey(msg tea.KeyMsg) (shortcut.Binding, bool) {
	for _, b := range m.lookup[EventFromKey(msg).String(m.mac)] {
		if b.Enabled {
			return b, true
		}
	}
	return shortcut.Binding{}, false
}

// Conflicts detects keys bound to multiple actions within one category.
func (m *Manager) Conflicts() []ConflictInfo {
	var conflicts []ConflictInfo
	seen := map[string]bool{}
	for _, b := range m.table {
		for _, k := range shortcut.Alternatives(m.platformKey(b), m.mac) {
			id := string(b.Category) + "|" + k
			if seen[id] {
				continue
			}
			seen[id] = true
			var actions []shortcut.Action
			for _, other := range m.lookup[k] {
				if other.Category == b.Category {
					actions = append(actions, other.Action)
				}
			}
			if len(actions) > 1 {
				conflicts = append(conflicts, ConflictInfo{Key: k, Category: b.Category, Actions: actions})
			}
		}
	}
	return conflicts
}

// FormatAll returns a formatted table of all keybindings for the keys command.
func (m *Manager) FormatAll() string {
	var b strings.Builder
	b.WriteString("Keybindings:\n\n")

	categories := []struct {
		name string
		cat  shortcut.Category
	}{
		{"Application", shortcut.CategoryApp},
		{"Composer", shortcut.CategoryLocal},
	}

	for _, cat := range categories {
		fmt.Fprintf(&b, "## %s\n", cat.name)
		for _, sb := range m.table {
			if sb.Category != cat.cat {
				continue
			}
			state := ""
			if !sb.Enabled {
				state = " (disabled)"
			}
			fmt.Fprintf(&b, "  %-24s %s%s\n", m.platformKey(sb), sb.Description, state)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ShortHelp implements help.KeyMap with the composer-local bindings.
func (m *Manager) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range m.table {
		if b.Category == shortcut.CategoryLocal {
			out = append(out, m.helpBinding(b))
		}
	}
	return out
}

// FullHelp implements help.KeyMap, one column per category.
func (m *Manager) FullHelp() [][]key.Binding {
	var app []key.Binding
	for _, b := range m.table {
		if b.Category == shortcut.CategoryApp {
			app = append(app, m.helpBinding(b))
		}
	}
	return [][]key.Binding{m.ShortHelp(), app}
}

func (m *Manager) helpBinding(b shortcut.Binding) key.Binding {
	kb := key.NewBinding(
		key.WithKeys(shortcut.Alternatives(m.platformKey(b), m.mac)...),
		key.WithHelp(strings.ToLower(m.platformKey(b)), strings.ToLower(b.Description)),
	)
	kb.SetEnabled(b.Enabled)
	return kb
}

func (m *Manager) platformKey(b shortcut.Binding) string {
	if m.mac && b.MacKey != "" {
		return b.MacKey
	}
	return b.Key
}

func (m *Manager) buildLookup() {
	m.lookup = make(map[string][]shortcut.Binding, len(m.table)*2)
	for _, b := range m.table {
		for _, k := range shortcut.Alternatives(m.platformKey(b), m.mac) {
			m.lookup[k] = append(m.lookup[k], b)
		}
	}
}

// EventFromKey converts a Bubble Tea key message to a shortcut event.
// Terminals report no Cmd modifier and fold Shift into the rune.
func EventFromKey(msg tea.KeyMsg) shortcut.Event {
	if msg.Type == tea.KeyRunes {
		return shortcut.Event{Key: string(msg.Runes), Alt: msg.Alt}
	}
	if msg.Type == tea.KeySpace {
		return shortcut.Event{Key: "space", Alt: msg.Alt}
	}
	return shortcut.ParseCombo(msg.String())
}
