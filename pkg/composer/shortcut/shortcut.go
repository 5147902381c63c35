// ABOUTME: Shortcut and composition gate: formatting-key suppression, IME state, shortcut table
// ABOUTME: Keys are matched per platform; send is suppressed while a composition is active

// Package shortcut decides which key events the composer acts on.
package shortcut

import (
	"slices"
	"strings"
)

// Action is what a shortcut triggers.
type Action string

const (
	ActionToggleTheme Action = "toggle-theme"
	ActionCloseWindow Action = "close-window"
	ActionMinimize    Action = "minimize-window"
	ActionSend        Action = "send-message"
	ActionLineBreak   Action = "line-break"
	ActionSwitchChat  Action = "switch-chat"
)

// Category separates application-wide shortcuts from composer-local ones.
type Category string

const (
	CategoryApp   Category = "app"
	CategoryLocal Category = "local"
)

// Binding is one row of the shortcut table. Key may list alternatives
// separated by "/" ("up/down").
type Binding struct {
	Key    string
	MacKey string
	// Category of the binding.
	Category Category
	Enabled  bool
	// DisabledEdit bindings cannot be rebound by the user.
	DisabledEdit bool
	Description  string
	Action       Action
}

// Defaults returns the stock shortcut table.
func Defaults() []Binding {
	return []Binding{
		{Key: "Alt+K", MacKey: "Cmd+K", Category: CategoryApp, Enabled: true, Description: "Toggle theme", Action: ActionToggleTheme},
		{Key: "Ctrl+W", MacKey: "Cmd+W", Category: CategoryApp, Enabled: true, Description: "Close window", Action: ActionCloseWindow},
		{Key: "Ctrl+Z", Category: CategoryApp, Enabled: true, Description: "Minimize window", Action: ActionMinimize},
		{Key: "Enter", Category: CategoryLocal, Enabled: true, Description: "Send message", Action: ActionSend},
		{Key: "Shift+Enter/Alt+Enter", Category: CategoryLocal, Enabled: true, Description: "Insert line break", Action: ActionLineBreak},
		{Key: "Up/Down", Category: CategoryLocal, Enabled: true, DisabledEdit: true, Description: "Switch conversation", Action: ActionSwitchChat},
	}
}

// Event is a platform-neutral key press.
type Event struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// String renders the event in the platform's modifier order.
func (e Event) String(mac bool) string {
	var mods []string
	add := func(on bool, name string) {
		if on {
			mods = append(mods, name)
		}
	}
	if mac {
		add(e.Meta, "cmd")
		add(e.Alt, "alt")
		add(e.Shift, "shift")
		add(e.Ctrl, "ctrl")
	} else {
		add(e.Ctrl, "ctrl")
		add(e.Alt, "alt")
		add(e.Shift, "shift")
		add(e.Meta, "cmd")
	}
	return strings.Join(append(mods, normalizeKey(e.Key)), "+")
}

var keyAliases = map[string]string{
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
	"esc":        "escape",
	"return":     "enter",
	" ":          "space",
	"meta":       "cmd",
	"command":    "cmd",
	"control":    "ctrl",
	"option":     "alt",
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	if a, ok := keyAliases[k]; ok {
		return a
	}
	return k
}

// ParseCombo reads "Ctrl+Shift+K" into an event. Modifier order is free.
func ParseCombo(combo string) Event {
	var e Event
	key := combo
	if i := strings.LastIndex(combo[:max(len(combo)-1, 0)], "+"); i >= 0 {
		for _, m := range strings.Split(combo[:i], "+") {
			switch normalizeKey(m) {
			case "ctrl":
				e.Ctrl = true
			case "alt":
				e.Alt = true
			case "shift":
				e.Shift = true
			case "cmd":
				e.Meta = true
			}
		}
		key = combo[i+1:]
	}
	e.Key = key
	return e
}

// alternatives splits "a/b" into its options. A slash right after a "+" or
// at the start is a literal key.
func alternatives(key string) []string {
	var out []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] != '/' || i == start || key[i-1] == '+' {
			continue
		}
		out = append(out, key[start:i])
		start = i + 1
	}
	out = append(out, key[start:])
	return out
}

// Alternatives returns the canonical form of every option in key.
func Alternatives(key string, mac bool) []string {
	alts := alternatives(key)
	for i, a := range alts {
		alts[i] = ParseCombo(a).String(mac)
	}
	return alts
}

func matches(eventKey, configKey string, mac bool) bool {
	for _, alt := range alternatives(configKey) {
		if ParseCombo(alt).String(mac) == eventKey {
			return true
		}
	}
	return false
}

// Gate owns the shortcut table and the composition state.
type Gate struct {
	mac       bool
	table     []Binding
	composing bool
}

// NewGate returns a gate for the platform with table, or the defaults when
// table is nil.
func NewGate(mac bool, table []Binding) *Gate {
	if table == nil {
		table = Defaults()
	}
	return &Gate{mac: mac, table: slices.Clone(table)}
}

// ModifierKey is the platform's primary modifier label.
func (g *Gate) ModifierKey() string {
	if g.mac {
		return "Cmd"
	}
	return "Ctrl"
}

// PlatformKey returns the key string used on this platform.
func (g *Gate) PlatformKey(b Binding) string {
	if g.mac && b.MacKey != "" {
		return b.MacKey
	}
	return b.Key
}

// Restricted reports formatting shortcuts (bold, italic, underline) that the
// composer swallows.
func Restricted(e Event) bool {
	if !e.Ctrl && !e.Meta {
		return false
	}
	switch normalizeKey(e.Key) {
	case "b", "i", "u":
		return true
	}
	return false
}

// StartComposition marks an IME composition as active.
func (g *Gate) StartComposition() { g.composing = true }

// EndComposition clears the composition flag.
func (g *Gate) EndComposition() { g.composing = false }

// Composing reports whether a composition is active.
func (g *Gate) Composing() bool { return g.composing }

// Match returns the first enabled binding in cat matching e.
func (g *Gate) Match(e Event, cat Category) (Binding, bool) {
	ek := e.String(g.mac)
	for _, b := range g.table {
		if b.Category == cat && b.Enabled && matches(ek, g.PlatformKey(b), g.mac) {
			return b, true
		}
	}
	return Binding{}, false
}

// Resolve returns the action e triggers in cat. Send never fires while a
// composition is active.
func (g *Gate) Resolve(e Event, cat Category) (Action, bool) {
	b, ok := g.Match(e, cat)
	if !ok {
		return "", false
	}
	if b.Action == ActionSend && g.composing {
		return "", false
	}
	return b.Action, true
}

// Bindings returns a copy of the table.
func (g *Gate) Bindings() []Binding { return slices.Clone(g.table) }

// ByCategory returns the bindings in cat.
func (g *Gate) ByCategory(cat Category) []Binding {
	var out []Binding
	for _, b := range g.table {
		if b.Category == cat {
			out = append(out, b)
		}
	}
	return out
}

// ByAction returns the binding for a.
func (g *Gate) ByAction(a Action) (Binding, bool) {
	for _, b := range g.table {
		if b.Action == a {
			return b, true
		}
	}
	return Binding{}, false
}

func (g *Gate) index(key string, cat Category) int {
	return slices.IndexFunc(g.table, func(b Binding) bool {
		return b.Key == key && b.Category == cat
	})
}

// Update applies fn to the binding identified by key and cat.
func (g *Gate) Update(key string, cat Category, fn func(*Binding)) bool {
	i := g.index(key, cat)
	if i < 0 {
		return false
	}
	fn(&g.table[i])
	return true
}

// Rebind changes the key of a binding unless it is locked or the new key
// conflicts with another binding.
func (g *Gate) Rebind(key string, cat Category, newKey string) bool {
	i := g.index(key, cat)
	if i < 0 || g.table[i].DisabledEdit || g.HasConflict(newKey, cat, key) {
		return false
	}
	g.table[i].Key = newKey
	return true
}

// Toggle enables or disables a binding.
func (g *Gate) Toggle(key string, cat Category, enabled bool) bool {
	return g.Update(key, cat, func(b *Binding) { b.Enabled = enabled })
}

// Replace swaps in table, or the defaults when table is nil.
func (g *Gate) Replace(table []Binding) {
	if table == nil {
		table = Defaults()
	}
	g.table = slices.Clone(table)
}

// Reset restores the defaults.
func (g *Gate) Reset() { g.table = Defaults() }

// HasConflict reports whether key is already used in cat by a binding other
// than exclude.
func (g *Gate) HasConflict(key string, cat Category, exclude string) bool {
	want := map[string]bool{}
	for _, alt := range alternatives(key) {
		want[ParseCombo(alt).String(g.mac)] = true
	}
	for _, b := range g.table {
		if b.Category != cat || b.Key == exclude {
			continue
		}
		for _, alt := range alternatives(b.Key) {
			if want[ParseCombo(alt).String(g.mac)] {
				return true
			}
		}
	}
	return false
}

// IsEnabled reports whether the binding for a in cat is enabled.
func (g *Gate) IsEnabled(a Action, cat Category) bool {
	for _, b := range g.table {
		if b.Action == a && b.Category == cat {
			return b.Enabled
		}
	}
	return false
}
