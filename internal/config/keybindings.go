// ABOUTME: Keybinding overrides from config applied onto the stock shortcut table
// ABOUTME: Keys are action names; values are key combos ("Ctrl+Enter", "Shift+Enter/Alt+Enter")

package config

import (
	"fmt"
	"sort"

	"github.com/mauromedda/msgcomposer/pkg/composer/shortcut"
)

// ApplyKeybindings returns the default shortcut table with overrides and
// disabled actions applied. Rebinding a locked, unknown or conflicting
// action is an error.
func ApplyKeybindings(overrides map[string]string, disabled []string, mac bool) ([]shortcut.Binding, error) {
	g := shortcut.NewGate(mac, nil)

	actions := make([]string, 0, len(overrides))
	for a := range overrides {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	for _, a := range actions {
		b, ok := g.ByAction(shortcut.Action(a))
		if !ok {
			return nil, fmt.Errorf("keybindings: unknown action %q", a)
		}
		if b.DisabledEdit {
			return nil, fmt.Errorf("keybindings: %q cannot be rebound", a)
		}
		if !g.Rebind(b.Key, b.Category, overrides[a]) {
			return nil, fmt.Errorf("keybindings: %q conflicts with an existing binding", overrides[a])
		}
		// An explicit override applies on every platform.
		g.Update(overrides[a], b.Category, func(x *shortcut.Binding) { x.MacKey = "" })
	}
	for _, a := range disabled {
		b, ok := g.ByAction(shortcut.Action(a))
		if !ok {
			return nil, fmt.Errorf("keybindings: unknown action %q", a)
		}
		g.Toggle(b.Key, b.Category, false)
	}
	return g.Bindings(), nil
}
