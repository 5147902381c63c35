// ABOUTME: Keyboard routing: restricted keys, popup navigation, then local and app shortcuts
// ABOUTME: Keys the composer does not consume are left for the host to treat as typing

package form

import (
	"github.com/mauromedda/msgcomposer/pkg/composer/shortcut"
)

// Effect tells the host what a key press did.
type Effect struct {
	// Handled keys must not be processed further by the host.
	Handled bool
	// Action is set for shortcuts the host carries out (send, switch, app).
	Action shortcut.Action
	// Direction is -1 (up) or +1 (down) for switch-chat.
	Direction int
}

func bare(e shortcut.Event) bool { return !e.Ctrl && !e.Alt && !e.Shift && !e.Meta }

// HandleKey routes one key press. It never panics through to the host.
func (c *Composer) HandleKey(e shortcut.Event) (eff Effect) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("form: key handler: %v", r)
			c.closePopup()
			eff = Effect{Handled: true}
		}
	}()

	if shortcut.Restricted(e) {
		return Effect{Handled: true}
	}
	// Popup state and the caret snapshot must reflect what was typed since
	// the last debounced pass.
	c.FlushInput()

	key := shortcut.Event{Key: e.Key}.String(false)
	if c.popup != PopupClosed {
		switch {
		case bare(e) && (key == "up" || key == "down"):
			if key == "down" {
				c.Move(1)
			} else {
				c.Move(-1)
			}
			return Effect{Handled: true}
		case bare(e) && (key == "enter" || key == "tab"):
			if c.Commit() {
				return Effect{Handled: true}
			}
		case key == "escape":
			c.closePopup()
			return Effect{Handled: true}
		}
	}

	if a, ok := c.gate.Resolve(e, shortcut.CategoryLocal); ok {
		switch a {
		case shortcut.ActionLineBreak:
			c.BreakLine()
			return Effect{Handled: true, Action: a}
		case shortcut.ActionSend:
			return Effect{Handled: true, Action: a}
		case shortcut.ActionSwitchChat:
			if c.HasContent() {
				return Effect{}
			}
			dir := 1
			if key == "up" {
				dir = -1
			}
			return Effect{Handled: true, Action: a, Direction: dir}
		}
	}
	if b, ok := c.gate.Match(e, shortcut.CategoryLocal); ok && b.Action == shortcut.ActionSend {
		// Send suppressed by a composition; the key belongs to the IME.
		return Effect{Handled: true}
	}
	if a, ok := c.gate.Resolve(e, shortcut.CategoryApp); ok {
		return Effect{Handled: true, Action: a}
	}
	return Effect{}
}

// StartComposition marks an IME composition as active.
func (c *Composer) StartComposition() { c.gate.StartComposition() }

// EndComposition clears the composition flag and rescans the input.
func (c *Composer) EndComposition() {
	c.gate.EndComposition()
	c.Input()
}
