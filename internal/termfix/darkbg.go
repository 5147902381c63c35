// ABOUTME: Pre-sets the lipgloss background before BubbleTea's init() sends OSC queries
// ABOUTME: Must be imported before any package that imports bubbletea; Apply switches after config load

package termfix

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnv overrides the background detection at startup ("light" or "dark").
const ThemeEnv = "MSGCOMPOSER_THEME"

func init() {
	// Setting the background explicitly makes lipgloss skip the OSC 10/11
	// terminal query that BubbleTea's own init() would otherwise trigger.
	// This package must NOT import bubbletea (directly or transitively).
	Apply(os.Getenv(ThemeEnv) != "light")
}

// Apply sets the background lipgloss adaptive colors resolve against.
func Apply(dark bool) {
	lipgloss.SetHasDarkBackground(dark)
}
