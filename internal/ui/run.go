// ABOUTME: Entry point that creates the Bubble Tea program and runs it
// ABOUTME: Injects the program into shared state and watches config files for reloads

package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/msgcomposer/internal/config"
)

// Run starts the composer host and blocks until the user quits.
func Run(deps Deps, opts ...tea.ProgramOption) error {
	m := NewAppModel(deps)
	defer m.Close()

	base := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	}
	p := tea.NewProgram(m, append(base, opts...)...)

	// The model is copied by NewProgram; sh is a pointer and stays shared.
	m.sh.program = p

	if deps.Reload != nil && len(deps.ConfigFiles) > 0 {
		w := config.NewWatcher(deps.ConfigFiles, func() {
			s, err := deps.Reload()
			p.Send(ConfigReloadedMsg{Settings: s, Err: err})
		})
		if err := w.Start(); err != nil && deps.Log != nil {
			deps.Log.Warn("ui: config watcher: %v", err)
		}
		defer w.Stop()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
