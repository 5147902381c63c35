// ABOUTME: The keys command: prints the effective shortcut table after config overrides
// ABOUTME: Reports same-category conflicts and exits non-zero when any exist

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mauromedda/msgcomposer/internal/config"
	"github.com/mauromedda/msgcomposer/internal/keybindings"
)

func keysCmd() *cobra.Command {
	var (
		mac     bool
		project string
	)
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Show the shortcut table and any conflicts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				project = cwd
			}
			settings, err := config.Load(project)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			table, err := config.ApplyKeybindings(settings.Keybindings, settings.Disabled, mac)
			if err != nil {
				return fmt.Errorf("applying keybindings: %w", err)
			}

			mgr := keybindings.New(table, mac)
			out := cmd.OutOrStdout()
			fmt.Fprint(out, mgr.FormatAll())

			conflicts := mgr.Conflicts()
			if len(conflicts) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nConflicts:")
			for _, c := range conflicts {
				names := make([]string, len(c.Actions))
				for i, a := range c.Actions {
					names[i] = string(a)
				}
				fmt.Fprintf(out, "  %-16s %s: %s\n", c.Key, c.Category, strings.Join(names, ", "))
			}
			return fmt.Errorf("%d shortcut conflicts", len(conflicts))
		},
	}
	cmd.Flags().BoolVar(&mac, "mac", runtime.GOOS == "darwin", "show macOS keys")
	cmd.Flags().StringVar(&project, "project", "", "project root holding .msgcomposer/config.yaml (default: cwd)")
	return cmd
}
