// ABOUTME: CLI entry point for the chat composer
// ABOUTME: Cobra root with run (default), tokenize and keys subcommands

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// termfix must be imported before any package that imports bubbletea so
	// the background query never races the first frame.
	_ "github.com/mauromedda/msgcomposer/internal/termfix"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var args runArgs
	root := &cobra.Command{
		Use:     "composer",
		Short:   "Rich-text chat composer for the terminal",
		Long:    "composer: type messages with @mentions, /agent triggers and attachments, then hand them to a sink as JSON.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComposer(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	args.register(root)

	root.AddCommand(runCmd())
	root.AddCommand(tokenizeCmd())
	root.AddCommand(keysCmd())
	return root
}
