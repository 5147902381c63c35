// ABOUTME: The tokenize command: splits a received message into text, mention and URL tokens
// ABOUTME: Reads the message JSON from a file or stdin and prints tokens or rendered markdown

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mauromedda/msgcomposer/internal/ui"
	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
)

func tokenizeCmd() *cobra.Command {
	var (
		format string
		light  bool
	)
	cmd := &cobra.Command{
		Use:   "tokenize [file]",
		Short: "Tokenize a received message (JSON) for rendering",
		Long: `Reads {"content": ..., "mentionList": [...], "urlContentMap": {...}} from
the file argument or stdin. --format json prints the token stream, --format
markdown renders it the way the transcript does.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer f.Close()
				in = f
			}
			return tokenize(in, cmd.OutOrStdout(), format, !light)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or markdown")
	cmd.Flags().BoolVar(&light, "light", false, "render markdown for a light background")
	return cmd
}

func tokenize(r io.Reader, w io.Writer, format string, dark bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	var in linear.RenderInput
	if err := in.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	tokens := linear.Tokenize(in.Content, in.MentionList, in.URLs)

	switch format {
	case "json":
		out, err := linear.MarshalTokens(tokens)
		if err != nil {
			return fmt.Errorf("encoding tokens: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	case "markdown", "md":
		width := 80
		if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
			width = cols
		}
		_, err := fmt.Fprintln(w, ui.NewMarkdownRenderer().Render(ui.TokensMarkdown(tokens), width, dark))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
