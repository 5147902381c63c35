// ABOUTME: Transcript of sent and received messages in a scrollable bubbles viewport
// ABOUTME: Bodies are tokenized into text, mention and url segments and rendered as markdown

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
	"github.com/mauromedda/msgcomposer/pkg/tui/width"
)

// entry is one rendered message.
type entry struct {
	author      string
	kind        linear.Kind
	tokens      []linear.Token
	attachments []linear.AttachmentRef
}

// TranscriptModel displays past messages, newest at the bottom.
type TranscriptModel struct {
	vp      viewport.Model
	entries []entry
	md      *MarkdownRenderer
	dark    bool
	width   int
}

var _ tea.Model = TranscriptModel{}

// NewTranscriptModel creates an empty transcript.
func NewTranscriptModel(dark bool) TranscriptModel {
	return TranscriptModel{vp: viewport.New(80, 10), md: NewMarkdownRenderer(), dark: dark, width: 80}
}

// Init returns nil; the transcript has no startup work.
func (m TranscriptModel) Init() tea.Cmd { return nil }

// Update forwards scrolling keys and mouse wheel events to the viewport.
func (m TranscriptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the visible part of the transcript.
func (m TranscriptModel) View() string { return m.vp.View() }

// SetSize resizes the viewport and re-renders.
func (m TranscriptModel) SetSize(w, h int) TranscriptModel {
	if h < 1 {
		h = 1
	}
	m.width = w
	m.vp.Width = w
	m.vp.Height = h
	return m.refresh()
}

// SetDark switches palettes and re-renders.
func (m TranscriptModel) SetDark(dark bool) TranscriptModel {
	m.dark = dark
	return m.refresh()
}

// Len returns the number of entries.
func (m TranscriptModel) Len() int { return len(m.entries) }

// AppendSent adds an outbound message.
func (m TranscriptModel) AppendSent(author string, msg linear.OutboundMessage) TranscriptModel {
	m.entries = append(m.entries, entry{
		author:      author,
		kind:        msg.Kind,
		tokens:      linear.Tokenize(msg.Content, msg.Mentions, nil),
		attachments: msg.Attachments,
	})
	return m.refresh()
}

// AppendReceived adds an incoming message in render form.
func (m TranscriptModel) AppendReceived(author string, in linear.RenderInput) TranscriptModel {
	m.entries = append(m.entries, entry{
		author: author,
		kind:   linear.KindText,
		tokens: linear.Tokenize(in.Content, in.MentionList, in.URLs),
	})
	return m.refresh()
}

func (m TranscriptModel) refresh() TranscriptModel {
	s := Styles(m.dark)
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		header := s.Author.Render(e.author)
		if e.kind == linear.KindAIChat {
			header += " " + s.Muted.Render("to agent")
		}
		b.WriteString(header)
		if body := TokensMarkdown(e.tokens); body != "" {
			b.WriteString("\n")
			b.WriteString(m.md.Render(body, m.width, m.dark))
		}
		for _, a := range e.attachments {
			b.WriteString("\n")
			b.WriteString(s.Muted.Render(width.Truncate(attachmentLine(a), m.width, width.Ellipsis)))
		}
	}
	m.vp.SetContent(b.String())
	m.vp.GotoBottom()
	return m
}

// TokensMarkdown turns a token stream into markdown: mentions become bold,
// URLs become links titled with their shortened alt title.
func TokensMarkdown(tokens []linear.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case linear.TokenMention:
			fmt.Fprintf(&b, "**%s**", t.Text)
		case linear.TokenURL:
			title := t.Text
			if t.Link != nil {
				fmt.Fprintf(&b, "[%s](%s %q)", title, t.Link.Href, t.Link.AltTitle)
				continue
			}
			b.WriteString(title)
		default:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

func attachmentLine(a linear.AttachmentRef) string {
	var parts []string
	if a.Width > 0 && a.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", a.Width, a.Height))
	}
	if a.Duration > 0 {
		parts = append(parts, a.Duration.Round(time.Second).String())
	}
	if a.Size > 0 {
		parts = append(parts, humanSize(a.Size))
	}
	line := fmt.Sprintf("[%s] %s", a.Kind, a.Name)
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
