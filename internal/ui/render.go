// ABOUTME: Renders the live document with its caret, entity chips and attachment chips
// ABOUTME: Also renders the autocomplete popup with fuzzy-highlighted candidate rows

package ui

import (
	"fmt"
	"strings"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/form"
	"github.com/mauromedda/msgcomposer/pkg/tui/fuzzy"
	"github.com/mauromedda/msgcomposer/pkg/tui/width"
)

const (
	chipNameWidth = 24
	popupRows     = 6
)

// RenderDocument draws doc with the caret at caret. An unfocused empty
// document shows the placeholder.
func RenderDocument(doc *document.Document, caret document.Point, focused bool, s ThemeStyles, placeholder string) string {
	if !focused && doc.IsEmpty() {
		return s.Placeholder.Render(placeholder)
	}
	nodes := doc.Nodes()

	b, ok := doc.Resolve(caret)
	if !ok {
		b, _ = doc.Resolve(doc.End())
	}
	mark := func() string {
		if !focused {
			return ""
		}
		return s.Caret.Render(" ")
	}

	var out strings.Builder
	for i, n := range nodes {
		if !b.InText && b.Index == i {
			out.WriteString(mark())
		}
		switch n.Kind() {
		case document.KindText:
			if focused && b.InText && b.Index == i {
				out.WriteString(textWithCaret(n.Text(), b.Offset, s))
			} else {
				out.WriteString(n.Text())
			}
		case document.KindEntity:
			e := n.Entity()
			if e.Kind == document.EntityAgent {
				out.WriteString(s.Agent.Render(e.DisplayText))
			} else {
				out.WriteString(s.Mention.Render(e.DisplayText))
			}
		case document.KindAttachment:
			out.WriteString(renderChip(n.Attachment(), s))
		}
	}
	if !b.InText && b.Index >= len(nodes) {
		out.WriteString(mark())
	}
	return out.String()
}

// textWithCaret highlights the rune under the caret, or appends a caret
// cell at a line end.
func textWithCaret(text string, offset int, s ThemeStyles) string {
	r := []rune(text)
	if offset > len(r) {
		offset = len(r)
	}
	if offset < len(r) && r[offset] != '\n' {
		return string(r[:offset]) + s.Caret.Render(string(r[offset])) + string(r[offset+1:])
	}
	return string(r[:offset]) + s.Caret.Render(" ") + string(r[offset:])
}

// ChipLabel is the text of an attachment chip.
func ChipLabel(a *document.Attachment) string {
	name := width.Truncate(a.DisplayName, chipNameWidth, width.Ellipsis)
	switch {
	case a.Status == document.StatusFailed:
		return fmt.Sprintf("[%s %s failed]", a.Kind, name)
	case !a.Ready:
		return fmt.Sprintf("[%s %s …]", a.Kind, name)
	case a.Status == document.StatusUploaded:
		return fmt.Sprintf("[%s %s ✓]", a.Kind, name)
	case a.Meta.Width > 0 && a.Meta.Height > 0:
		return fmt.Sprintf("[%s %s %dx%d]", a.Kind, name, a.Meta.Width, a.Meta.Height)
	case a.Percent > 0:
		return fmt.Sprintf("[%s %s %d%%]", a.Kind, name, a.Percent)
	default:
		return fmt.Sprintf("[%s %s]", a.Kind, name)
	}
}

func renderChip(a *document.Attachment, s ThemeStyles) string {
	label := ChipLabel(a)
	switch {
	case a.Status == document.StatusFailed:
		return s.ChipFailed.Render(label)
	case !a.Ready:
		return s.ChipPending.Render(label)
	default:
		return s.Chip.Render(label)
	}
}

// RenderPopup draws the candidate list, keeping the selected row visible.
func RenderPopup(p form.PopupState, maxWidth int, s ThemeStyles) string {
	if !p.Open() {
		return ""
	}
	prefix, title := "@", "Mention someone"
	if p.Kind == form.PopupAgent {
		prefix, title = "/", "Ask an agent"
	}

	rows := []string{s.PopupTitle.Render(title)}
	if len(p.Candidates) == 0 {
		rows = append(rows, s.Muted.Render("no matches"))
		return s.PopupBorder.Render(strings.Join(rows, "\n"))
	}

	start := 0
	if p.Selected >= popupRows {
		start = p.Selected - popupRows + 1
	}
	end := min(start+popupRows, len(p.Candidates))
	inner := max(maxWidth-4, 8)
	for i := start; i < end; i++ {
		c := p.Candidates[i]
		name := width.Truncate(c.DisplayName, inner-1, width.Ellipsis)
		if i == p.Selected {
			rows = append(rows, s.PopupSelected.Render(width.PadRight(prefix+name, inner)))
			continue
		}
		rows = append(rows, s.PopupRow.Render(prefix+fuzzy.Highlight(name, p.Query, func(x string) string { return s.Match.Render(x) })))
	}
	if more := len(p.Candidates) - end; more > 0 {
		rows = append(rows, s.Muted.Render(fmt.Sprintf("+%d more", more)))
	}
	return s.PopupBorder.Render(strings.Join(rows, "\n"))
}
