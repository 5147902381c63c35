// ABOUTME: Lipgloss styles for the composer host: document chips, popup rows, notices, transcript
// ABOUTME: Two built-in palettes (dark, light); Styles(dark) returns a cached set per palette

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/msgcomposer/internal/notify"
)

// ThemeStyles holds every style the host renders with.
type ThemeStyles struct {
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Caret       lipgloss.Style
	Mention     lipgloss.Style
	Agent       lipgloss.Style
	Chip        lipgloss.Style
	ChipPending lipgloss.Style
	ChipFailed  lipgloss.Style

	PopupBorder   lipgloss.Style
	PopupRow      lipgloss.Style
	PopupSelected lipgloss.Style
	PopupTitle    lipgloss.Style
	Match         lipgloss.Style

	Header lipgloss.Style
	Muted  lipgloss.Style
	URL    lipgloss.Style
	Author lipgloss.Style

	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

type palette struct {
	text, muted, accent, agent, border, selection, url string
	info, warning, errc                                string
}

var (
	darkPalette = palette{
		text: "252", muted: "244", accent: "214", agent: "183", border: "240",
		selection: "236", url: "117", info: "117", warning: "221", errc: "203",
	}
	lightPalette = palette{
		text: "235", muted: "245", accent: "166", agent: "97", border: "249",
		selection: "254", url: "25", info: "25", warning: "130", errc: "160",
	}

	darkStyles  = buildStyles(darkPalette)
	lightStyles = buildStyles(lightPalette)
)

// Styles returns the style set for the dark or light palette.
func Styles(dark bool) ThemeStyles {
	if dark {
		return darkStyles
	}
	return lightStyles
}

func buildStyles(p palette) ThemeStyles {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return ThemeStyles{
		Prompt:      lipgloss.NewStyle().Bold(true).Foreground(c(p.accent)),
		Placeholder: lipgloss.NewStyle().Foreground(c(p.muted)).Italic(true),
		Caret:       lipgloss.NewStyle().Reverse(true),
		Mention:     lipgloss.NewStyle().Bold(true).Foreground(c(p.accent)),
		Agent:       lipgloss.NewStyle().Bold(true).Foreground(c(p.agent)),
		Chip:        lipgloss.NewStyle().Background(c(p.selection)).Foreground(c(p.text)),
		ChipPending: lipgloss.NewStyle().Background(c(p.selection)).Foreground(c(p.muted)).Italic(true),
		ChipFailed:  lipgloss.NewStyle().Background(c(p.selection)).Foreground(c(p.errc)).Strikethrough(true),

		PopupBorder:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c(p.border)).Padding(0, 1),
		PopupRow:      lipgloss.NewStyle().Foreground(c(p.text)),
		PopupSelected: lipgloss.NewStyle().Background(c(p.selection)).Foreground(c(p.text)).Bold(true),
		PopupTitle:    lipgloss.NewStyle().Foreground(c(p.muted)),
		Match:         lipgloss.NewStyle().Underline(true).Foreground(c(p.accent)),

		Header: lipgloss.NewStyle().Bold(true).Foreground(c(p.text)),
		Muted:  lipgloss.NewStyle().Foreground(c(p.muted)),
		URL:    lipgloss.NewStyle().Underline(true).Foreground(c(p.url)),
		Author: lipgloss.NewStyle().Bold(true).Foreground(c(p.accent)),

		Info:    lipgloss.NewStyle().Foreground(c(p.info)),
		Warning: lipgloss.NewStyle().Foreground(c(p.warning)),
		Error:   lipgloss.NewStyle().Foreground(c(p.errc)).Bold(true),
	}
}

// NoticeStyle returns the style for a notice level.
func (s ThemeStyles) NoticeStyle(l notify.Level) lipgloss.Style {
	switch l {
	case notify.LevelError:
		return s.Error
	case notify.LevelWarning:
		return s.Warning
	default:
		return s.Info
	}
}
