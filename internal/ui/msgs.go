// ABOUTME: All custom tea.Msg types for the composer host
// ABOUTME: Debounce ticks, probe results, clipboard reads, notice expiry and config reloads

package ui

import (
	"github.com/mauromedda/msgcomposer/internal/config"
	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
	"github.com/mauromedda/msgcomposer/pkg/composer/media"
)

// --- Composer (sent by timers and probe goroutines) ---

// DebounceTickMsg carries a debounce generation back to the UI goroutine.
type DebounceTickMsg struct{ Seq uint64 }

// ProbeDoneMsg carries metadata for one attachment.
type ProbeDoneMsg struct{ Result media.Result }

// ProbesDoneMsg carries metadata for a multi-file drop.
type ProbesDoneMsg struct{ Results []media.Result }

// --- Clipboard ---

// ClipboardMsg is the result of a paste request. Image wins over Text.
type ClipboardMsg struct {
	Image []byte
	Text  string
	Err   error
}

// --- Notices ---

// NoticeExpiredMsg clears the notice with the given generation.
type NoticeExpiredMsg struct{ Seq int }

// --- Outbound ---

// SentMsg reports messages handed to the sink.
type SentMsg struct {
	Messages []linear.OutboundMessage
	Err      error
}

// --- Internal ---

// ConfigReloadedMsg signals that the config files changed on disk.
type ConfigReloadedMsg struct {
	Settings *config.Settings
	Err      error
}
