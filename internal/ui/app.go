// ABOUTME: Root AppModel hosting one composer, its transcript and the conversation list
// ABOUTME: Translates key, paste, mouse and focus events into composer operations

// Package ui is the Bubble Tea host of the chat composer.
package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mauromedda/msgcomposer/internal/config"
	"github.com/mauromedda/msgcomposer/internal/keybindings"
	"github.com/mauromedda/msgcomposer/internal/notify"
	"github.com/mauromedda/msgcomposer/internal/termfix"
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/form"
	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
	"github.com/mauromedda/msgcomposer/pkg/composer/media"
	"github.com/mauromedda/msgcomposer/pkg/composer/selection"
	"github.com/mauromedda/msgcomposer/pkg/composer/shortcut"
	"github.com/mauromedda/msgcomposer/pkg/composer/swipe"
	"github.com/mauromedda/msgcomposer/pkg/tui/clipboard"
	"github.com/mauromedda/msgcomposer/pkg/tui/image"
)

const (
	noticeTTL   = 4 * time.Second
	placeholder = "Message, @ to mention, / for agents"
	// Terminal cells are mapped to pixels for the swipe thresholds.
	cellWidthPx  = 8
	cellHeightPx = 16
)

// Deps are the host's collaborators.
type Deps struct {
	// Conversations must hold at least one entry; switch-chat cycles them.
	Conversations []form.Conversation
	Options       form.Options
	Notifier      *notify.Notifier
	Clipboard     clipboard.Clipboard
	// ReadImage reads a clipboard image; nil disables image paste.
	ReadImage func(ctx context.Context) ([]byte, error)
	// Sink receives submitted messages off the UI goroutine.
	Sink   func([]linear.OutboundMessage) error
	Log    selection.Logger
	Author string
	Dark   bool
	Swipe  swipe.Options
	// Reload re-reads settings when a config file changes.
	Reload      func() (*config.Settings, error)
	ConfigFiles []string
}

// shared holds mutable state that must survive AppModel value copies.
// Pointer fields are shared across copies; pending notices are appended
// from any goroutine and drained on the UI goroutine.
type shared struct {
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	notices []notify.Notice
	unsub   func()
}

func (sh *shared) send(msg tea.Msg) {
	if sh.program != nil {
		sh.program.Send(msg)
	}
}

func (sh *shared) queue(n notify.Notice) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.notices = append(sh.notices, n)
}

func (sh *shared) drain() []notify.Notice {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	out := sh.notices
	sh.notices = nil
	return out
}

// Compile-time check that AppModel satisfies tea.Model.
var _ tea.Model = AppModel{}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	sh *shared

	comp  *form.Composer
	host  *selection.MemoryHost
	keys  *keybindings.Manager
	swipe *swipe.Detector
	help  help.Model

	convs       []form.Conversation
	current     int
	transcripts []TranscriptModel

	notice    *notify.Notice
	noticeSeq int
	inflight  int

	// clearArmed is set by an Escape on a non-empty draft; only an
	// immediately following Escape clears it.
	clearArmed bool

	focused       bool
	dark          bool
	width, height int

	deps Deps
}

// NewAppModel creates an AppModel wired with the given dependencies.
func NewAppModel(deps Deps) AppModel {
	ctx, cancel := context.WithCancel(context.Background())
	sh := &shared{ctx: ctx, cancel: cancel}

	if len(deps.Conversations) == 0 {
		deps.Conversations = []form.Conversation{{ID: "default", Kind: form.Direct}}
	}
	if deps.Author == "" {
		deps.Author = "you"
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewNotifier(notify.DefaultInterval, notify.DefaultBurst)
	}
	sh.unsub = deps.Notifier.Subscribe(sh.queue)

	opts := deps.Options
	if opts.Debounce > 0 && opts.OnTick == nil {
		opts.OnTick = func(seq uint64) { sh.send(DebounceTickMsg{Seq: seq}) }
	}

	host := selection.NewMemoryHost()
	host.Focus()
	comp := form.New(host, deps.Conversations[0], opts, deps.Notifier, deps.Log)

	transcripts := make([]TranscriptModel, len(deps.Conversations))
	for i := range transcripts {
		transcripts[i] = NewTranscriptModel(deps.Dark)
	}

	return AppModel{
		sh:          sh,
		comp:        comp,
		host:        host,
		keys:        keybindings.New(comp.Gate().Bindings(), opts.Mac),
		swipe:       swipe.New(deps.Swipe),
		help:        help.New(),
		convs:       deps.Conversations,
		transcripts: transcripts,
		focused:     true,
		dark:        deps.Dark,
		deps:        deps,
	}
}

// Composer exposes the hosted composer.
func (m AppModel) Composer() *form.Composer { return m.comp }

// Conversation returns the active conversation.
func (m AppModel) Conversation() form.Conversation { return m.convs[m.current] }

// Transcript returns the active conversation's transcript.
func (m AppModel) Transcript() TranscriptModel { return m.transcripts[m.current] }

// Notice returns the notice on display, if any.
func (m AppModel) Notice() (notify.Notice, bool) {
	if m.notice == nil {
		return notify.Notice{}, false
	}
	return *m.notice, true
}

// Close releases the composer and unsubscribes from notices.
func (m AppModel) Close() {
	m.sh.cancel()
	if m.sh.unsub != nil {
		m.sh.unsub()
	}
	m.comp.Close()
}

// Init sets the window title.
func (m AppModel) Init() tea.Cmd {
	return tea.SetWindowTitle("msgcomposer: " + m.Conversation().ID)
}

// Update routes messages to the appropriate handler.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m, cmd = m.update(msg)
	var nc tea.Cmd
	if m, nc = m.drainNotices(); nc == nil {
		return m, cmd
	}
	return m, tea.Batch(cmd, nc)
}

func (m AppModel) update(msg tea.Msg) (AppModel, tea.Cmd) {
	switch msg := msg.(type) {
	// --- Layout ---
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		for i := range m.transcripts {
			m.transcripts[i] = m.transcripts[i].SetSize(msg.Width, m.transcriptHeight())
		}
		return m, nil

	case tea.FocusMsg:
		m.focused = true
		m.host.Focus()
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		m.comp.Blur()
		return m, nil

	// --- Input ---
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case DebounceTickMsg:
		m.comp.Tick(msg.Seq)
		return m, nil

	// --- Attachments ---
	case ProbeDoneMsg:
		m.inflight = max(m.inflight-1, 0)
		_ = m.comp.ResolveAttachment(msg.Result)
		return m, nil

	case ProbesDoneMsg:
		m.inflight = max(m.inflight-len(msg.Results), 0)
		for _, r := range msg.Results {
			_ = m.comp.ResolveAttachment(r)
		}
		return m, nil

	case ClipboardMsg:
		return m.handleClipboard(msg)

	// --- Notices ---
	case NoticeExpiredMsg:
		if msg.Seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	// --- Outbound ---
	case SentMsg:
		if msg.Err != nil {
			m.publish(notify.LevelError, "send/error", "message could not be sent", msg.Err)
		}
		return m, nil

	case ConfigReloadedMsg:
		return m.applySettings(msg)
	}
	return m, nil
}

// handleKey gives the composer first pick, then treats the key as editing.
func (m AppModel) handleKey(msg tea.KeyMsg) (AppModel, tea.Cmd) {
	armed := m.clearArmed
	m.clearArmed = false
	if msg.Paste {
		return m.handlePaste(string(msg.Runes))
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlV:
		return m, m.readClipboard()
	case tea.KeyPgUp, tea.KeyPgDown:
		return m.updateTranscript(msg)
	case tea.KeyF1:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if eff := m.comp.HandleKey(keybindings.EventFromKey(msg)); eff.Handled {
		return m.runAction(eff)
	}

	switch msg.Type {
	case tea.KeyBackspace:
		m.comp.Backspace()
	case tea.KeyDelete:
		m.comp.DeleteForward()
	case tea.KeyLeft:
		m.comp.MoveCaret(-1)
	case tea.KeyRight:
		m.comp.MoveCaret(1)
	case tea.KeyHome, tea.KeyCtrlA:
		m.comp.CaretToStart()
	case tea.KeyEnd, tea.KeyCtrlE:
		m.comp.CaretToEnd()
	case tea.KeyEscape:
		switch {
		case armed:
			m.comp.Clear()
		case m.comp.HasContent():
			m.clearArmed = true
			m.publish(notify.LevelInfo, "clear/confirm", "press Esc again to discard the draft", nil)
		}
	case tea.KeyEnter:
		// Reached only when send is disabled or rebound.
		m.comp.BreakLine()
	case tea.KeySpace:
		m.comp.Type(" ")
	case tea.KeyRunes:
		if !msg.Alt {
			m.comp.Type(string(msg.Runes))
		}
	}
	return m, nil
}

func (m AppModel) runAction(eff form.Effect) (AppModel, tea.Cmd) {
	switch eff.Action {
	case shortcut.ActionSend:
		return m.submit()
	case shortcut.ActionSwitchChat:
		return m.switchChat(eff.Direction)
	case shortcut.ActionToggleTheme:
		return m.setDark(!m.dark), nil
	case shortcut.ActionCloseWindow:
		return m, tea.Quit
	case shortcut.ActionMinimize:
		return m, tea.Suspend
	}
	return m, nil
}

func (m AppModel) setDark(dark bool) AppModel {
	m.dark = dark
	termfix.Apply(dark)
	for i := range m.transcripts {
		m.transcripts[i] = m.transcripts[i].SetDark(dark)
	}
	return m
}

// submit hands the input to the sink. Attachments are addressed by their
// local source until an upload collaborator assigns a key.
func (m AppModel) submit() (AppModel, tea.Cmd) {
	if m.inflight > 0 {
		m.publish(notify.LevelInfo, "send/pending", "attachments are still loading", nil)
		return m, nil
	}
	for _, a := range m.comp.Attachments() {
		if a.Status != document.StatusUploaded {
			m.comp.Media(a.Kind).MarkUploaded(a.ID, localKey(a))
		}
	}
	msgs := m.comp.Submit()
	if len(msgs) == 0 {
		return m, nil
	}
	t := m.transcripts[m.current]
	for _, out := range msgs {
		t = t.AppendSent(m.deps.Author, out)
	}
	m.transcripts[m.current] = t

	sink := m.deps.Sink
	if sink == nil {
		return m, nil
	}
	return m, func() tea.Msg { return SentMsg{Messages: msgs, Err: sink(msgs)} }
}

func localKey(a *document.Attachment) string {
	if a.File.Path != "" {
		return "file://" + a.File.Path
	}
	return "local/" + a.ID
}

func (m AppModel) switchChat(dir int) (AppModel, tea.Cmd) {
	n := len(m.convs)
	if n < 2 || dir == 0 {
		return m, nil
	}
	m.current = ((m.current+dir)%n + n) % n
	m.comp.SwitchConversation(m.convs[m.current])
	return m, tea.SetWindowTitle("msgcomposer: " + m.Conversation().ID)
}

func (m AppModel) updateTranscript(msg tea.Msg) (AppModel, tea.Cmd) {
	tm, cmd := m.transcripts[m.current].Update(msg)
	m.transcripts[m.current] = tm.(TranscriptModel)
	return m, cmd
}

// handleMouse feeds left-button drags to the swipe detector; horizontal
// swipes switch conversations, the wheel scrolls the transcript.
func (m AppModel) handleMouse(msg tea.MouseMsg) (AppModel, tea.Cmd) {
	if tea.MouseEvent(msg).IsWheel() {
		return m.updateTranscript(msg)
	}
	p := swipe.Point{X: float64(msg.X * cellWidthPx), Y: float64(msg.Y * cellHeightPx)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.swipe.Start(p)
		}
	case tea.MouseActionMotion:
		if m.swipe.Swiping() {
			m.swipe.Move(p)
		}
	case tea.MouseActionRelease:
		if !m.swipe.Swiping() {
			return m, nil
		}
		switch m.swipe.End(p) {
		case swipe.Left:
			if !m.comp.HasContent() {
				return m.switchChat(1)
			}
		case swipe.Right:
			if !m.comp.HasContent() {
				return m.switchChat(-1)
			}
		}
	}
	return m, nil
}

// handlePaste attaches dropped files, splices tagged HTML or plain text.
func (m AppModel) handlePaste(text string) (AppModel, tea.Cmd) {
	if files := DroppedFiles(text); len(files) > 0 {
		return m.attachFiles(files)
	}
	if looksLikeHTML(text) {
		if err := m.comp.PasteHTML(text); err == nil {
			return m, nil
		}
	}
	_ = m.comp.PasteText(text)
	return m, nil
}

func (m AppModel) attachFiles(files []document.File) (AppModel, tea.Cmd) {
	var pending []*media.Pending
	for _, f := range files {
		p, err := m.comp.Attach(KindFor(f.Name), f)
		if err != nil {
			continue
		}
		pending = append(pending, p)
	}
	switch len(pending) {
	case 0:
		return m, nil
	case 1:
		m.inflight++
		p, ctx := pending[0], m.sh.ctx
		return m, func() tea.Msg { return ProbeDoneMsg{Result: p.Load(ctx)} }
	default:
		m.inflight += len(pending)
		comp, ctx := m.comp, m.sh.ctx
		return m, func() tea.Msg { return ProbesDoneMsg{Results: comp.ProbeAll(ctx, pending)} }
	}
}

func (m AppModel) readClipboard() tea.Cmd {
	readImage, cb, ctx := m.deps.ReadImage, m.deps.Clipboard, m.sh.ctx
	return func() tea.Msg {
		if readImage != nil {
			if data, err := readImage(ctx); err == nil && len(data) > 0 {
				return ClipboardMsg{Image: data}
			}
		}
		if cb == nil {
			return ClipboardMsg{Err: clipboard.ErrUnsupported}
		}
		text, err := cb.ReadText()
		return ClipboardMsg{Text: text, Err: err}
	}
}

func (m AppModel) handleClipboard(msg ClipboardMsg) (AppModel, tea.Cmd) {
	switch {
	case len(msg.Image) > 0:
		format := image.Sniff(msg.Image)
		f := document.File{
			Name: "clipboard" + format.Ext(),
			MIME: format.MIME(),
			Size: int64(len(msg.Image)),
			Data: msg.Image,
		}
		return m.attachFiles([]document.File{f})
	case msg.Text != "":
		return m.handlePaste(msg.Text)
	case msg.Err != nil:
		m.publish(notify.LevelWarning, "clipboard/error", "clipboard is not available", msg.Err)
	}
	return m, nil
}

func (m AppModel) applySettings(msg ConfigReloadedMsg) (AppModel, tea.Cmd) {
	if msg.Err != nil || msg.Settings == nil {
		m.publish(notify.LevelError, "config/error", "config reload failed", msg.Err)
		return m, nil
	}
	opts, err := msg.Settings.ComposerOptions(m.deps.Options.Mac)
	if err != nil {
		m.publish(notify.LevelError, "config/error", err.Error(), err)
		return m, nil
	}
	m.comp.Gate().Replace(opts.Shortcuts)
	m.keys.Reload(opts.Shortcuts)
	m.swipe = swipe.New(msg.Settings.SwipeOptions())
	m = m.setDark(msg.Settings.DarkTheme())
	m.publish(notify.LevelInfo, "config/reloaded", "settings reloaded", nil)
	return m, nil
}

func (m AppModel) publish(level notify.Level, reason, text string, err error) {
	m.deps.Notifier.Publish(notify.Notice{Level: level, Reason: reason, Message: text, Err: err})
}

// drainNotices shows the newest queued notice and schedules its expiry.
func (m AppModel) drainNotices() (AppModel, tea.Cmd) {
	ns := m.sh.drain()
	if len(ns) == 0 {
		return m, nil
	}
	n := ns[len(ns)-1]
	m.notice = &n
	m.noticeSeq++
	seq := m.noticeSeq
	return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return NoticeExpiredMsg{Seq: seq} })
}

func (m AppModel) transcriptHeight() int {
	// header, separator, notice, composer, help
	return max(m.height-6, 1)
}

// View renders header, transcript, popup, notice, composer and help.
func (m AppModel) View() string {
	s := Styles(m.dark)
	conv := m.Conversation()

	header := s.Header.Render("# " + conv.ID)
	if conv.Kind != form.Direct {
		header += " " + s.Muted.Render(string(conv.Kind))
	}
	if len(m.convs) > 1 {
		header += " " + s.Muted.Render(fmt.Sprintf("[%d/%d]", m.current+1, len(m.convs)))
	}

	parts := []string{header, m.transcripts[m.current].View()}
	if m.width > 0 {
		parts = append(parts, s.Muted.Render(strings.Repeat("─", m.width)))
	}
	if pop := RenderPopup(m.comp.Popup(), min(max(m.width, 20), 40), s); pop != "" {
		parts = append(parts, pop)
	}
	if m.notice != nil {
		parts = append(parts, s.NoticeStyle(m.notice.Level).Render(m.notice.Message))
	}
	prompt := s.Prompt.Render("❯ ")
	body := RenderDocument(m.comp.Document(), m.comp.Caret(), m.focused, s, placeholder)
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, prompt, body))
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}
