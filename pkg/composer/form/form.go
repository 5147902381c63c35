// ABOUTME: Composer: wires selection, tags, media, detection and shortcuts for one input surface
// ABOUTME: Conversation context is passed in explicitly; all state is owned by one goroutine

// Package form orchestrates the chat composer: popup state, keyboard
// handling, insertion and submit assembly.
package form

import (
	"context"
	"time"

	"golang.org/x/text/cases"

	"github.com/mauromedda/msgcomposer/internal/notify"
	"github.com/mauromedda/msgcomposer/pkg/composer/detect"
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/domcache"
	"github.com/mauromedda/msgcomposer/pkg/composer/media"
	"github.com/mauromedda/msgcomposer/pkg/composer/selection"
	"github.com/mauromedda/msgcomposer/pkg/composer/shortcut"
	"github.com/mauromedda/msgcomposer/pkg/composer/tag"
)

// ConversationKind selects room-specific rules.
type ConversationKind string

const (
	Direct ConversationKind = "direct"
	Group  ConversationKind = "group"
	AI     ConversationKind = "ai"
)

// Candidate is a mentionable user or agent.
type Candidate struct {
	ID          string
	DisplayName string
}

// Conversation is the context the composer works in.
type Conversation struct {
	ID   string
	Kind ConversationKind
	// TargetID is the agent an AI conversation talks to.
	TargetID string
	Users    []Candidate
	Agents   []Candidate
	// ReplyToUserID is promoted to the top of the mention popup.
	ReplyToUserID string
	ReplyToMsgID  string
}

// Options tune the composer. Zero fields take the defaults.
type Options struct {
	MaxAttachments int
	MaxFileBytes   int64
	Debounce       time.Duration
	CacheTTL       time.Duration
	MatchCap       int
	QueryMaxLen    int
	ProbeTimeout   time.Duration
	Now            func() time.Time
	// Probes override the metadata probe per attachment kind.
	Probes map[document.AttachmentKind]media.Probe
	// Mac selects macOS shortcut keys.
	Mac       bool
	Shortcuts []shortcut.Binding
	// OnTick receives debounce ticks; pass them back to Tick. When nil and
	// Debounce is positive, ticks are drained with FlushInput.
	OnTick func(seq uint64)
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		MaxAttachments: media.DefaultMaxCount,
		MaxFileBytes:   100 << 20,
		Debounce:       60 * time.Millisecond,
		CacheTTL:       domcache.DefaultTTL,
		MatchCap:       tag.DefaultMatchCap,
		QueryMaxLen:    detect.DefaultMaxQuery,
		ProbeTimeout:   10 * time.Second,
	}
}

// Notifier receives user-visible notices.
type Notifier interface {
	Publish(n notify.Notice) bool
}

type nopNotifier struct{}

func (nopNotifier) Publish(notify.Notice) bool { return false }

// Composer is one live input surface.
type Composer struct {
	opts     Options
	conv     Conversation
	host     selection.Host
	sel      *selection.Manager
	cache    *domcache.Cache
	tags     *tag.Manager
	media    map[document.AttachmentKind]*media.Manager
	reg      *media.Registry
	detector *detect.Detector
	gate     *shortcut.Gate
	notifier Notifier
	log      selection.Logger
	fold     cases.Caser
	debounce *Debouncer

	popup       Popup
	query       string
	selected    int
	snapshot    document.Snapshot
	hasSnapshot bool

	users  []tag.Mention
	agents []tag.Mention
}

// New mounts a composer on host.
func New(host selection.Host, conv Conversation, opts Options, n Notifier, log selection.Logger) *Composer {
	def := DefaultOptions()
	if opts.MaxAttachments <= 0 {
		opts.MaxAttachments = def.MaxAttachments
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = def.MaxFileBytes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = def.CacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if n == nil {
		n = nopNotifier{}
	}
	if log == nil {
		log = selection.NopLogger
	}

	c := &Composer{
		opts:     opts,
		conv:     conv,
		host:     host,
		sel:      selection.New(host, log),
		reg:      media.NewRegistry(),
		detector: detect.New(opts.QueryMaxLen),
		gate:     shortcut.NewGate(opts.Mac, opts.Shortcuts),
		notifier: n,
		log:      log,
		fold:     cases.Fold(),
	}
	c.cache = domcache.New(c.sel.Root(), opts.CacheTTL, opts.Now)
	c.tags = tag.New(c.sel, c.cache, opts.MatchCap, log)

	probes := map[document.AttachmentKind]media.Probe{
		document.AttachImage: media.ImageProbe,
		document.AttachVideo: media.VideoProbe,
		document.AttachFile:  media.FileProbe,
	}
	for k, p := range opts.Probes {
		probes[k] = p
	}
	c.media = make(map[document.AttachmentKind]*media.Manager, len(probes))
	for _, k := range []document.AttachmentKind{document.AttachImage, document.AttachVideo, document.AttachFile} {
		c.media[k] = media.New(media.Config{
			Kind:         k,
			MaxCount:     opts.MaxAttachments,
			MaxBytes:     opts.MaxFileBytes,
			Allowed:      c.mediaAllowed,
			Probe:        probes[k],
			ProbeTimeout: opts.ProbeTimeout,
		}, c.sel, c.cache, c.reg, log)
	}
	if opts.Debounce > 0 {
		c.debounce = NewDebouncer(opts.Debounce, opts.OnTick)
	}
	return c
}

// mediaAllowed reads live state: AI rooms and agent replies are text only.
func (c *Composer) mediaAllowed() bool {
	return c.conv.Kind != AI && len(c.agents) == 0
}

// Document returns the mounted document.
func (c *Composer) Document() *document.Document { return c.sel.Root() }

// Selection returns the selection manager.
func (c *Composer) Selection() *selection.Manager { return c.sel }

// Gate returns the shortcut gate.
func (c *Composer) Gate() *shortcut.Gate { return c.gate }

// Conversation returns the current context.
func (c *Composer) Conversation() Conversation { return c.conv }

// Media returns the manager for kind, used by the upload collaborator.
func (c *Composer) Media(kind document.AttachmentKind) *media.Manager { return c.media[kind] }

// Registry returns the preview handle registry.
func (c *Composer) Registry() *media.Registry { return c.reg }

// Mentions returns the user mentions as of the last input pass.
func (c *Composer) Mentions() []tag.Mention { return c.users }

// Agents returns the agent mentions as of the last input pass.
func (c *Composer) Agents() []tag.Mention { return c.agents }

// Caret returns the current caret, or the document end when there is no
// valid selection.
func (c *Composer) Caret() document.Point {
	if r, ok := c.sel.ValidRange(); ok {
		return r.End
	}
	if d := c.sel.Root(); d != nil {
		return d.End()
	}
	return document.Point{}
}

// refresh re-derives the mention lists from the document.
func (c *Composer) refresh() {
	c.users = c.tags.Mentions(document.EntityUser)
	c.agents = c.tags.Mentions(document.EntityAgent)
}

// SwitchConversation clears the input and adopts conv.
func (c *Composer) SwitchConversation(conv Conversation) {
	c.Clear()
	c.conv = conv
}

// Blur drops the popup and the query cache, as losing focus does.
func (c *Composer) Blur() {
	c.closePopup()
	c.cache.Clear()
	if b, ok := c.host.(interface{ Blur() }); ok {
		b.Blur()
	}
}

// Close stops the debouncer and releases every handle.
func (c *Composer) Close() {
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.Clear()
}

// ProbeAll loads metadata for several pending attachments concurrently.
func (c *Composer) ProbeAll(ctx context.Context, pending []*media.Pending) []media.Result {
	return media.ProbeAll(ctx, pending, 4)
}
