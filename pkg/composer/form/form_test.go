// ABOUTME: Tests for popup transitions, candidate filtering, key routing, attachments and submit

package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/msgcomposer/internal/notify"
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
	"github.com/mauromedda/msgcomposer/pkg/composer/media"
	"github.com/mauromedda/msgcomposer/pkg/composer/selection"
	"github.com/mauromedda/msgcomposer/pkg/composer/shortcut"
)

type recorder struct{ notices []notify.Notice }

func (r *recorder) Publish(n notify.Notice) bool {
	r.notices = append(r.notices, n)
	return true
}

func okProbe(context.Context, document.File) (document.Metadata, error) {
	return document.Metadata{Width: 4, Height: 3}, nil
}

var (
	alice  = Candidate{ID: "u1", DisplayName: "alice"}
	albert = Candidate{ID: "u2", DisplayName: "Albert"}
	bob    = Candidate{ID: "u3", DisplayName: "bob"}
	helper = Candidate{ID: "a1", DisplayName: "helper"}
)

func group() Conversation {
	return Conversation{
		ID:            "room1",
		Kind:          Group,
		Users:         []Candidate{alice, albert, bob},
		Agents:        []Candidate{helper},
		ReplyToUserID: "u2",
	}
}

func newComposer(t *testing.T, conv Conversation, opts Options) (*Composer, *selection.MemoryHost, *recorder) {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	}
	if opts.Probes == nil {
		opts.Probes = map[document.AttachmentKind]media.Probe{
			document.AttachImage: okProbe,
			document.AttachVideo: okProbe,
			document.AttachFile:  okProbe,
		}
	}
	h := selection.NewMemoryHost()
	rec := &recorder{}
	c := New(h, conv, opts, rec, nil)
	t.Cleanup(c.Close)
	return c, h, rec
}

func TestMentionPopupFilterAndSticky(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("hi @al")
	p := c.Popup()
	require.Equal(t, PopupMention, p.Kind)
	assert.Equal(t, "al", p.Query)
	assert.Equal(t, []Candidate{albert, alice}, p.Candidates, "reply target first, then original order")

	c.Type("i")
	assert.Equal(t, []Candidate{alice}, c.Popup().Candidates)

	c.Type(" ")
	assert.False(t, c.Popup().Open(), "a space ends the trigger")
}

func TestCommitInsertsAndExcludesSelected(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("hi @al")
	eff := c.HandleKey(shortcut.Event{Key: "down"})
	assert.True(t, eff.Handled)
	eff = c.HandleKey(shortcut.Event{Key: "enter"})
	assert.True(t, eff.Handled)
	assert.Empty(t, eff.Action)

	assert.Equal(t, "hi @alice ", c.Document().Text())
	assert.False(t, c.Popup().Open())
	require.Len(t, c.Mentions(), 1)
	assert.Equal(t, "u1", c.Mentions()[0].ID)

	c.Type("@")
	assert.Equal(t, []Candidate{albert, bob}, c.Popup().Candidates)

	assert.False(t, c.InsertMention(alice), "duplicate insertion is a no-op")
	assert.Equal(t, 1, c.Document().Count(document.Entities(document.EntityUser)))
}

func TestPopupNavigationClamped(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("@")
	for range 5 {
		c.HandleKey(shortcut.Event{Key: "down"})
	}
	assert.Equal(t, 2, c.Popup().Selected)
	for range 5 {
		c.HandleKey(shortcut.Event{Key: "ArrowUp"})
	}
	assert.Equal(t, 0, c.Popup().Selected)

	eff := c.HandleKey(shortcut.Event{Key: "escape"})
	assert.True(t, eff.Handled)
	assert.False(t, c.Popup().Open())
	assert.Equal(t, "@", c.Document().Text())
}

func TestPopupRules(t *testing.T) {
	t.Run("ai room suppresses mentions", func(t *testing.T) {
		conv := group()
		conv.Kind = AI
		c, _, _ := newComposer(t, conv, Options{})
		c.Type("@a")
		assert.False(t, c.Popup().Open())
	})

	t.Run("agent mention suppresses user popup", func(t *testing.T) {
		c, _, _ := newComposer(t, group(), Options{})
		c.Type("/he")
		require.Equal(t, PopupAgent, c.Popup().Kind)
		require.True(t, c.Commit())
		assert.Equal(t, "/helper ", c.Document().Text())

		c.Type("@")
		assert.False(t, c.Popup().Open())
	})

	t.Run("user mention suppresses agent popup", func(t *testing.T) {
		c, _, _ := newComposer(t, group(), Options{})
		c.Type("@")
		require.True(t, c.Commit())
		c.Type("/")
		assert.False(t, c.Popup().Open())
	})

	t.Run("no unselected candidates", func(t *testing.T) {
		conv := group()
		conv.Users = []Candidate{alice}
		c, _, _ := newComposer(t, conv, Options{})
		c.InsertMention(alice)
		c.Type("@")
		assert.False(t, c.Popup().Open())
	})

	t.Run("host failure closes popup", func(t *testing.T) {
		c, h, _ := newComposer(t, group(), Options{})
		c.Type("@")
		require.True(t, c.Popup().Open())
		h.Err = errors.New("selection api gone")
		c.ProcessInput()
		assert.False(t, c.Popup().Open())
	})
}

func TestSelectFallsBackToEndForStaleSnapshot(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("@al")
	require.True(t, c.Popup().Open())
	c.Document().Clear()

	require.True(t, c.SelectMention(alice))
	assert.Equal(t, "@alice ", c.Document().Text())
}

func TestDebouncedInput(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{Debounce: time.Hour})

	c.Type("@a")
	assert.False(t, c.Popup().Open(), "pass not run yet")
	assert.False(t, c.Tick(42))
	assert.True(t, c.FlushInput())
	assert.True(t, c.Popup().Open())
	assert.False(t, c.FlushInput())
}

func TestDebounceTickReadsLiveState(t *testing.T) {
	ticks := make(chan uint64, 4)
	c, _, _ := newComposer(t, group(), Options{Debounce: time.Millisecond, OnTick: func(seq uint64) { ticks <- seq }})

	c.Type("@b")
	seq := <-ticks
	c.Type("o")
	newer := <-ticks
	assert.False(t, c.Tick(seq), "superseded tick")
	require.True(t, c.Tick(newer))
	assert.Equal(t, "bo", c.Popup().Query)
}

func TestKeysWhileInputPassPending(t *testing.T) {
	type step struct {
		typed string
		flush bool
		back  bool
	}
	tests := []struct {
		name     string
		steps    []step
		keys     []string
		want     Effect
		text     string
		mentions []string
	}{
		{
			name:     "enter commits the narrowed candidate",
			steps:    []step{{typed: "hi @al", flush: true}, {typed: "i"}},
			keys:     []string{"enter"},
			want:     Effect{Handled: true},
			text:     "hi @alice ",
			mentions: []string{"u1"},
		},
		{
			name:     "tab commits before the first pass ran",
			steps:    []step{{typed: "hi @al"}},
			keys:     []string{"tab"},
			want:     Effect{Handled: true},
			text:     "hi @Albert ",
			mentions: []string{"u2"},
		},
		{
			name:  "enter sends once the trigger ended",
			steps: []step{{typed: "hi @al", flush: true}, {typed: " "}},
			keys:  []string{"enter"},
			want:  Effect{Handled: true, Action: shortcut.ActionSend},
			text:  "hi @al ",
		},
		{
			name:     "down moves in a popup that is not open yet",
			steps:    []step{{typed: "@"}},
			keys:     []string{"down", "enter"},
			want:     Effect{Handled: true},
			text:     "@alice ",
			mentions: []string{"u1"},
		},
		{
			name:  "up switches chat after the trigger was deleted",
			steps: []step{{typed: "@", flush: true}, {back: true}},
			keys:  []string{"up"},
			want:  Effect{Handled: true, Action: shortcut.ActionSwitchChat, Direction: -1},
			text:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newComposer(t, group(), Options{Debounce: time.Hour})
			for _, s := range tt.steps {
				if s.typed != "" {
					c.Type(s.typed)
				}
				if s.back {
					c.Backspace()
				}
				if s.flush {
					require.True(t, c.FlushInput())
				}
			}

			var eff Effect
			for _, k := range tt.keys {
				eff = c.HandleKey(shortcut.Event{Key: k})
			}
			assert.Equal(t, tt.want, eff)
			assert.Equal(t, tt.text, c.Document().Text())

			var ids []string
			for _, m := range c.Mentions() {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.mentions, ids)
		})
	}
}

func TestAgentPopupIgnoresReplyTarget(t *testing.T) {
	conv := group()
	conv.Agents = []Candidate{helper, {ID: "u2", DisplayName: "helper2"}}
	c, _, _ := newComposer(t, conv, Options{})

	c.Type("/help")
	p := c.Popup()
	require.Equal(t, PopupAgent, p.Kind)
	assert.Equal(t, conv.Agents, p.Candidates, "agents keep roster order")
}

func TestDebouncer(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(time.Hour, nil)
	d.Trigger()
	d.Trigger()
	assert.True(t, d.Pending())
	assert.False(t, d.Take(1))
	assert.True(t, d.Take(2))
	assert.False(t, d.Take(2))
	assert.False(t, d.Flush())
}

func TestKeyRouting(t *testing.T) {
	c, _, _ := newComposer(t, Conversation{ID: "dm", Kind: Direct}, Options{})

	assert.Equal(t, Effect{Handled: true}, c.HandleKey(shortcut.Event{Key: "b", Ctrl: true}))

	eff := c.HandleKey(shortcut.Event{Key: "up"})
	assert.Equal(t, Effect{Handled: true, Action: shortcut.ActionSwitchChat, Direction: -1}, eff)

	c.Type("hi")
	assert.Equal(t, Effect{}, c.HandleKey(shortcut.Event{Key: "down"}), "switching needs an empty input")

	assert.Equal(t, Effect{Handled: true, Action: shortcut.ActionSend}, c.HandleKey(shortcut.Event{Key: "enter"}))

	c.StartComposition()
	assert.Equal(t, Effect{Handled: true}, c.HandleKey(shortcut.Event{Key: "enter"}))
	c.EndComposition()

	eff = c.HandleKey(shortcut.Event{Key: "enter", Alt: true})
	assert.Equal(t, shortcut.ActionLineBreak, eff.Action)
	assert.Equal(t, "hi\n", c.Document().Text())

	assert.Equal(t, Effect{Handled: true, Action: shortcut.ActionToggleTheme}, c.HandleKey(shortcut.Event{Key: "k", Alt: true}))
	assert.Equal(t, Effect{}, c.HandleKey(shortcut.Event{Key: "x"}))
}

func TestBreakLineReplacesSelection(t *testing.T) {
	c, h, _ := newComposer(t, Conversation{}, Options{})

	c.Type("hello world")
	run := c.Document().At(0).ID()
	h.SetSelection(document.Range{Start: document.Point{Node: run, Offset: 5}, End: document.Point{Node: run, Offset: 6}})
	c.BreakLine()
	assert.Equal(t, "hello\nworld", c.Document().Text())

	h.Err = errors.New("gone")
	c.BreakLine()
	assert.Equal(t, "hello\nworld\n", c.Document().Text())
}

func TestHasContent(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	assert.False(t, c.HasContent())
	c.Type("  \n")
	assert.False(t, c.HasContent())
	c.InsertMention(bob)
	assert.True(t, c.HasContent())
	c.Clear()
	assert.False(t, c.HasContent())
}

func TestAttachmentLimitNotifies(t *testing.T) {
	c, _, rec := newComposer(t, group(), Options{MaxAttachments: 2})
	ctx := context.Background()

	for range 2 {
		p, err := c.AttachImage(document.File{Name: "a.png", Data: []byte("x")})
		require.NoError(t, err)
		require.NoError(t, c.ResolveAttachment(p.Load(ctx)))
	}
	_, err := c.AttachImage(document.File{Name: "c.png", Data: []byte("x")})
	require.ErrorIs(t, err, media.ErrLimitReached)
	assert.Equal(t, 2, c.Media(document.AttachImage).Count())

	require.Len(t, rec.notices, 1)
	assert.Equal(t, "image/limit", rec.notices[0].Reason)
	assert.Equal(t, "at most 2 images per message", rec.notices[0].Message)
	assert.Len(t, c.Attachments(), 2)
}

func TestAttachmentForbiddenWithAgents(t *testing.T) {
	c, _, rec := newComposer(t, group(), Options{})

	require.True(t, c.InsertAgent(helper))
	_, err := c.AttachFile(document.File{Name: "a.txt", Data: []byte("x")})
	require.ErrorIs(t, err, media.ErrKindForbidden)
	require.Len(t, rec.notices, 1)
	assert.Equal(t, "file/forbidden", rec.notices[0].Reason)

	_, err = c.Attach("audio", document.File{})
	assert.Error(t, err)
}

func TestLateProbeAfterDelete(t *testing.T) {
	c, _, rec := newComposer(t, group(), Options{})

	p, err := c.AttachFile(document.File{Name: "a.txt", Data: []byte("x")})
	require.NoError(t, err)
	require.True(t, c.RemoveNode(p.Node))
	assert.False(t, c.Registry().Live(p.ID))

	err = c.ResolveAttachment(p.Load(context.Background()))
	assert.ErrorIs(t, err, media.ErrDetached)
	assert.Empty(t, rec.notices)
}

func TestProbeFailureNotifies(t *testing.T) {
	failing := func(context.Context, document.File) (document.Metadata, error) {
		return document.Metadata{}, errors.New("corrupt")
	}
	c, _, rec := newComposer(t, group(), Options{Probes: map[document.AttachmentKind]media.Probe{document.AttachVideo: failing}})

	p, err := c.AttachVideo(document.File{Name: "v.mp4", Data: []byte("x")})
	require.NoError(t, err)
	err = c.ResolveAttachment(p.Load(context.Background()))
	require.ErrorIs(t, err, media.ErrMetadata)
	require.Len(t, rec.notices, 1)
	assert.Equal(t, "video/metadata", rec.notices[0].Reason)
	assert.Empty(t, c.Attachments())
}

func TestSubmit(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("hello ")
	require.True(t, c.InsertMention(alice))
	p, err := c.AttachImage(document.File{Name: "a.png", Data: []byte("x")})
	require.NoError(t, err)
	require.NoError(t, c.ResolveAttachment(p.Load(context.Background())))
	require.True(t, c.Media(document.AttachImage).MarkUploaded(p.ID, "key1"))

	msgs := c.Submit()
	require.Len(t, msgs, 2)
	assert.Equal(t, linear.KindText, msgs[0].Kind)
	assert.Equal(t, "hello @alice ", msgs[0].Content)
	assert.Equal(t, []linear.MentionInfo{{UID: "u1", DisplayName: "@alice"}}, msgs[0].Mentions)
	assert.Equal(t, "room1", msgs[0].RoomID)
	assert.Equal(t, linear.KindImage, msgs[1].Kind)
	assert.Equal(t, "key1", msgs[1].Attachments[0].Key)

	assert.True(t, c.Document().IsEmpty())
	assert.Zero(t, c.Registry().Len())
	assert.Nil(t, c.Submit(), "nothing left to send")
}

func TestSubmitAIRoom(t *testing.T) {
	conv := Conversation{ID: "ai1", Kind: AI, TargetID: "bot"}
	c, _, _ := newComposer(t, conv, Options{})

	c.Type("summarize")
	msg, ok := c.Build()
	require.True(t, ok)
	assert.Equal(t, linear.KindAIChat, msg.Kind)
	assert.Equal(t, []string{"bot"}, msg.AgentIDs)

	_, err := c.AttachImage(document.File{Name: "a.png", Data: []byte("x")})
	assert.ErrorIs(t, err, media.ErrKindForbidden)
}

func TestPasteHTMLKeepsTags(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	require.NoError(t, c.PasteHTML(`hey <span data-type="at-user" data-uid="u1">@alice</span><br>bye`))
	assert.Equal(t, "hey @alice\nbye", c.Document().Text())
	require.Len(t, c.Mentions(), 1)

	require.NoError(t, c.PasteHTML(`<span data-type="at-user" data-uid="u1">@alice</span>`))
	assert.Equal(t, 1, c.Document().Count(document.Entities(document.EntityUser)), "second copy degrades to text")

	require.NoError(t, c.PasteText("a<b>\r\n"))
	assert.Equal(t, "hey @alice\nbye@aliceab\n", c.Document().Text())
}

func TestEditing(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("ab")
	c.InsertMention(bob)
	assert.Equal(t, "ab@bob ", c.Document().Text())

	assert.True(t, c.Backspace())
	assert.True(t, c.Backspace(), "removes the entity whole")
	assert.Equal(t, "ab", c.Document().Text())
	assert.Empty(t, c.Mentions())

	c.CaretToStart()
	assert.True(t, c.DeleteForward())
	assert.Equal(t, "b", c.Document().Text())
	c.MoveCaret(1)
	c.Type("c")
	assert.Equal(t, "bc", c.Document().Text())
	c.CaretToEnd()
	assert.False(t, c.DeleteForward())
}

func TestSwitchConversationClears(t *testing.T) {
	c, _, _ := newComposer(t, group(), Options{})

	c.Type("draft @")
	_, err := c.AttachImage(document.File{Name: "a.png", Data: []byte("x")})
	require.NoError(t, err)

	c.SwitchConversation(Conversation{ID: "dm", Kind: Direct})
	assert.True(t, c.Document().IsEmpty())
	assert.False(t, c.Popup().Open())
	assert.Zero(t, c.Registry().Len())
	assert.Equal(t, "dm", c.Conversation().ID)
}
