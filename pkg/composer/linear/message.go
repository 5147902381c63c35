// ABOUTME: OutboundMessage assembly from a linearized document and the conversation context
// ABOUTME: Resolves agent triggers, picks the message kind and stamps a temporary client id

package linear

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

// Kind is the wire message type.
type Kind string

const (
	KindText   Kind = "text"
	KindAIChat Kind = "ai_chat"
	KindImage  Kind = "image"
	KindVideo  Kind = "video"
	KindFile   Kind = "file"
)

// AttachmentRef is an attachment as the submit collaborator sees it.
type AttachmentRef struct {
	ID          string
	Kind        document.AttachmentKind
	Key         string
	Name        string
	MIME        string
	Size        int64
	Width       int
	Height      int
	Duration    time.Duration
	ThumbWidth  int
	ThumbHeight int
	ThumbSize   int
	// Uploaded is false while Key is not yet known.
	Uploaded bool
}

// OutboundMessage is the submit-ready payload.
type OutboundMessage struct {
	ClientID    string
	RoomID      string
	Kind        Kind
	Content     string
	Mentions    []MentionInfo
	AgentIDs    []string
	Attachments []AttachmentRef
	ReplyTo     string
}

// Context is what the conversation contributes to message assembly.
type Context struct {
	RoomID string
	// Group rooms carry a mention list.
	Group bool
	// AIOnly rooms always address TargetID.
	AIOnly   bool
	TargetID string
	Agents   []Agent
	ReplyTo  string
	Now      func() time.Time
}

// NewClientID returns temp_<unix-ms>_<8 hex>.
func NewClientID(now time.Time) string {
	return fmt.Sprintf("temp_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Ref converts a descriptor into its wire form.
func Ref(a *document.Attachment) AttachmentRef {
	return AttachmentRef{
		ID:          a.ID,
		Kind:        a.Kind,
		Key:         a.Key,
		Name:        a.DisplayName,
		MIME:        a.File.MIME,
		Size:        a.File.Size,
		Width:       a.Meta.Width,
		Height:      a.Meta.Height,
		Duration:    a.Meta.Duration,
		ThumbWidth:  a.Meta.ThumbWidth,
		ThumbHeight: a.Meta.ThumbHeight,
		ThumbSize:   len(a.Meta.Thumbnail),
		Uploaded:    a.Status == document.StatusUploaded && a.Key != "",
	}
}

// usable reports whether an attachment may be submitted.
func usable(a *document.Attachment) bool {
	return a != nil && a.Ready && a.Status != document.StatusFailed
}

// Build assembles one message carrying text and every usable attachment.
// It reports false when there is nothing to send.
func Build(l Linear, c Context) (OutboundMessage, bool) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	msg := OutboundMessage{ClientID: NewClientID(now()), RoomID: c.RoomID, Kind: KindText, ReplyTo: c.ReplyTo}
	hasText := strings.TrimSpace(l.Content) != ""
	if hasText {
		buildText(&msg, l, c)
	}
	for _, a := range l.Attachments {
		if usable(a) {
			msg.Attachments = append(msg.Attachments, Ref(a))
		}
	}
	if !hasText {
		if len(msg.Attachments) == 0 {
			return OutboundMessage{}, false
		}
		msg.Kind = Kind(msg.Attachments[0].Kind)
	}
	if hasText && msg.Content == "" && len(msg.Attachments) == 0 {
		return OutboundMessage{}, false
	}
	return msg, true
}

// Messages splits Build's output into one text message and one message per
// attachment, the shape a media-per-message transport expects.
func Messages(l Linear, c Context) []OutboundMessage {
	combined, ok := Build(l, c)
	if !ok {
		return nil
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	var out []OutboundMessage
	if combined.Content != "" {
		text := combined
		text.Attachments = nil
		if text.Kind != KindAIChat {
			text.Kind = KindText
		}
		out = append(out, text)
	}
	for _, a := range combined.Attachments {
		out = append(out, OutboundMessage{
			ClientID:    NewClientID(now()),
			RoomID:      c.RoomID,
			Kind:        Kind(a.Kind),
			Attachments: []AttachmentRef{a},
			ReplyTo:     c.ReplyTo,
		})
	}
	return out
}

func buildText(msg *OutboundMessage, l Linear, c Context) {
	msg.Content = l.Content
	if c.Group {
		msg.Mentions = MentionList(l.Users)
	}

	selected := make([]Agent, 0, len(l.Agents))
	for _, a := range l.Agents {
		selected = append(selected, Agent{ID: a.ID, DisplayName: a.DisplayName})
	}
	reply := ResolveAgentReply(l.Content, c.Agents, selected)
	switch {
	case len(reply.AgentIDs) > 0 && reply.Text != "":
		msg.Kind = KindAIChat
		msg.Content = reply.Text
		msg.AgentIDs = reply.AgentIDs
		msg.Mentions = nil
	case c.AIOnly:
		msg.Kind = KindAIChat
		msg.Content = reply.Text
		msg.AgentIDs = []string{c.TargetID}
		msg.Mentions = nil
	}
}
