// ABOUTME: Tests for document linearization, agent trigger resolution, message kinds and wire encoding

package linear

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/sanitize"
	"github.com/mauromedda/msgcomposer/pkg/composer/tag"
)

var fixed = func() time.Time { return time.UnixMilli(1700000000123) }

func buildDoc(t *testing.T) *document.Document {
	t.Helper()
	d := document.New()
	p, err := d.InsertText(d.End(), "hi ")
	require.NoError(t, err)
	p, err = d.InsertNode(p, sanitize.NewEntityNode(document.EntityUser, "u1", "alice"))
	require.NoError(t, err)
	p, err = d.InsertText(p, " look ")
	require.NoError(t, err)
	_, err = d.InsertNode(p, document.NewAttachment(&document.Attachment{
		ID: "blob:1", Kind: document.AttachImage, Ready: true, Status: document.StatusUploaded, Key: "k1",
		Meta: document.Metadata{Width: 4, Height: 3},
	}))
	require.NoError(t, err)
	_, err = d.InsertNode(d.End(), sanitize.NewEntityNode(document.EntityUser, "u1", "alice"))
	require.NoError(t, err)
	return d
}

func TestLinearize(t *testing.T) {
	l := Linearize(buildDoc(t), nil)
	assert.Equal(t, "hi @alice look @alice", l.Content)
	assert.Equal(t, []tag.Mention{{Kind: document.EntityUser, ID: "u1", DisplayName: "alice"}}, l.Users)
	assert.Empty(t, l.Agents)
	require.Len(t, l.Attachments, 1)
	assert.Equal(t, "k1", l.Attachments[0].Key)
	assert.Equal(t, Linear{}, Linearize(nil, nil))
}

func TestResolveAgentReply(t *testing.T) {
	roster := []Agent{{ID: "a1", DisplayName: "helper"}, {ID: "a2", DisplayName: "coder"}}

	r := ResolveAgentReply("/helper fix /usr/bin please /coder", roster, nil)
	assert.Equal(t, []string{"a1", "a2"}, r.AgentIDs)
	assert.Equal(t, "fix /usr/bin please", r.Text)

	r = ResolveAgentReply("/helper/coder hi", roster, []Agent{{ID: "a3", DisplayName: "other"}, {ID: "a1", DisplayName: "helper"}})
	assert.Equal(t, []string{"a1", "a2", "a3"}, r.AgentIDs)
	assert.Equal(t, "hi", r.Text)

	r = ResolveAgentReply("nothing here", roster, nil)
	assert.Empty(t, r.AgentIDs)
	assert.Equal(t, "nothing here", r.Text)
}

func TestBuildTextGroup(t *testing.T) {
	msg, ok := Build(Linearize(buildDoc(t), nil), Context{RoomID: "r1", Group: true, Now: fixed})
	require.True(t, ok)
	assert.Equal(t, KindText, msg.Kind)
	assert.Equal(t, []MentionInfo{{UID: "u1", DisplayName: "@alice"}}, msg.Mentions)
	require.Len(t, msg.Attachments, 1)
	assert.True(t, msg.Attachments[0].Uploaded)
	assert.Regexp(t, regexp.MustCompile(`^temp_1700000000123_[0-9a-f]{8}$`), msg.ClientID)

	direct, _ := Build(Linearize(buildDoc(t), nil), Context{Now: fixed})
	assert.Nil(t, direct.Mentions)
}

func TestBuildAgentKinds(t *testing.T) {
	d := document.New()
	p, _ := d.InsertNode(d.End(), sanitize.NewEntityNode(document.EntityAgent, "a1", "helper"))
	_, _ = d.InsertText(p, " summarize")

	msg, ok := Build(Linearize(d, nil), Context{Group: true, Now: fixed})
	require.True(t, ok)
	assert.Equal(t, KindAIChat, msg.Kind)
	assert.Equal(t, "summarize", msg.Content)
	assert.Equal(t, []string{"a1"}, msg.AgentIDs)

	plain := document.New()
	_, _ = plain.InsertText(plain.End(), "hello bot")
	msg, ok = Build(Linearize(plain, nil), Context{AIOnly: true, TargetID: "bot9", Now: fixed})
	require.True(t, ok)
	assert.Equal(t, KindAIChat, msg.Kind)
	assert.Equal(t, []string{"bot9"}, msg.AgentIDs)
}

func TestBuildNothingToSend(t *testing.T) {
	d := document.New()
	_, _ = d.InsertText(d.End(), "   \n")
	_, ok := Build(Linearize(d, nil), Context{})
	assert.False(t, ok)

	// Failed and unresolved attachments are not sendable.
	_, _ = d.InsertNode(d.End(), document.NewAttachment(&document.Attachment{Kind: document.AttachFile, Status: document.StatusFailed, Ready: true}))
	_, _ = d.InsertNode(d.End(), document.NewAttachment(&document.Attachment{Kind: document.AttachFile}))
	_, ok = Build(Linearize(d, nil), Context{})
	assert.False(t, ok)
}

func TestMessagesSplitsMedia(t *testing.T) {
	msgs := Messages(Linearize(buildDoc(t), nil), Context{RoomID: "r", Now: fixed})
	require.Len(t, msgs, 2)
	assert.Equal(t, KindText, msgs[0].Kind)
	assert.Empty(t, msgs[0].Attachments)
	assert.Equal(t, KindImage, msgs[1].Kind)
	assert.Empty(t, msgs[1].Content)
	assert.NotEqual(t, msgs[0].ClientID, msgs[1].ClientID)
}

func TestOutboundMessageJSON(t *testing.T) {
	msg := OutboundMessage{
		ClientID: "temp_1_abcdef12",
		Kind:     KindText,
		Content:  `say "hi"`,
		Mentions: []MentionInfo{{UID: "u1", DisplayName: "@alice"}},
		Attachments: []AttachmentRef{{
			ID: "blob:1", Kind: document.AttachVideo, Key: "k", Size: 10, Width: 2, Height: 1, Duration: 1500 * time.Millisecond,
		}},
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "text", decoded["msgType"])
	assert.Equal(t, `say "hi"`, decoded["content"])
	body := decoded["body"].(map[string]any)
	assert.Len(t, body["mentionList"], 1)
	file := body["files"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(1500), file["duration"])
}

func TestRenderInputJSON(t *testing.T) {
	raw := `{"content":"hi @a x.com","body":{"mentionList":[{"uid":"1","displayName":"@a","extra":[1,2]}],
"urlContentMap":{"x.com":{"title":"X","description":null}}},"ignored":{"deep":true}}`
	var in RenderInput
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	assert.Equal(t, "hi @a x.com", in.Content)
	assert.Equal(t, []MentionInfo{{UID: "1", DisplayName: "@a"}}, in.MentionList)
	assert.Equal(t, "X", in.URLs["x.com"].Title)

	assert.Error(t, json.Unmarshal([]byte(`{"content":`), &in))
}

func TestMarshalTokens(t *testing.T) {
	data, err := MarshalTokens(Tokenize("hi @a", []MentionInfo{{UID: "1", DisplayName: "@a"}}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"text","content":"hi ","startIndex":0,"endIndex":3},
{"type":"mention","content":"@a","startIndex":3,"endIndex":5,"data":{"uid":"1","displayName":"@a"}}]`, string(data))
}
