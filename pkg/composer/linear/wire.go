// ABOUTME: Hand-written easyjson codecs for the outbound message and the render input
// ABOUTME: Field names follow the chat transport: clientId, msgType, body.mentionList, urlContentMap

package linear

import (
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
)

// MarshalJSON implements json.Marshaler.
func (m OutboundMessage) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	m.MarshalEasyJSON(&w)
	return w.BuildBytes()
}

// MarshalEasyJSON writes the message.
func (m OutboundMessage) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"clientId":`)
	w.String(m.ClientID)
	if m.RoomID != "" {
		w.RawString(`,"roomId":`)
		w.String(m.RoomID)
	}
	w.RawString(`,"msgType":`)
	w.String(string(m.Kind))
	w.RawString(`,"content":`)
	w.String(m.Content)
	if m.ReplyTo != "" {
		w.RawString(`,"replyMsgId":`)
		w.String(m.ReplyTo)
	}
	w.RawString(`,"body":{`)
	first := true
	field := func(name string) {
		if !first {
			w.RawByte(',')
		}
		first = false
		w.String(name)
		w.RawByte(':')
	}
	if len(m.Mentions) > 0 {
		field("mentionList")
		w.RawByte('[')
		for i, mn := range m.Mentions {
			if i > 0 {
				w.RawByte(',')
			}
			mn.MarshalEasyJSON(w)
		}
		w.RawByte(']')
	}
	if len(m.AgentIDs) > 0 {
		field("userIds")
		w.RawByte('[')
		for i, id := range m.AgentIDs {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(id)
		}
		w.RawByte(']')
		field("businessCode")
		w.String(string(KindText))
	}
	if len(m.Attachments) > 0 {
		field("files")
		w.RawByte('[')
		for i, a := range m.Attachments {
			if i > 0 {
				w.RawByte(',')
			}
			a.MarshalEasyJSON(w)
		}
		w.RawByte(']')
	}
	w.RawString("}}")
}

// MarshalEasyJSON writes a mention entry.
func (m MentionInfo) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"uid":`)
	w.String(m.UID)
	w.RawString(`,"displayName":`)
	w.String(m.DisplayName)
	w.RawByte('}')
}

// UnmarshalEasyJSON reads a mention entry.
func (m *MentionInfo) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "uid":
			m.UID = in.String()
		case "displayName":
			m.DisplayName = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

// MarshalEasyJSON writes an attachment reference.
func (a AttachmentRef) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"id":`)
	w.String(a.ID)
	w.RawString(`,"type":`)
	w.String(string(a.Kind))
	w.RawString(`,"url":`)
	w.String(a.Key)
	w.RawString(`,"name":`)
	w.String(a.Name)
	if a.MIME != "" {
		w.RawString(`,"mime":`)
		w.String(a.MIME)
	}
	w.RawString(`,"size":`)
	w.Int64(a.Size)
	if a.Width > 0 || a.Height > 0 {
		w.RawString(`,"width":`)
		w.Int(a.Width)
		w.RawString(`,"height":`)
		w.Int(a.Height)
	}
	if a.Kind == document.AttachVideo {
		w.RawString(`,"duration":`)
		w.Int64(a.Duration.Milliseconds())
		w.RawString(`,"thumbWidth":`)
		w.Int(a.ThumbWidth)
		w.RawString(`,"thumbHeight":`)
		w.Int(a.ThumbHeight)
		w.RawString(`,"thumbSize":`)
		w.Int(a.ThumbSize)
	}
	w.RawString(`,"uploaded":`)
	w.Bool(a.Uploaded)
	w.RawByte('}')
}

// UnmarshalEasyJSON reads URL preview metadata.
func (u *URLInfo) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "title":
			u.Title = in.String()
		case "description":
			u.Description = in.String()
		case "image":
			u.Image = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

// RenderInput is a received message as the tokenizer consumes it.
type RenderInput struct {
	Content     string
	MentionList []MentionInfo
	URLs        map[string]URLInfo
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RenderInput) UnmarshalJSON(data []byte) error {
	in := jlexer.Lexer{Data: data}
	r.UnmarshalEasyJSON(&in)
	return in.Error()
}

// UnmarshalEasyJSON reads {content, mentionList, urlContentMap}, accepting
// the last two either at the top level or inside body.
func (r *RenderInput) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "content":
			r.Content = in.String()
		case "body":
			r.UnmarshalEasyJSON(in)
		case "mentionList":
			in.Delim('[')
			for !in.IsDelim(']') {
				var m MentionInfo
				m.UnmarshalEasyJSON(in)
				r.MentionList = append(r.MentionList, m)
				in.WantComma()
			}
			in.Delim(']')
		case "urlContentMap":
			if r.URLs == nil {
				r.URLs = make(map[string]URLInfo)
			}
			in.Delim('{')
			for !in.IsDelim('}') {
				k := in.String()
				in.WantColon()
				var u URLInfo
				u.UnmarshalEasyJSON(in)
				r.URLs[k] = u
				in.WantComma()
			}
			in.Delim('}')
		default:
			in.SkipRecursive()
		}
	})
}

// MarshalJSON implements json.Marshaler.
func (t Token) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	t.MarshalEasyJSON(&w)
	return w.BuildBytes()
}

// MarshalEasyJSON writes a token.
func (t Token) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"type":`)
	w.String(string(t.Kind))
	w.RawString(`,"content":`)
	w.String(t.Text)
	w.RawString(`,"startIndex":`)
	w.Int(t.Start)
	w.RawString(`,"endIndex":`)
	w.Int(t.End)
	switch {
	case t.Mention != nil:
		w.RawString(`,"data":`)
		t.Mention.MarshalEasyJSON(w)
	case t.Link != nil:
		w.RawString(`,"data":{"url":`)
		w.String(t.Link.URL)
		w.RawString(`,"href":`)
		w.String(t.Link.Href)
		w.RawString(`,"title":`)
		w.String(t.Link.Title)
		w.RawString(`,"altTitle":`)
		w.String(t.Link.AltTitle)
		w.RawByte('}')
	}
	w.RawByte('}')
}

// MarshalTokens encodes a token stream as a JSON array.
func MarshalTokens(tokens []Token) ([]byte, error) {
	w := jwriter.Writer{}
	w.RawByte('[')
	for i, t := range tokens {
		if i > 0 {
			w.RawByte(',')
		}
		t.MarshalEasyJSON(&w)
	}
	w.RawByte(']')
	return w.BuildBytes()
}

// decodeObject iterates the fields of a JSON object, handing each key to
// field with the lexer positioned on the value. Null values are skipped.
func decodeObject(in *jlexer.Lexer, field func(key string)) {
	top := in.IsStart()
	if in.IsNull() {
		in.Skip()
		if top {
			in.Consumed()
		}
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		field(key)
		in.WantComma()
	}
	in.Delim('}')
	if top {
		in.Consumed()
	}
}
