// ABOUTME: Compose-direction linearizer: document children to content, mentions and attachments
// ABOUTME: Entities contribute display text; attachments go to a side collection

package linear

import (
	"strings"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/tag"
)

// Extractor re-derives mention lists from the document.
type Extractor interface {
	Mentions(k document.EntityKind) []tag.Mention
}

// Linear is the flat form of a document at submit time.
type Linear struct {
	Content     string
	Users       []tag.Mention
	Agents      []tag.Mention
	Attachments []*document.Attachment
}

// Linearize walks the direct children of doc. When x is nil the mention
// lists are derived by scanning doc directly.
func Linearize(doc *document.Document, x Extractor) Linear {
	var out Linear
	if doc == nil {
		return out
	}
	var b strings.Builder
	for _, n := range doc.Nodes() {
		switch n.Kind() {
		case document.KindText, document.KindEntity:
			b.WriteString(n.LogicalText())
		case document.KindAttachment:
			out.Attachments = append(out.Attachments, n.Attachment())
		}
	}
	out.Content = b.String()

	if x == nil {
		x = scanner{doc}
	}
	out.Users = x.Mentions(document.EntityUser)
	out.Agents = x.Mentions(document.EntityAgent)
	return out
}

type scanner struct{ doc *document.Document }

func (s scanner) Mentions(k document.EntityKind) []tag.Mention {
	seen := map[string]bool{}
	var out []tag.Mention
	for _, n := range s.doc.Select(document.Entities(k)) {
		m, ok := tag.ParseMention(n)
		if !ok || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// MentionList converts user mentions into the message's mention table,
// using the literal display text that appears in the content.
func MentionList(users []tag.Mention) []MentionInfo {
	if len(users) == 0 {
		return nil
	}
	out := make([]MentionInfo, 0, len(users))
	for _, u := range users {
		out = append(out, MentionInfo{UID: u.ID, DisplayName: "@" + u.DisplayName})
	}
	return out
}
