// ABOUTME: Render-direction tokenizer: flat text plus mention and URL side tables to segments
// ABOUTME: Mentions substitute once, URLs at every occurrence; overlaps resolve by a sorted sweep

// Package linear converts between the editable document, the outbound
// message and the display token stream.
package linear

import (
	"slices"
	"strings"
)

// TokenKind discriminates token segments.
type TokenKind string

const (
	TokenText    TokenKind = "text"
	TokenMention TokenKind = "mention"
	TokenURL     TokenKind = "url"
)

// MentionInfo is one entry of a message's mention list. DisplayName is the
// literal searched for in the content, "@alice" for example.
type MentionInfo struct {
	UID         string
	DisplayName string
}

// URLInfo is the preview metadata attached to a URL key.
type URLInfo struct {
	Title       string
	Description string
	Image       string
}

// LinkData is the resolved payload of a URL token.
type LinkData struct {
	URLInfo
	URL      string
	Href     string
	AltTitle string
}

// Token is one contiguous segment. Start and End are byte offsets into the
// tokenized content.
type Token struct {
	Kind    TokenKind
	Text    string
	Start   int
	End     int
	Mention *MentionInfo
	Link    *LinkData
}

const (
	priorityMention = 1
	priorityURL     = 2
)

type span struct {
	start, end int
	priority   int
	mention    *MentionInfo
	link       *LinkData
}

// Tokenize splits content into text, mention and url tokens. The tokens are
// ordered, contiguous and cover content exactly.
func Tokenize(content string, mentions []MentionInfo, urls map[string]URLInfo) []Token {
	if content == "" {
		return nil
	}

	var spans []span
	used := make(map[string]bool, len(mentions))
	for i := range mentions {
		m := mentions[i]
		if used[m.UID] || m.DisplayName == "" {
			continue
		}
		idx := strings.Index(content, m.DisplayName)
		if idx < 0 {
			continue
		}
		used[m.UID] = true
		spans = append(spans, span{start: idx, end: idx + len(m.DisplayName), priority: priorityMention, mention: &m})
	}

	keys := make([]string, 0, len(urls))
	for k := range urls {
		if k != "" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, raw := range keys {
		info := urls[raw]
		for from := 0; ; {
			idx := strings.Index(content[from:], raw)
			if idx < 0 {
				break
			}
			idx += from
			spans = append(spans, span{
				start:    idx,
				end:      idx + len(raw),
				priority: priorityURL,
				link:     &LinkData{URLInfo: info, URL: raw, Href: Href(raw), AltTitle: AltTitle(info.Title, raw)},
			})
			from = idx + len(raw)
		}
	}

	slices.SortStableFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		if a.priority != b.priority {
			return a.priority - b.priority
		}
		return (b.end - b.start) - (a.end - a.start)
	})

	accepted := spans[:0:0]
	for _, s := range spans {
		overlaps := slices.ContainsFunc(accepted, func(a span) bool {
			return s.start < a.end && a.start < s.end
		})
		if !overlaps {
			accepted = append(accepted, s)
		}
	}
	slices.SortStableFunc(accepted, func(a, b span) int { return a.start - b.start })

	tokens := make([]Token, 0, 2*len(accepted)+1)
	cur := 0
	for _, s := range accepted {
		if cur < s.start {
			tokens = append(tokens, Token{Kind: TokenText, Text: content[cur:s.start], Start: cur, End: s.start})
		}
		t := Token{Text: content[s.start:s.end], Start: s.start, End: s.end}
		if s.mention != nil {
			t.Kind, t.Mention = TokenMention, s.mention
		} else {
			t.Kind, t.Link = TokenURL, s.link
		}
		tokens = append(tokens, t)
		cur = s.end
	}
	if cur < len(content) {
		tokens = append(tokens, Token{Kind: TokenText, Text: content[cur:], Start: cur, End: len(content)})
	}
	return tokens
}
