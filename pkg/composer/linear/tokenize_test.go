// ABOUTME: Tests for tokenization round-trip, precedence, occurrence rules and overlap rejection

package linear

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reconstruct(content string, tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(content[t.Start:t.End])
	}
	return b.String()
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeRoundTrip(t *testing.T) {
	mentions := []MentionInfo{{UID: "1", DisplayName: "@alice"}, {UID: "2", DisplayName: "@bob"}, {UID: "3", DisplayName: ""}}
	urls := map[string]URLInfo{"x.com": {}, "http://x.com/a": {Title: "X"}, "": {}}
	contents := []string{
		"",
		"plain",
		"@alice",
		"hi @alice and @bob at http://x.com/a, x.com",
		"x.comx.comx.com",
		"@bob@bob@alice",
		"中文 @alice 😀 x.com",
	}
	for _, c := range contents {
		tokens := Tokenize(c, mentions, urls)
		assert.Equal(t, c, reconstruct(c, tokens), "content %q", c)
		prev := 0
		for _, tok := range tokens {
			assert.Equal(t, prev, tok.Start, "gap or overlap in %q", c)
			assert.Less(t, tok.Start, tok.End, "empty token in %q", c)
			assert.Equal(t, c[tok.Start:tok.End], tok.Text)
			prev = tok.End
		}
	}
}

func TestMentionBeforeURLPrecedence(t *testing.T) {
	content := "contact @alice http://example.com"
	tokens := Tokenize(content,
		[]MentionInfo{{UID: "u1", DisplayName: "@alice"}},
		map[string]URLInfo{"http://example.com": {Title: "Example"}})

	require.Equal(t, []TokenKind{TokenText, TokenMention, TokenText, TokenURL}, kinds(tokens))
	assert.Equal(t, "@alice", tokens[1].Text)
	assert.Equal(t, "u1", tokens[1].Mention.UID)
	assert.Equal(t, "http://example.com", tokens[3].Text)
	assert.Equal(t, "Example (http://example.com)", tokens[3].Link.AltTitle)
}

func TestMentionSingleOccurrence(t *testing.T) {
	tokens := Tokenize("@bob hi @bob", []MentionInfo{{UID: "b", DisplayName: "@bob"}}, nil)
	require.Equal(t, []TokenKind{TokenMention, TokenText}, kinds(tokens))
	assert.Equal(t, " hi @bob", tokens[1].Text)
}

func TestMentionDedupedByUID(t *testing.T) {
	tokens := Tokenize("@bob and @robert", []MentionInfo{
		{UID: "b", DisplayName: "@bob"},
		{UID: "b", DisplayName: "@robert"},
	}, nil)
	assert.Equal(t, []TokenKind{TokenMention, TokenText}, kinds(tokens))
}

func TestURLMultiOccurrence(t *testing.T) {
	tokens := Tokenize("see http://x.com and http://x.com again", nil, map[string]URLInfo{"http://x.com": {}})
	require.Equal(t, []TokenKind{TokenText, TokenURL, TokenText, TokenURL, TokenText}, kinds(tokens))
	assert.Equal(t, 4, tokens[1].Start)
	assert.Equal(t, 21, tokens[3].Start)
}

func TestOverlapRejection(t *testing.T) {
	// The mention text sits inside the URL and starts later, so the sweep
	// keeps whichever starts first.
	content := "go to http://x.com/@alice now"
	tokens := Tokenize(content,
		[]MentionInfo{{UID: "a", DisplayName: "@alice"}},
		map[string]URLInfo{"http://x.com/@alice": {}})
	require.Equal(t, []TokenKind{TokenText, TokenURL, TokenText}, kinds(tokens))

	// Same start: the mention wins and the URL is dropped, not truncated.
	content = "@alice.example.com"
	tokens = Tokenize(content,
		[]MentionInfo{{UID: "a", DisplayName: "@alice"}},
		map[string]URLInfo{"@alice.example.com": {}})
	require.Equal(t, []TokenKind{TokenMention, TokenText}, kinds(tokens))
	assert.Equal(t, ".example.com", tokens[1].Text)
}

func TestOverlapSameStartLongerURLWins(t *testing.T) {
	tokens := Tokenize("x.com/path", nil, map[string]URLInfo{"x.com": {}, "x.com/path": {}})
	require.Len(t, tokens, 1)
	assert.Equal(t, "x.com/path", tokens[0].Link.URL)
}

func TestHref(t *testing.T) {
	assert.Equal(t, "http://x.com", Href("x.com"))
	assert.Equal(t, "https://x.com", Href("https://x.com"))
	assert.Equal(t, "/local", Href("/local"))
}

func TestShortenTitle(t *testing.T) {
	assert.Equal(t, UnknownSite, ShortenTitle(""))
	assert.Equal(t, "Short title", ShortenTitle("Short title"))
	assert.Equal(t, "abcdefgh...wxyz", ShortenTitle("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "unknown site (x.com)", AltTitle("", "x.com"))
}
