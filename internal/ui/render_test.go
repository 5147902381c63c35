// ABOUTME: Tests for document, chip and popup rendering
// ABOUTME: Styles render as plain text without a color profile, so output is compared literally

package ui

import (
	"strings"
	"testing"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/form"
)

func buildDoc(t *testing.T, parts ...*document.Node) *document.Document {
	t.Helper()
	d := document.New()
	p := d.End()
	for _, n := range parts {
		var err error
		if n.Kind() == document.KindText {
			p, err = d.InsertText(p, n.Text())
		} else {
			p, err = d.InsertNode(p, n)
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func TestRenderDocument(t *testing.T) {
	t.Parallel()
	s := Styles(true)

	mention := document.NewEntity(document.Entity{
		Identity:    document.Identity{Kind: document.EntityUser, ID: "u1"},
		DisplayName: "alice",
		DisplayText: "@alice",
	})
	d := buildDoc(t, document.NewText("hi "), mention, document.NewText(" ok"))

	tests := []struct {
		name    string
		caret   document.Point
		focused bool
		want    string
	}{
		{"caret at end", d.End(), true, "hi @alice ok "},
		{"caret at start", d.Start(), true, " hi @alice ok"},
		{"caret in text", document.Point{Node: d.At(0).ID(), Offset: 1}, true, "hi @alice ok"},
		{"unfocused", d.End(), false, "hi @alice ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RenderDocument(d, tt.caret, tt.focused, s, "type here"); got != tt.want {
				t.Errorf("RenderDocument = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestRenderDocumentPlaceholder(t *testing.T) {
	t.Parallel()
	s := Styles(true)
	d := document.New()

	if got := RenderDocument(d, d.End(), false, s, "type here"); got != "type here" {
		t.Errorf("unfocused empty = %q; want placeholder", got)
	}
	if got := RenderDocument(d, d.End(), true, s, "type here"); got != " " {
		t.Errorf("focused empty = %q; want caret cell", got)
	}
}

func TestTextWithCaret(t *testing.T) {
	t.Parallel()
	s := Styles(true)

	tests := []struct {
		text   string
		offset int
		want   string
	}{
		{"abc", 1, "abc"},
		{"abc", 3, "abc "},
		{"a\nb", 1, "a \nb"},
		{"héllo", 9, "héllo "},
	}
	for _, tt := range tests {
		if got := textWithCaret(tt.text, tt.offset, s); got != tt.want {
			t.Errorf("textWithCaret(%q, %d) = %q; want %q", tt.text, tt.offset, got, tt.want)
		}
	}
}

func TestChipLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		att  document.Attachment
		want string
	}{
		{"pending", document.Attachment{Kind: document.AttachImage, DisplayName: "cat.png"}, "[image cat.png …]"},
		{"failed", document.Attachment{Kind: document.AttachFile, DisplayName: "a.txt", Status: document.StatusFailed}, "[file a.txt failed]"},
		{"uploaded", document.Attachment{Kind: document.AttachFile, DisplayName: "a.txt", Ready: true, Status: document.StatusUploaded}, "[file a.txt ✓]"},
		{"dimensions", document.Attachment{Kind: document.AttachImage, DisplayName: "cat.png", Ready: true, Meta: document.Metadata{Width: 4, Height: 3}}, "[image cat.png 4x3]"},
		{"progress", document.Attachment{Kind: document.AttachVideo, DisplayName: "v.mp4", Ready: true, Percent: 40}, "[video v.mp4 40%]"},
		{"ready", document.Attachment{Kind: document.AttachFile, DisplayName: "a.txt", Ready: true}, "[file a.txt]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ChipLabel(&tt.att); got != tt.want {
				t.Errorf("ChipLabel = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestChipLabelTruncatesLongNames(t *testing.T) {
	t.Parallel()

	a := &document.Attachment{Kind: document.AttachFile, DisplayName: strings.Repeat("x", 60), Ready: true}
	got := ChipLabel(a)
	if !strings.Contains(got, "…") || len(got) > 60 {
		t.Errorf("ChipLabel = %q; want a truncated name", got)
	}
}

func TestRenderPopup(t *testing.T) {
	t.Parallel()
	s := Styles(true)

	if got := RenderPopup(form.PopupState{}, 40, s); got != "" {
		t.Errorf("closed popup = %q; want empty", got)
	}

	empty := RenderPopup(form.PopupState{Kind: form.PopupMention, Query: "zz"}, 40, s)
	if !strings.Contains(empty, "no matches") {
		t.Errorf("empty popup misses hint:\n%s", empty)
	}

	agents := RenderPopup(form.PopupState{
		Kind:       form.PopupAgent,
		Candidates: []form.Candidate{{ID: "a1", DisplayName: "helper"}},
	}, 40, s)
	if !strings.Contains(agents, "Ask an agent") || !strings.Contains(agents, "/helper") {
		t.Errorf("agent popup:\n%s", agents)
	}
}

func TestRenderPopupScrollsToSelection(t *testing.T) {
	t.Parallel()
	s := Styles(true)

	var cands []form.Candidate
	for _, n := range []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9"} {
		cands = append(cands, form.Candidate{ID: n, DisplayName: n})
	}

	top := RenderPopup(form.PopupState{Kind: form.PopupMention, Candidates: cands}, 40, s)
	if !strings.Contains(top, "@u5") || strings.Contains(top, "@u6") || !strings.Contains(top, "+4 more") {
		t.Errorf("top window:\n%s", top)
	}

	bottom := RenderPopup(form.PopupState{Kind: form.PopupMention, Candidates: cands, Selected: 9}, 40, s)
	if strings.Contains(bottom, "@u3") || !strings.Contains(bottom, "@u9") || strings.Contains(bottom, "more") {
		t.Errorf("bottom window:\n%s", bottom)
	}
}
