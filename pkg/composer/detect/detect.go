// ABOUTME: InputDetector: classifies the trigger currently being typed before the caret
// ABOUTME: Both patterns anchor to end-of-text so only an active trigger is ever reported

// Package detect works out whether the user is typing an @mention or a
// /agent query.
package detect

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/sanitize"
)

// Kind of the active trigger.
type Kind string

const (
	None    Kind = "none"
	Mention Kind = "mention"
	Agent   Kind = "agent"
)

// DefaultMaxQuery is the longest partial query that still counts as a trigger.
const DefaultMaxQuery = 20

// Boundary stands in for atomic nodes in the text before the caret so a
// trigger never bridges across an entity or attachment.
const Boundary = "\uFFFC"

// Result is recomputed on every input event and never stored.
type Result struct {
	Kind  Kind
	Query string
	// TriggerOffset is the rune offset of the trigger character in the text
	// passed to Classify, or -1 when Kind is None.
	TriggerOffset int
}

// Detector holds the compiled trigger patterns.
type Detector struct {
	mention *regexp.Regexp
	agent   *regexp.Regexp
}

// New compiles the patterns for queries of up to maxQuery characters.
func New(maxQuery int) *Detector {
	if maxQuery <= 0 {
		maxQuery = DefaultMaxQuery
	}
	class := `[\w\x{4E00}-\x{9FA5}]`
	return &Detector{
		mention: regexp.MustCompile(fmt.Sprintf(`@(%s{0,%d})$`, class, maxQuery)),
		agent:   regexp.MustCompile(fmt.Sprintf(`/(%s{0,%d})$`, class, maxQuery)),
	}
}

var std = New(DefaultMaxQuery)

// Classify uses the default query length.
func Classify(before string) Result { return std.Classify(before) }

// Classify reports which trigger, if any, ends exactly at the end of before.
func (d *Detector) Classify(before string) Result {
	none := Result{Kind: None, TriggerOffset: -1}
	if before == "" {
		return none
	}
	if m := d.mention.FindStringSubmatchIndex(before); m != nil {
		return Result{Kind: Mention, Query: before[m[2]:m[3]], TriggerOffset: utf8.RuneCountInString(before[:m[0]])}
	}
	if m := d.agent.FindStringSubmatchIndex(before); m != nil {
		return Result{Kind: Agent, Query: before[m[2]:m[3]], TriggerOffset: utf8.RuneCountInString(before[:m[0]])}
	}
	return none
}

// TextBeforeCaret accumulates the logical text of every node from the start
// of the document up to caret. Atomic nodes contribute Boundary. The result
// is sanitized; an unresolvable caret yields "".
func TextBeforeCaret(doc *document.Document, caret document.Point) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	if doc == nil {
		return ""
	}
	b, ok := doc.Resolve(caret)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < b.Index; i++ {
		n := doc.At(i)
		if n.IsAtomic() {
			sb.WriteString(Boundary)
			continue
		}
		sb.WriteString(n.Text())
	}
	if b.InText {
		r := []rune(doc.At(b.Index).Text())
		sb.WriteString(string(r[:b.Offset]))
	}
	return sanitize.Input(sb.String())
}
