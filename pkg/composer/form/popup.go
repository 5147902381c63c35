// ABOUTME: Autocomplete popup state machine: Closed, Mention, Agent
// ABOUTME: Candidates are filtered by case-folded substring with the reply target promoted first

package form

import (
	"strings"

	"github.com/mauromedda/msgcomposer/pkg/composer/detect"
	"github.com/mauromedda/msgcomposer/pkg/composer/document"
	"github.com/mauromedda/msgcomposer/pkg/composer/tag"
)

// Popup is the autocomplete state.
type Popup int

const (
	PopupClosed Popup = iota
	PopupMention
	PopupAgent
)

func (p Popup) String() string {
	switch p {
	case PopupMention:
		return "mention"
	case PopupAgent:
		return "agent"
	default:
		return "closed"
	}
}

// PopupState is a read-only view for rendering.
type PopupState struct {
	Kind       Popup
	Query      string
	Candidates []Candidate
	Selected   int
}

// Open reports whether a popup is showing.
func (s PopupState) Open() bool { return s.Kind != PopupClosed }

// Popup returns the current popup view.
func (c *Composer) Popup() PopupState {
	if c.popup == PopupClosed {
		return PopupState{}
	}
	return PopupState{Kind: c.popup, Query: c.query, Candidates: c.Filtered(), Selected: c.selected}
}

// Input schedules an input pass. Without a debounce delay it runs now.
func (c *Composer) Input() {
	if c.debounce == nil {
		c.ProcessInput()
		return
	}
	c.debounce.Trigger()
}

// Tick runs the input pass for a debounce tick, ignoring superseded ones.
func (c *Composer) Tick(seq uint64) bool {
	if c.debounce == nil || !c.debounce.Take(seq) {
		return false
	}
	c.ProcessInput()
	return true
}

// FlushInput runs a pending debounced pass immediately.
func (c *Composer) FlushInput() bool {
	if c.debounce == nil || !c.debounce.Flush() {
		return false
	}
	c.ProcessInput()
	return true
}

// ProcessInput re-derives mentions and decides the popup from the live
// caret. Failures close the popup.
func (c *Composer) ProcessInput() {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("form: input handler: %v", r)
			c.closePopup()
		}
	}()

	doc := c.sel.Root()
	if doc == nil {
		c.closePopup()
		return
	}
	c.refresh()

	r, ok := c.sel.ValidRange()
	if !ok || !r.Collapsed() {
		c.closePopup()
		return
	}
	res := c.detector.Classify(detect.TextBeforeCaret(doc, r.End))
	switch {
	case res.Kind == detect.Mention && c.conv.Kind != AI && len(c.agents) == 0 &&
		len(unselected(c.conv.Users, c.users)) > 0:
		c.open(PopupMention, res.Query)
	case res.Kind == detect.Agent && len(c.users) == 0 &&
		len(unselected(c.conv.Agents, c.agents)) > 0:
		c.open(PopupAgent, res.Query)
	default:
		c.closePopup()
	}
}

func (c *Composer) open(kind Popup, query string) {
	if c.popup != kind || c.query != query {
		c.selected = 0
	}
	c.popup = kind
	c.query = query
	c.snapshot, c.hasSnapshot = c.sel.Snapshot()
}

func (c *Composer) closePopup() {
	c.popup = PopupClosed
	c.query = ""
	c.selected = 0
	c.hasSnapshot = false
}

// ClosePopup force-closes the popup without inserting.
func (c *Composer) ClosePopup() { c.closePopup() }

func unselected(all []Candidate, chosen []tag.Mention) []Candidate {
	if len(chosen) == 0 {
		return all
	}
	taken := make(map[string]bool, len(chosen))
	for _, m := range chosen {
		taken[m.ID] = true
	}
	out := make([]Candidate, 0, len(all))
	for _, cand := range all {
		if !taken[cand.ID] {
			out = append(out, cand)
		}
	}
	return out
}

// Filtered returns the candidates for the open popup: unselected entries
// whose name contains the query. The mention popup moves the replied-to
// user to the front.
func (c *Composer) Filtered() []Candidate {
	switch c.popup {
	case PopupMention:
		return c.filter(unselected(c.conv.Users, c.users), c.query, c.conv.ReplyToUserID)
	case PopupAgent:
		return c.filter(unselected(c.conv.Agents, c.agents), c.query, "")
	}
	return nil
}

func (c *Composer) filter(pool []Candidate, query, sticky string) []Candidate {
	q := c.fold.String(query)
	var top, rest []Candidate
	for _, cand := range pool {
		if q != "" && !strings.Contains(c.fold.String(cand.DisplayName), q) {
			continue
		}
		if sticky != "" && cand.ID == sticky {
			top = append(top, cand)
			continue
		}
		rest = append(rest, cand)
	}
	return append(top, rest...)
}

// Move shifts the highlighted candidate by delta, clamped to the list.
func (c *Composer) Move(delta int) {
	n := len(c.Filtered())
	c.selected = max(0, min(c.selected+delta, n-1))
}

// Commit inserts the highlighted candidate. It reports false when the
// popup is closed or empty.
func (c *Composer) Commit() bool {
	list := c.Filtered()
	if c.selected < 0 || c.selected >= len(list) {
		return false
	}
	cand := list[c.selected]
	if c.popup == PopupAgent {
		return c.SelectAgent(cand)
	}
	return c.SelectMention(cand)
}

// SelectMention closes the popup, restores the caret saved when it opened
// and inserts cand as a user mention.
func (c *Composer) SelectMention(cand Candidate) bool {
	c.restoreForSelect()
	return c.InsertMention(cand)
}

// SelectAgent is SelectMention for agents.
func (c *Composer) SelectAgent(cand Candidate) bool {
	c.restoreForSelect()
	return c.InsertAgent(cand)
}

func (c *Composer) restoreForSelect() {
	snap, ok := c.snapshot, c.hasSnapshot
	c.closePopup()
	if ok {
		c.sel.Restore(snap)
		return
	}
	c.sel.RestoreCaretToEnd()
}

// InsertMention inserts a user entity at the caret, consuming "@query".
func (c *Composer) InsertMention(cand Candidate) bool {
	return c.insertEntity(document.EntityUser, cand)
}

// InsertAgent inserts an agent entity at the caret, consuming "/query".
func (c *Composer) InsertAgent(cand Candidate) bool {
	return c.insertEntity(document.EntityAgent, cand)
}

func (c *Composer) insertEntity(kind document.EntityKind, cand Candidate) bool {
	node := newEntity(kind, cand)
	if node == nil {
		return false
	}
	ok := c.tags.Insert(node, document.Identity{Kind: kind, ID: cand.ID}, tag.TriggerFor(kind), true)
	if ok {
		c.refresh()
	}
	return ok
}

// RemoveMention deletes every entity carrying id.
func (c *Composer) RemoveMention(id string) bool {
	ok := c.tags.Remove(id)
	if ok {
		c.refresh()
	}
	return ok
}
