// ABOUTME: Resolves "/Name" agent triggers typed inline in outbound text
// ABOUTME: Known agents are collected and their trigger text stripped from the content

package linear

import (
	"regexp"
	"slices"
	"strings"
)

// Agent is a mentionable AI agent from the roster.
type Agent struct {
	ID          string
	DisplayName string
}

var agentTrigger = regexp.MustCompile(`/([^\s/]+)`)

// AgentReply is the outcome of ResolveAgentReply.
type AgentReply struct {
	Text     string
	AgentIDs []string
	Agents   []Agent
}

// ResolveAgentReply scans text for "/Name" triggers naming agents in roster,
// merges the already selected agents, and strips the resolved triggers.
// Unknown triggers such as file paths stay in the text.
func ResolveAgentReply(text string, roster, selected []Agent) AgentReply {
	byName := make(map[string]Agent, len(roster)+len(selected))
	for _, a := range slices.Concat(roster, selected) {
		if _, dup := byName[a.DisplayName]; !dup && a.DisplayName != "" {
			byName[a.DisplayName] = a
		}
	}

	var out AgentReply
	seen := map[string]bool{}
	add := func(a Agent) {
		if a.ID == "" || seen[a.ID] {
			return
		}
		seen[a.ID] = true
		out.Agents = append(out.Agents, a)
		out.AgentIDs = append(out.AgentIDs, a.ID)
	}

	var b strings.Builder
	last := 0
	for _, m := range agentTrigger.FindAllStringSubmatchIndex(text, -1) {
		a, ok := byName[text[m[2]:m[3]]]
		if !ok {
			continue
		}
		add(a)
		b.WriteString(text[last:m[0]])
		last = m[1]
	}
	b.WriteString(text[last:])
	for _, a := range selected {
		add(a)
	}

	out.Text = strings.TrimSpace(b.String())
	return out
}
