// ABOUTME: Conversation list for the run command: a YAML rooms file or built-in demo rooms
// ABOUTME: Each room carries its kind, roster and agents for mention and agent popups

package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/msgcomposer/pkg/composer/form"
)

type roomsFile struct {
	Rooms []roomEntry `yaml:"rooms"`
}

type roomEntry struct {
	ID          string        `yaml:"id"`
	Kind        string        `yaml:"kind"`
	Target      string        `yaml:"target"`
	ReplyToUser string        `yaml:"reply_to_user"`
	ReplyToMsg  string        `yaml:"reply_to_msg"`
	Users       []memberEntry `yaml:"users"`
	Agents      []memberEntry `yaml:"agents"`
}

type memberEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// loadRooms reads a rooms file. Roster order is popup order.
func loadRooms(path string) ([]form.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rooms: %w", err)
	}
	return parseRooms(data)
}

func parseRooms(data []byte) ([]form.Conversation, error) {
	var f roomsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rooms: %w", err)
	}
	if len(f.Rooms) == 0 {
		return nil, errors.New("parsing rooms: no rooms defined")
	}

	convs := make([]form.Conversation, 0, len(f.Rooms))
	seen := make(map[string]bool, len(f.Rooms))
	for i, r := range f.Rooms {
		if r.ID == "" {
			return nil, fmt.Errorf("room %d: missing id", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("room %q: duplicate id", r.ID)
		}
		seen[r.ID] = true
		kind, err := roomKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("room %q: %w", r.ID, err)
		}
		users, err := candidates(r.Users)
		if err != nil {
			return nil, fmt.Errorf("room %q users: %w", r.ID, err)
		}
		agents, err := candidates(r.Agents)
		if err != nil {
			return nil, fmt.Errorf("room %q agents: %w", r.ID, err)
		}
		convs = append(convs, form.Conversation{
			ID:            r.ID,
			Kind:          kind,
			TargetID:      r.Target,
			Users:         users,
			Agents:        agents,
			ReplyToUserID: r.ReplyToUser,
			ReplyToMsgID:  r.ReplyToMsg,
		})
	}
	return convs, nil
}

func roomKind(s string) (form.ConversationKind, error) {
	switch s {
	case "", "direct":
		return form.Direct, nil
	case "group":
		return form.Group, nil
	case "ai":
		return form.AI, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

func candidates(members []memberEntry) ([]form.Candidate, error) {
	out := make([]form.Candidate, 0, len(members))
	for _, m := range members {
		if m.ID == "" || m.Name == "" {
			return nil, fmt.Errorf("member %+v needs id and name", m)
		}
		out = append(out, form.Candidate{ID: m.ID, DisplayName: m.Name})
	}
	return out, nil
}

func demoRooms() []form.Conversation {
	team := []form.Candidate{
		{ID: "u1", DisplayName: "alice"},
		{ID: "u2", DisplayName: "albert"},
		{ID: "u3", DisplayName: "bob"},
		{ID: "u4", DisplayName: "李雷"},
	}
	agents := []form.Candidate{
		{ID: "a1", DisplayName: "Summarizer"},
		{ID: "a2", DisplayName: "Translator"},
	}
	return []form.Conversation{
		{ID: "general", Kind: form.Group, Users: team, Agents: agents},
		{ID: "alice", Kind: form.Direct, TargetID: "u1"},
		{ID: "assistant", Kind: form.AI, TargetID: "a1", Agents: agents[:1]},
	}
}
