// ABOUTME: Submit assembly: linearize the document and build outbound messages for the room
// ABOUTME: A successful submit clears the input; nothing is sent while a composition is active

package form

import (
	"github.com/mauromedda/msgcomposer/pkg/composer/linear"
)

// Context maps the conversation onto message assembly.
func (c *Composer) Context() linear.Context {
	agents := make([]linear.Agent, 0, len(c.conv.Agents))
	for _, a := range c.conv.Agents {
		agents = append(agents, linear.Agent{ID: a.ID, DisplayName: a.DisplayName})
	}
	return linear.Context{
		RoomID:   c.conv.ID,
		Group:    c.conv.Kind == Group,
		AIOnly:   c.conv.Kind == AI,
		TargetID: c.conv.TargetID,
		Agents:   agents,
		ReplyTo:  c.conv.ReplyToMsgID,
		Now:      c.opts.Now,
	}
}

// Linearize flattens the document for submit.
func (c *Composer) Linearize() linear.Linear {
	return linear.Linearize(c.sel.Root(), c.tags)
}

// Build assembles one message with text and attachments.
func (c *Composer) Build() (linear.OutboundMessage, bool) {
	return linear.Build(c.Linearize(), c.Context())
}

// Messages assembles one message per media item plus the text message.
func (c *Composer) Messages() []linear.OutboundMessage {
	return linear.Messages(c.Linearize(), c.Context())
}

// Submit builds the outgoing messages and clears the input. It returns nil
// when there is nothing to send or a composition is active.
func (c *Composer) Submit() []linear.OutboundMessage {
	if c.gate.Composing() {
		return nil
	}
	if c.debounce != nil {
		c.debounce.Flush()
	}
	c.refresh()
	msgs := c.Messages()
	if len(msgs) == 0 {
		return nil
	}
	c.Clear()
	return msgs
}
