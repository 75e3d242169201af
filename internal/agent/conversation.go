package agent

import "github.com/cloudwego/eino/schema"

// Conversation is the append-only message history of one user request.
type Conversation struct {
	messages []*schema.Message
}

func NewConversation(systemPrompt, userPrompt string) *Conversation {
	return &Conversation{
		messages: []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(userPrompt),
		},
	}
}

func (c *Conversation) Append(msgs ...*schema.Message) {
	c.messages = append(c.messages, msgs...)
}

// Messages returns a copy of the history, safe to hand to a chat model.
func (c *Conversation) Messages() []*schema.Message {
	out := make([]*schema.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}
