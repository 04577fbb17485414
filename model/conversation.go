package model

import "vaultchat/storage"

// Conversation is an ordered, immutable transcript. Every mutator returns a
// new Conversation and leaves the receiver untouched, so a caller can persist
// the next state before adopting it.
type Conversation struct {
	messages []Message
}

// NewConversation copies messages into a Conversation.
func NewConversation(messages []Message) Conversation {
	return Conversation{messages: append([]Message(nil), messages...)}
}

// Len returns the number of messages.
func (c Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the transcript.
func (c Conversation) Messages() []Message {
	return append([]Message{}, c.messages...)
}

// Last returns the final message, if any.
func (c Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Append returns c with m added at the end.
func (c Conversation) Append(m Message) Conversation {
	next := make([]Message, len(c.messages), len(c.messages)+1)
	copy(next, c.messages)
	return Conversation{messages: append(next, m)}
}

// Rollback removes the message with the given id only if it is still the last
// entry. ok reports whether anything was removed.
func (c Conversation) Rollback(id string) (Conversation, bool) {
	last, ok := c.Last()
	if !ok || last.ID != id {
		return c, false
	}
	return Conversation{messages: append([]Message(nil), c.messages[:len(c.messages)-1]...)}, true
}

// Clear returns an empty conversation.
func (c Conversation) Clear() Conversation {
	return Conversation{}
}

// Outbound projects the conversation onto what the completion endpoint sees.
func (c Conversation) Outbound() []ChatMessage {
	out := make([]ChatMessage, len(c.messages))
	for i, m := range c.messages {
		out[i] = ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

// toArchive converts to the on-disk representation.
func (c Conversation) toArchive() []storage.Message {
	out := make([]storage.Message, len(c.messages))
	for i, m := range c.messages {
		out[i] = storage.Message{
			ID:      m.ID,
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

// conversationFromArchive rebuilds a conversation loaded from disk. Entries
// without an ID get a fresh one so rollback matching stays unambiguous.
func conversationFromArchive(stored []storage.Message) Conversation {
	messages := make([]Message, 0, len(stored))
	for _, sm := range stored {
		m := Message{
			ID:      sm.ID,
			Role:    ParseRole(sm.Role),
			Content: sm.Content,
		}
		if m.ID == "" {
			m.ID = NewMessage(m.Role, "").ID
		}
		messages = append(messages, m)
	}
	return NewConversation(messages)
}
