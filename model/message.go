package model

import "github.com/google/uuid"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole maps a wire role onto a Role. Unknown or empty roles fall back to
// assistant, which is the only role a completion can legitimately return.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleUser, RoleSystem:
		return Role(s)
	default:
		return RoleAssistant
	}
}

// Message is one immutable entry of the conversation. ID is local only and
// never leaves the process except through the archive.
type Message struct {
	ID      string
	Role    Role
	Content string
}

// NewMessage creates a message with a fresh ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
	}
}

// ChatMessage is the part of a Message that is sent upstream.
type ChatMessage struct {
	Role    Role
	Content string
}
