package domain

import (
	"fmt"
	"time"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether r is one of the two stored roles
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ParseRole converts a stored role string, rejecting anything unknown
func ParseRole(s string) (MessageRole, error) {
	r := MessageRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrCorruptTranscript, s)
	}
	return r, nil
}

// Message is one transcript entry. Messages belong to exactly one
// ChatSession and have no identity of their own.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
