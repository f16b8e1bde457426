package domain

import (
	"context"
	"time"
)

// ChatSession is a user-owned conversation thread. SessionID is the
// externally visible key; ID is whatever the store uses internally.
type ChatSession struct {
	ID        string    `json:"-"`
	OwnerID   string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionRepository defines the interface for session storage.
// Every lookup is keyed by (sessionID, ownerID) together.
type SessionRepository interface {
	Create(ctx context.Context, session *ChatSession) error
	// GetOwned returns ErrNotFound both when the session does not exist and
	// when it belongs to another user.
	GetOwned(ctx context.Context, sessionID, ownerID string) (*ChatSession, error)
	// AppendMessages adds messages to the end of the transcript in one
	// atomic write. Concurrent appends on the same session must not lose
	// each other's messages.
	AppendMessages(ctx context.Context, sessionID, ownerID string, messages ...Message) error
}
