// Package memory keeps users and chat sessions in process memory. It backs
// the "memory://" database URI for local runs and the service tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Rrens/aura-chat/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// URI selects the in-memory store instead of MongoDB
const URI = "memory://"

// UserRepository implements domain.UserRepository
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}

	user.ID = primitive.NewObjectID().Hex()
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[id]
	return ok, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*domain.ChatSession)}
}

func (r *SessionRepository) Create(_ context.Context, session *domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.SessionID]; exists {
		return domain.ErrInvalidInput
	}

	session.ID = primitive.NewObjectID().Hex()
	r.sessions[session.SessionID] = clone(session)
	return nil
}

func (r *SessionRepository) GetOwned(_ context.Context, sessionID, ownerID string) (*domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return clone(s), nil
}

func (r *SessionRepository) AppendMessages(_ context.Context, sessionID, ownerID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.OwnerID != ownerID {
		return domain.ErrNotFound
	}

	s.Messages = append(s.Messages, messages...)
	s.UpdatedAt = messages[len(messages)-1].Timestamp
	return nil
}

// clone copies the session so callers never share the stored transcript
func clone(s *domain.ChatSession) *domain.ChatSession {
	c := *s
	c.Messages = make([]domain.Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// Ping always succeeds; the store lives in process memory
func (r *SessionRepository) Ping(_ context.Context) error {
	return nil
}
