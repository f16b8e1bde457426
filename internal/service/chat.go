package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/aura-chat/internal/domain"
	"github.com/Rrens/aura-chat/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChatService creates chat sessions and relays messages to the AI gateway
type ChatService struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	gateway     llm.Gateway
	persona     llm.Persona
	now         func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	gateway llm.Gateway,
	persona llm.Persona,
) *ChatService {
	return &ChatService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		gateway:     gateway,
		persona:     persona,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession opens an empty session owned by userID and returns its public id
func (s *ChatService) CreateSession(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}

	now := s.now()
	session := &domain.ChatSession{
		OwnerID:   userID,
		SessionID: uuid.NewString(),
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("session_id", session.SessionID).
		Str("user_id", userID).
		Msg("Chat session created")

	return session.SessionID, nil
}

// GetSession returns the session with its transcript if userID owns it
func (s *ChatService) GetSession(ctx context.Context, sessionID, userID string) (*domain.ChatSession, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: user id and session id are required", domain.ErrInvalidInput)
	}

	session, err := s.sessionRepo.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// SendMessage forwards message with the session history to the gateway and
// records the exchange. The transcript is only written after the gateway
// replied, so a failed call leaves the session untouched.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, userID, message string) (string, error) {
	if !s.gateway.Available() {
		return "", fmt.Errorf("%w: ai gateway is not configured", domain.ErrUnavailable)
	}

	if strings.TrimSpace(message) == "" || strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: user id and message are required", domain.ErrInvalidInput)
	}

	session, err := s.sessionRepo.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	history, err := llm.HistoryFromTranscript(session.Messages)
	if err != nil {
		return "", fmt.Errorf("failed to build history for session %s: %w", sessionID, err)
	}

	resp, err := s.gateway.Reply(ctx, s.persona.NewRequest(history, message))
	if err != nil {
		return "", fmt.Errorf("ai gateway reply failed: %w", err)
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: message, Timestamp: s.now()}
	aiMsg := domain.Message{Role: domain.RoleAssistant, Content: resp.Text, Timestamp: s.now()}

	if err := s.sessionRepo.AppendMessages(ctx, sessionID, userID, userMsg, aiMsg); err != nil {
		// The reply was generated but is not durably saved.
		log.Ctx(ctx).Error().Err(err).
			Str("session_id", sessionID).
			Msg("Failed to persist exchange after successful reply")
		return "", fmt.Errorf("failed to save messages: %w", err)
	}

	log.Ctx(ctx).Debug().
		Str("session_id", sessionID).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Chat reply generated")

	return resp.Text, nil
}
