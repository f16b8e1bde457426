package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/aura-chat/internal/domain"
	"github.com/Rrens/aura-chat/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID    = "65f1c2a9e4b0a1b2c3d4e5f6"
	testSessionID = "0b9f8c5e-2f4d-4c1e-9d0a-7b6e5f4a3c21"
)

func newTestChatService() (*ChatService, *MockUserRepository, *MockSessionRepository, *MockGateway) {
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)
	gateway := new(MockGateway)

	svc := NewChatService(users, sessions, gateway, llm.DefaultPersona())

	tick := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}

	return svc, users, sessions, gateway
}

func TestChatService_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, users, sessions, _ := newTestChatService()
		users.On("Exists", ctx, testUserID).Return(true, nil)
		sessions.On("Create", ctx, mock.MatchedBy(func(s *domain.ChatSession) bool {
			return s.OwnerID == testUserID && s.Messages != nil && len(s.Messages) == 0
		})).Return(nil)

		sessionID, err := svc.CreateSession(ctx, testUserID)
		require.NoError(t, err)

		_, err = uuid.Parse(sessionID)
		assert.NoError(t, err, "session id should be a uuid")

		users.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("each call issues a new session id", func(t *testing.T) {
		svc, users, sessions, _ := newTestChatService()
		users.On("Exists", ctx, testUserID).Return(true, nil)
		sessions.On("Create", ctx, mock.AnythingOfType("*domain.ChatSession")).Return(nil)

		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			id, err := svc.CreateSession(ctx, testUserID)
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate session id %s", id)
			seen[id] = true
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		svc, users, sessions, _ := newTestChatService()

		_, err := svc.CreateSession(ctx, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		users.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc, users, sessions, _ := newTestChatService()
		users.On("Exists", ctx, "nobody").Return(false, nil)

		_, err := svc.CreateSession(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("user lookup failure is internal", func(t *testing.T) {
		svc, users, _, _ := newTestChatService()
		users.On("Exists", ctx, testUserID).Return(false, errors.New("connection reset"))

		_, err := svc.CreateSession(ctx, testUserID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("persistence failure is internal", func(t *testing.T) {
		svc, users, sessions, _ := newTestChatService()
		users.On("Exists", ctx, testUserID).Return(true, nil)
		sessions.On("Create", ctx, mock.Anything).Return(errors.New("write concern error"))

		_, err := svc.CreateSession(ctx, testUserID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	ctx := context.Background()
	earlier := time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC)

	existing := func() *domain.ChatSession {
		return &domain.ChatSession{
			OwnerID:   testUserID,
			SessionID: testSessionID,
			Messages: []domain.Message{
				{Role: domain.RoleUser, Content: "hello", Timestamp: earlier},
				{Role: domain.RoleAssistant, Content: "hi, I'm Aura", Timestamp: earlier},
			},
		}
	}

	t.Run("success", func(t *testing.T) {
		svc, _, sessions, gateway := newTestChatService()
		gateway.On("Available").Return(true)
		sessions.On("GetOwned", ctx, testSessionID, testUserID).Return(existing(), nil)
		gateway.On("Reply", ctx, mock.MatchedBy(func(req llm.Request) bool {
			return req.Message == "I feel anxious" &&
				req.SystemInstruction == llm.AuraSystemInstruction &&
				req.MaxOutputTokens == 500 &&
				len(req.SafetySettings) == 2 &&
				assert.ObjectsAreEqual([]llm.Turn{
					{Role: llm.RoleUser, Text: "hello"},
					{Role: llm.RoleModel, Text: "hi, I'm Aura"},
				}, req.History)
		})).Return(&llm.Response{Text: "I hear you...", Model: "gemini-1.5-flash"}, nil)
		sessions.On("AppendMessages", ctx, testSessionID, testUserID, mock.MatchedBy(func(msgs []domain.Message) bool {
			return len(msgs) == 2 &&
				msgs[0].Role == domain.RoleUser && msgs[0].Content == "I feel anxious" &&
				msgs[1].Role == domain.RoleAssistant && msgs[1].Content == "I hear you..." &&
				!msgs[1].Timestamp.Before(msgs[0].Timestamp)
		})).Return(nil)

		reply, err := svc.SendMessage(ctx, testSessionID, testUserID, "I feel anxious")
		require.NoError(t, err)
		assert.Equal(t, "I hear you...", reply)

		gateway.AssertExpectations(t)
		sessions.AssertExpectations(t)
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		svc, _, sessions, gateway := newTestChatService()
		gateway.On("Available").Return(false)

		_, err := svc.SendMessage(ctx, testSessionID, testUserID, "I feel anxious")
		assert.ErrorIs(t, err, domain.ErrUnavailable)

		sessions.AssertNotCalled(t, "GetOwned", mock.Anything, mock.Anything, mock.Anything)
		sessions.AssertNotCalled(t, "AppendMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	for name, tc := range map[string]struct{ userID, message string }{
		"empty message":   {userID: testUserID, message: ""},
		"blank message":   {userID: testUserID, message: "   "},
		"missing user id": {userID: "", message: "I feel anxious"},
	} {
		t.Run(name, func(t *testing.T) {
			svc, _, sessions, gateway := newTestChatService()
			gateway.On("Available").Return(true)

			_, err := svc.SendMessage(ctx, testSessionID, tc.userID, tc.message)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			gateway.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
			sessions.AssertNotCalled(t, "AppendMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("session not found or not owned", func(t *testing.T) {
		svc, _, sessions, gateway := newTestChatService()
		gateway.On("Available").Return(true)
		sessions.On("GetOwned", ctx, testSessionID, "intruder").Return(nil, domain.ErrNotFound)

		_, err := svc.SendMessage(ctx, testSessionID, "intruder", "hi")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		gateway.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure leaves transcript untouched", func(t *testing.T) {
		svc, _, sessions, gateway := newTestChatService()
		gateway.On("Available").Return(true)
		sessions.On("GetOwned", ctx, testSessionID, testUserID).Return(existing(), nil)
		gateway.On("Reply", ctx, mock.Anything).Return(nil, errors.New("deadline exceeded"))

		_, err := svc.SendMessage(ctx, testSessionID, testUserID, "I feel anxious")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUnavailable)
		assert.NotErrorIs(t, err, domain.ErrNotFound)

		sessions.AssertNotCalled(t, "AppendMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown stored role is a data integrity error", func(t *testing.T) {
		svc, _, sessions, gateway := newTestChatService()
		gateway.On("Available").Return(true)
		corrupt := existing()
		corrupt.Messages = append(corrupt.Messages, domain.Message{Role: "system", Content: "??"})
		sessions.On("GetOwned", ctx, testSessionID, testUserID).Return(corrupt, nil)

		_, err := svc.SendMessage(ctx, testSessionID, testUserID, "I feel anxious")
		assert.ErrorIs(t, err, domain.ErrCorruptTranscript)

		gateway.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
	})

	t.Run("persistence failure after reply", func(t *testing.T) {
		svc, _, sessions, gateway := newTestChatService()
		gateway.On("Available").Return(true)
		sessions.On("GetOwned", ctx, testSessionID, testUserID).Return(existing(), nil)
		gateway.On("Reply", ctx, mock.Anything).Return(&llm.Response{Text: "I hear you..."}, nil)
		sessions.On("AppendMessages", ctx, testSessionID, testUserID, mock.Anything).Return(errors.New("not primary"))

		reply, err := svc.SendMessage(ctx, testSessionID, testUserID, "I feel anxious")
		require.Error(t, err)
		assert.Empty(t, reply)
	})
}

func TestChatService_GetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("owned", func(t *testing.T) {
		svc, _, sessions, _ := newTestChatService()
		sessions.On("GetOwned", ctx, testSessionID, testUserID).
			Return(&domain.ChatSession{OwnerID: testUserID, SessionID: testSessionID}, nil)

		s, err := svc.GetSession(ctx, testSessionID, testUserID)
		require.NoError(t, err)
		assert.Equal(t, testSessionID, s.SessionID)
	})

	t.Run("missing ids", func(t *testing.T) {
		svc, _, _, _ := newTestChatService()

		_, err := svc.GetSession(ctx, testSessionID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("not owned", func(t *testing.T) {
		svc, _, sessions, _ := newTestChatService()
		sessions.On("GetOwned", ctx, testSessionID, "intruder").Return(nil, domain.ErrNotFound)

		_, err := svc.GetSession(ctx, testSessionID, "intruder")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
