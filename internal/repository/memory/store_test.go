package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/aura-chat/internal/domain"
	"github.com/Rrens/aura-chat/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()

	u := &domain.User{Email: "a@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)

	ok, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByEmail(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Create(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()
	now := time.Now()

	s := &domain.ChatSession{OwnerID: "u1", SessionID: "s1", Messages: []domain.Message{}, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotEmpty(t, s.ID)

	t.Run("owner filter", func(t *testing.T) {
		_, err := repo.GetOwned(ctx, "s1", "u2")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = repo.GetOwned(ctx, "nope", "u1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = repo.AppendMessages(ctx, "s1", "u2", domain.Message{Role: domain.RoleUser, Content: "x"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("append keeps order", func(t *testing.T) {
		later := now.Add(time.Second)
		err := repo.AppendMessages(ctx, "s1", "u1",
			domain.Message{Role: domain.RoleUser, Content: "I feel anxious", Timestamp: later},
			domain.Message{Role: domain.RoleAssistant, Content: "I hear you...", Timestamp: later},
		)
		require.NoError(t, err)

		got, err := repo.GetOwned(ctx, "s1", "u1")
		require.NoError(t, err)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, domain.RoleUser, got.Messages[0].Role)
		assert.Equal(t, domain.RoleAssistant, got.Messages[1].Role)
		assert.Equal(t, later, got.UpdatedAt)
	})

	t.Run("reads are copies", func(t *testing.T) {
		got, err := repo.GetOwned(ctx, "s1", "u1")
		require.NoError(t, err)
		got.Messages[0].Content = "tampered"
		got.Messages = append(got.Messages, domain.Message{Role: domain.RoleUser})

		again, err := repo.GetOwned(ctx, "s1", "u1")
		require.NoError(t, err)
		assert.Len(t, again.Messages, 2)
		assert.Equal(t, "I feel anxious", again.Messages[0].Content)
	})
}
