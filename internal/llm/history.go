package llm

import (
	"fmt"

	"github.com/Rrens/aura-chat/internal/domain"
)

// TurnRole maps a stored role onto the provider's two-party vocabulary
func TurnRole(r domain.MessageRole) (Role, error) {
	switch r {
	case domain.RoleUser:
		return RoleUser, nil
	case domain.RoleAssistant:
		return RoleModel, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrCorruptTranscript, string(r))
	}
}

// HistoryFromTranscript converts a stored transcript into provider turns,
// preserving order. A message with an unrecognized role fails the whole
// conversion.
func HistoryFromTranscript(messages []domain.Message) ([]Turn, error) {
	turns := make([]Turn, 0, len(messages))
	for i, m := range messages {
		role, err := TurnRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		turns = append(turns, Turn{Role: role, Text: m.Content})
	}
	return turns, nil
}
