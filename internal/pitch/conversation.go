package pitch

import (
	"context"
	"strings"

	"pitchctl/internal/services"
)

// RoleAI marks a turn produced by the backend assistant.
const RoleAI = "ai"

// Turn is one reply in a conversation. No history is retained.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SendMessage forwards a user message and returns the assistant's reply.
func (s *Session) SendMessage(ctx context.Context, text string) (Turn, error) {
	if s.state.PitchID == "" {
		return Turn{}, errNoPitch("send message")
	}
	if strings.TrimSpace(text) == "" {
		return Turn{}, services.Wrap(services.ErrValidation, "pitch", "send message", "message is empty", nil)
	}
	body, err := s.gateway.Converse(ctx, s.state.PitchID, text)
	if err != nil {
		return Turn{}, err
	}
	content, ok := body.String("content")
	if !ok {
		return Turn{}, errMalformed("send message", "reply has no content")
	}
	return Turn{Role: RoleAI, Content: content}, nil
}
