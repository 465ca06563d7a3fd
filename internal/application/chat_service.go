package application

import (
	"context"
	"log/slog"
)

// FallbackReply is returned whenever the generative backend fails; the chat
// surface never raises to the caller.
const FallbackReply = "Sorry, I couldn't process that request."

// TextGenerator produces a free-text reply for a message.
type TextGenerator interface {
	GenerateText(ctx context.Context, message string) (string, error)
}

// ChatService relays dashboard chat messages to the generative backend.
type ChatService struct {
	generator TextGenerator
}

func NewChatService(generator TextGenerator) *ChatService {
	return &ChatService{generator: generator}
}

// Reply returns the generated answer, or the fallback apology on any failure.
func (s *ChatService) Reply(ctx context.Context, message string) string {
	text, err := s.generator.GenerateText(ctx, message)
	if err != nil {
		slog.Error("Chat generation failed", "error", err)
		return FallbackReply
	}
	return text
}
