package chat

import (
	"context"
	"fmt"
	"net/http"

	"taskmate/models"
	"taskmate/services/session"
)

// ChatService defines the client-side chat operations.
type ChatService interface {
	SendMessage(ctx context.Context, m models.ChatMessage) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error)
}

// DefaultChatService is the production implementation.
type DefaultChatService struct {
	API *session.Client
}

func (s *DefaultChatService) SendMessage(ctx context.Context, m models.ChatMessage) (*models.ChatMessage, error) {
	if m.ChatID == "" {
		return nil, fmt.Errorf("message must reference a chat")
	}
	if m.Text == "" {
		return nil, fmt.Errorf("message text is required")
	}
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/chats/%s/messages", m.ChatID),
		Body:   m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("message rejected with status %d", resp.Status)
	}
	var sent models.ChatMessage
	if err := resp.Decode(&sent); err != nil {
		return nil, err
	}
	return &sent, nil
}

func (s *DefaultChatService) ListMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	resp, err := s.API.Do(ctx, session.Operation{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/chats/%s/messages", chatID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("message list rejected with status %d", resp.Status)
	}
	var messages []models.ChatMessage
	if err := resp.Decode(&messages); err != nil {
		return nil, err
	}
	return messages, nil
}
