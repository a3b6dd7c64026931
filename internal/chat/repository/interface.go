package repository

import (
	"context"
	"errors"

	"friendlychat-backend/internal/chat/domain"
)

var ErrMessageNotFound = errors.New("message not found")

// TokenRepository is the device token registry.
type TokenRepository interface {
	SaveToken(ctx context.Context, token string) error
	ListTokens(ctx context.Context) ([]string, error)
	DeleteToken(ctx context.Context, token string) error
}

// MessageRepository is the write side of the messages collection.
type MessageRepository interface {
	// AddMessage stores msg under a generated ID and returns that ID.
	AddMessage(ctx context.Context, msg domain.Message) (string, error)
	MarkModerated(ctx context.Context, messageID string) error
}
