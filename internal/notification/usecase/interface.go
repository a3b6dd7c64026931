package usecase

import (
	"context"

	"friendlychat-backend/internal/chat/domain"
	"friendlychat-backend/pkg/fcm"
)

// Messenger delivers one notification to many device tokens.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]fcm.Delivery, error)
}

// TokenStore is the part of the token registry the dispatcher needs.
type TokenStore interface {
	ListTokens(ctx context.Context) ([]string, error)
	DeleteToken(ctx context.Context, token string) error
}

// NotificationUsecase fans a new chat message out to every registered device.
type NotificationUsecase interface {
	OnMessageCreated(ctx context.Context, msg domain.Message) error
}
