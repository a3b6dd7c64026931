package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"friendlychat-backend/internal/chat/domain"
	"friendlychat-backend/internal/metrics"
	"friendlychat-backend/pkg/fcm"
	"friendlychat-backend/pkg/logging"
)

const (
	PlaceholderIcon = "/images/profile_placeholder.png"

	maxBodyLength = 100
	ellipsis      = "..."
)

type notificationUsecase struct {
	tokens      TokenStore
	messenger   Messenger
	clickAction string
	log         zerolog.Logger
}

// NewNotificationUsecase wires the dispatcher. clickAction is the URL opened
// when a notification is clicked.
func NewNotificationUsecase(tokens TokenStore, messenger Messenger, clickAction string) NotificationUsecase {
	return &notificationUsecase{
		tokens:      tokens,
		messenger:   messenger,
		clickAction: clickAction,
		log:         logging.Component("notification"),
	}
}

// BuildNotification derives the push payload for a chat message.
func BuildNotification(msg domain.Message, clickAction string) fcm.NotificationData {
	title := msg.Name + " posted a message"
	if !msg.HasText() {
		title = msg.Name + " posted an image"
	}

	icon := msg.ProfilePicURL
	if icon == "" {
		icon = PlaceholderIcon
	}

	return fcm.NotificationData{
		Title:       title,
		Body:        truncateBody(msg.Text),
		Icon:        icon,
		ClickAction: clickAction,
	}
}

func truncateBody(text string) string {
	runes := []rune(text)
	if len(runes) <= maxBodyLength {
		return text
	}
	return string(runes[:maxBodyLength-len(ellipsis)]) + ellipsis
}

func (u *notificationUsecase) OnMessageCreated(ctx context.Context, msg domain.Message) error {
	notification := BuildNotification(msg, u.clickAction)

	tokens, err := u.tokens.ListTokens(ctx)
	if err != nil {
		return fmt.Errorf("load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		u.log.Debug().Str("message_id", msg.ID).Msg("no device tokens registered, skipping push")
		return nil
	}

	deliveries, err := u.messenger.SendMulticast(ctx, tokens, notification)
	if err != nil {
		return fmt.Errorf("send notifications for message %s: %w", msg.ID, err)
	}

	sent := 0
	for _, d := range deliveries {
		if !d.Failed() {
			sent++
		}
	}
	metrics.AddNotificationsSent(sent)
	u.log.Info().
		Str("message_id", msg.ID).
		Int("tokens", len(tokens)).
		Int("sent", sent).
		Msg("notifications sent")

	CleanupTokens(ctx, u.tokens, deliveries)
	return nil
}
