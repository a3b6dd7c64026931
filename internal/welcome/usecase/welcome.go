package usecase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog"

	"friendlychat-backend/internal/chat/domain"
	"friendlychat-backend/internal/chat/repository"
	"friendlychat-backend/internal/metrics"
	"friendlychat-backend/pkg/logging"
)

const (
	BotName     = "Firebase Bot"
	BotPicture  = "/images/firebase-logo.png"
	anonymous   = "Anonymous"
	welcomeText = "%s signed in for the first time! Welcome!"
)

// UserLookup resolves a user record; *auth.Client satisfies it.
type UserLookup interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

type WelcomeUsecase interface {
	OnUserCreated(ctx context.Context, user domain.User) (string, error)
}

type welcomeUsecase struct {
	messages repository.MessageRepository
	users    UserLookup
	log      zerolog.Logger
}

// NewWelcomeUsecase posts welcome messages. users may be nil, in which case
// the display name in the event is the only source.
func NewWelcomeUsecase(messages repository.MessageRepository, users UserLookup) WelcomeUsecase {
	return &welcomeUsecase{
		messages: messages,
		users:    users,
		log:      logging.Component("welcome"),
	}
}

// OnUserCreated posts the welcome message and returns its ID.
func (u *welcomeUsecase) OnUserCreated(ctx context.Context, user domain.User) (string, error) {
	name := u.displayName(ctx, user)

	id, err := u.messages.AddMessage(ctx, domain.Message{
		Name:          BotName,
		ProfilePicURL: BotPicture,
		Text:          fmt.Sprintf(welcomeText, name),
	})
	if err != nil {
		return "", fmt.Errorf("post welcome message for %s: %w", user.UID, err)
	}

	metrics.IncWelcomeMessage()
	u.log.Info().Str("uid", user.UID).Str("message_id", id).Msg("welcome message written")
	return id, nil
}

func (u *welcomeUsecase) displayName(ctx context.Context, user domain.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	if u.users != nil && user.UID != "" {
		record, err := u.users.GetUser(ctx, user.UID)
		if err != nil {
			u.log.Warn().Err(err).Str("uid", user.UID).Msg("could not look up user, using anonymous name")
		} else if record != nil && record.UserInfo != nil && record.DisplayName != "" {
			return record.DisplayName
		}
	}
	return anonymous
}
