package listener

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"friendlychat-backend/internal/chat/domain"
	"friendlychat-backend/internal/metrics"
	notificationUsecase "friendlychat-backend/internal/notification/usecase"
	"friendlychat-backend/pkg/logging"
)

// MessageWatcher listens to the messages collection and dispatches
// notifications for documents added after it started.
type MessageWatcher struct {
	client       *firestore.Client
	notification notificationUsecase.NotificationUsecase
	log          zerolog.Logger
}

func NewMessageWatcher(client *firestore.Client, notification notificationUsecase.NotificationUsecase) *MessageWatcher {
	return &MessageWatcher{
		client:       client,
		notification: notification,
		log:          logging.Component("message-watcher"),
	}
}

// Start blocks until ctx is cancelled or the snapshot stream fails.
func (w *MessageWatcher) Start(ctx context.Context) error {
	it := w.client.Collection(domain.MessagesCollection).Snapshots(ctx)
	defer it.Stop()

	// The first snapshot lists every existing document as added.
	initial := true
	for {
		snap, err := it.Next()
		if ctx.Err() != nil || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return fmt.Errorf("watch messages: %w", err)
		}
		if initial {
			initial = false
			w.log.Info().Int("existing", snap.Size).Msg("watching messages collection")
			continue
		}

		for _, change := range snap.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			var msg domain.Message
			if err := change.Doc.DataTo(&msg); err != nil {
				w.log.Error().Err(err).Str("message_id", change.Doc.Ref.ID).Msg("failed to decode message")
				continue
			}
			msg.ID = change.Doc.Ref.ID

			// Errors are not redelivered here; the event is logged and dropped.
			err := w.notification.OnMessageCreated(ctx, msg)
			metrics.ObserveEvent("message_created", err)
			if err != nil {
				w.log.Error().Err(err).Str("message_id", msg.ID).Msg("notification fan-out failed")
			}
		}
	}
}
