package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rs/zerolog"

	"friendlychat-backend/internal/events/dto"
	"friendlychat-backend/internal/metrics"
	moderationUsecase "friendlychat-backend/internal/moderation/usecase"
	"friendlychat-backend/pkg/logging"
	"friendlychat-backend/pkg/storage"
)

// Cloud Storage Pub/Sub notification attributes.
const (
	attrEventType = "eventType"
	attrBucketID  = "bucketId"
	attrObjectID  = "objectId"
	payloadFormat = "payloadFormat"
	eventFinalize = "OBJECT_FINALIZE"
	payloadJSONv1 = "JSON_API_V1"
)

// ObjectAttrsLoader reads object attributes when a notification carries no
// object resource (payloadFormat NONE).
type ObjectAttrsLoader interface {
	Name() string
	Attrs(ctx context.Context, object string) (storage.ObjectInfo, error)
}

// StorageListener receives Cloud Storage object notifications from a Pub/Sub
// subscription and runs moderation on finalized uploads.
type StorageListener struct {
	client     *pubsub.Client
	subName    string
	moderation moderationUsecase.ModerationUsecase
	objects    ObjectAttrsLoader
	log        zerolog.Logger
}

// NewStorageListener builds the listener. objects may be nil when the
// subscription always delivers JSON_API_V1 payloads.
func NewStorageListener(client *pubsub.Client, subName string, moderation moderationUsecase.ModerationUsecase, objects ObjectAttrsLoader) *StorageListener {
	return &StorageListener{
		client:     client,
		subName:    subName,
		moderation: moderation,
		objects:    objects,
		log:        logging.Component("pubsub"),
	}
}

// Start blocks receiving messages until ctx is cancelled.
func (l *StorageListener) Start(ctx context.Context) error {
	sub := l.client.Subscription(l.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check subscription %s: %w", l.subName, err)
	}
	if !exists {
		return fmt.Errorf("subscription %s does not exist", l.subName)
	}

	l.log.Info().Str("subscription", l.subName).Msg("listening for storage notifications")
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := l.handleMessage(ctx, msg.Attributes, msg.Data); err != nil {
			l.log.Error().Err(err).Str("pubsub_id", msg.ID).Msg("storage notification failed, nacking")
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("receive on %s: %w", l.subName, err)
	}
	return nil
}

// handleMessage returns an error only when redelivery could help.
func (l *StorageListener) handleMessage(ctx context.Context, attrs map[string]string, data []byte) error {
	if attrs[attrEventType] != eventFinalize {
		l.log.Debug().Str("event_type", attrs[attrEventType]).Msg("ignoring storage event")
		return nil
	}

	var req dto.StorageObjectRequest
	withResource := false
	if f := attrs[payloadFormat]; f == "" || f == payloadJSONv1 {
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				l.log.Error().Err(err).Msg("failed to unmarshal storage notification")
				return nil
			}
			withResource = req.Name != ""
		}
	}
	if req.Bucket == "" {
		req.Bucket = attrs[attrBucketID]
	}
	if req.Name == "" {
		req.Name = attrs[attrObjectID]
	}
	if req.Bucket == "" || req.Name == "" {
		l.log.Error().Msg("storage notification without bucket or object name")
		return nil
	}
	if !withResource {
		if err := l.loadAttrs(ctx, &req); err != nil {
			if errors.Is(err, storage.ErrObjectNotExist) {
				l.log.Warn().Str("object", req.Name).Msg("object deleted before moderation, skipping")
				return nil
			}
			return err
		}
	}

	outcome, err := l.moderation.OnImageUploaded(ctx, req.ToObject())
	metrics.ObserveEvent("object_finalized", err)
	if err != nil {
		return err
	}
	l.log.Info().Str("object", req.Name).Str("outcome", string(outcome)).Msg("storage notification handled")
	return nil
}

// loadAttrs fills content type and metadata for notifications without an
// object resource.
func (l *StorageListener) loadAttrs(ctx context.Context, req *dto.StorageObjectRequest) error {
	if l.objects == nil {
		l.log.Warn().Str("object", req.Name).Msg("notification has no object resource and no bucket to read it from")
		return nil
	}
	if req.Bucket != l.objects.Name() {
		return nil
	}
	info, err := l.objects.Attrs(ctx, req.Name)
	if err != nil {
		return err
	}
	req.ContentType = info.ContentType
	req.Metadata = info.Metadata
	return nil
}
