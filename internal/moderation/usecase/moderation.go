package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"friendlychat-backend/internal/chat/domain"
	"friendlychat-backend/internal/chat/repository"
	"friendlychat-backend/internal/metrics"
	"friendlychat-backend/pkg/logging"
	"friendlychat-backend/pkg/vision"
)

// Outcome is what moderation did with an uploaded object.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeClean   Outcome = "clean"
	OutcomeBlurred Outcome = "blurred"
)

type SafeSearchDetector interface {
	DetectSafeSearch(ctx context.Context, gcsURI string) (vision.SafeSearch, error)
}

type ObjectStore interface {
	Name() string
	Download(ctx context.Context, object, dst string) error
	Upload(ctx context.Context, src, object, contentType string, metadata map[string]string) error
}

type ImageBlurrer interface {
	Blur(ctx context.Context, path string) error
}

type ModerationUsecase interface {
	OnImageUploaded(ctx context.Context, obj domain.StorageObject) (Outcome, error)
}

type moderationUsecase struct {
	detector  SafeSearchDetector
	store     ObjectStore
	blurrer   ImageBlurrer
	messages  repository.MessageRepository
	threshold vision.Likelihood
	tempDir   string
	log       zerolog.Logger
}

func NewModerationUsecase(detector SafeSearchDetector, store ObjectStore, blurrer ImageBlurrer, messages repository.MessageRepository, threshold vision.Likelihood) ModerationUsecase {
	if threshold == "" {
		threshold = vision.VeryLikely
	}
	return &moderationUsecase{
		detector:  detector,
		store:     store,
		blurrer:   blurrer,
		messages:  messages,
		threshold: threshold,
		tempDir:   os.TempDir(),
		log:       logging.Component("moderation"),
	}
}

// Offensive reports whether an annotation crosses the blur threshold.
func Offensive(ss vision.SafeSearch, threshold vision.Likelihood) bool {
	return ss.Adult.AtLeast(threshold) || ss.Violence.AtLeast(threshold)
}

func (u *moderationUsecase) OnImageUploaded(ctx context.Context, obj domain.StorageObject) (Outcome, error) {
	log := u.log.With().Str("object", obj.Name).Logger()

	switch {
	case !obj.IsImage():
		log.Debug().Str("content_type", obj.ContentType).Msg("not an image, skipping")
		return OutcomeSkipped, nil
	case obj.Blurred():
		log.Debug().Msg("already blurred, skipping")
		return OutcomeSkipped, nil
	case obj.Bucket != u.store.Name():
		log.Warn().Str("bucket", obj.Bucket).Msg("object is outside the moderated bucket, skipping")
		return OutcomeSkipped, nil
	}

	ss, err := u.detector.DetectSafeSearch(ctx, obj.GCSURI())
	if err != nil {
		return "", fmt.Errorf("safe search %s: %w", obj.Name, err)
	}
	if !Offensive(ss, u.threshold) {
		log.Info().Str("adult", string(ss.Adult)).Str("violence", string(ss.Violence)).Msg("image passed moderation")
		return OutcomeClean, nil
	}

	log.Info().Str("adult", string(ss.Adult)).Str("violence", string(ss.Violence)).Msg("offensive image detected, blurring")
	if err := u.blurObject(ctx, obj); err != nil {
		return "", err
	}
	metrics.IncImageBlurred()

	messageID, ok := obj.MessageID()
	if !ok {
		log.Warn().Msg("object path carries no message id, message not flagged")
		return OutcomeBlurred, nil
	}
	err = u.messages.MarkModerated(ctx, messageID)
	if errors.Is(err, repository.ErrMessageNotFound) {
		log.Warn().Str("message_id", messageID).Msg("message no longer exists, moderation flag not set")
		return OutcomeBlurred, nil
	}
	if err != nil {
		return "", err
	}
	log.Info().Str("message_id", messageID).Msg("message marked as moderated")
	return OutcomeBlurred, nil
}

func (u *moderationUsecase) blurObject(ctx context.Context, obj domain.StorageObject) error {
	local := filepath.Join(u.tempDir, uuid.New().String()+filepath.Ext(obj.Name))
	defer os.Remove(local)

	if err := u.store.Download(ctx, obj.Name, local); err != nil {
		return fmt.Errorf("download %s: %w", obj.Name, err)
	}
	if err := u.blurrer.Blur(ctx, local); err != nil {
		return fmt.Errorf("blur %s: %w", obj.Name, err)
	}

	metadata := make(map[string]string, len(obj.Metadata)+1)
	for k, v := range obj.Metadata {
		metadata[k] = v
	}
	metadata[domain.BlurredMetadataKey] = "true"
	if err := u.store.Upload(ctx, local, obj.Name, obj.ContentType, metadata); err != nil {
		return fmt.Errorf("upload blurred %s: %w", obj.Name, err)
	}
	return nil
}
