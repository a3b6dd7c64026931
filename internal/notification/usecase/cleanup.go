package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"friendlychat-backend/internal/metrics"
	"friendlychat-backend/pkg/fcm"
	"friendlychat-backend/pkg/logging"
)

// TokenDeleter removes a token from the registry.
type TokenDeleter interface {
	DeleteToken(ctx context.Context, token string) error
}

// CleanupTokens logs every failed delivery and removes the tokens whose error
// is permanent. Deletions run concurrently; CleanupTokens returns once all of
// them have finished, with the tokens it attempted to remove.
func CleanupTokens(ctx context.Context, store TokenDeleter, deliveries []fcm.Delivery) []string {
	log := logging.Component("token-cleanup")

	var stale []string
	for _, d := range deliveries {
		if !d.Failed() {
			continue
		}
		metrics.IncDeliveryFailure(string(d.Code))
		log.Warn().
			Err(d.Err).
			Str("token", redact(d.Token)).
			Str("code", string(d.Code)).
			Msg("failure sending notification")
		if d.Code.Permanent() {
			stale = append(stale, d.Token)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, token := range stale {
		g.Go(func() error {
			if err := store.DeleteToken(ctx, token); err != nil {
				log.Error().Err(err).Str("token", redact(token)).Msg("failed to remove stale token")
				return nil
			}
			metrics.IncTokenPruned()
			return nil
		})
	}
	_ = g.Wait()

	log.Info().Int("count", len(stale)).Msg("stale tokens cleaned up")
	return stale
}

func redact(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
