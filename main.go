package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"

	api "friendlychat-backend/cmd/api"
	chatRepo "friendlychat-backend/internal/chat/repository"
	eventDelivery "friendlychat-backend/internal/events/delivery"
	"friendlychat-backend/internal/events/listener"
	moderationUsecase "friendlychat-backend/internal/moderation/usecase"
	notificationDelivery "friendlychat-backend/internal/notification/delivery"
	notificationUsecase "friendlychat-backend/internal/notification/usecase"
	welcomeUsecase "friendlychat-backend/internal/welcome/usecase"
	"friendlychat-backend/pkg/config"
	"friendlychat-backend/pkg/fcm"
	"friendlychat-backend/pkg/firebaseapp"
	"friendlychat-backend/pkg/imagemagick"
	"friendlychat-backend/pkg/logging"
	"friendlychat-backend/pkg/storage"
	"friendlychat-backend/pkg/vision"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(cfg.LogLevel)
	log := logging.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.DiscoverProjectID(ctx)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Firebase Admin clients
	app, err := firebaseapp.NewApp(ctx, cfg.GoogleProjectID, cfg.StorageBucket, cfg.FirebaseCredentials)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase")
	}
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firestore client")
	}
	defer firestoreClient.Close()

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create messaging client")
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create auth client")
	}
	storageClient, err := app.Storage(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create storage client")
	}
	bucketHandle, err := storageClient.Bucket(cfg.StorageBucket)
	if err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.StorageBucket).Msg("failed to open storage bucket")
	}

	googleOpts := firebaseapp.ClientOptions(cfg.FirebaseCredentials)
	visionClient, err := vision.NewClient(ctx, googleOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create vision client")
	}

	// Repositories
	messageRepo := chatRepo.NewFirestoreMessageRepository(firestoreClient)
	var tokenRepo chatRepo.TokenRepository
	switch cfg.TokenStore {
	case config.TokenStorePostgres:
		db, err := chatRepo.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		tokenRepo = chatRepo.NewGormTokenRepository(db)
	default:
		tokenRepo = chatRepo.NewFirestoreTokenRepository(firestoreClient)
	}
	log.Info().Str("token_store", cfg.TokenStore).Msg("token registry ready")

	// Use cases
	notificationUc := notificationUsecase.NewNotificationUsecase(tokenRepo, fcm.NewClient(messagingClient), cfg.AppURL)
	welcomeUc := welcomeUsecase.NewWelcomeUsecase(messageRepo, authClient)
	bucket := storage.NewBucket(cfg.StorageBucket, bucketHandle)
	moderationUc := moderationUsecase.NewModerationUsecase(
		visionClient,
		bucket,
		imagemagick.NewBlurrer(cfg.ConvertBin),
		messageRepo,
		vision.Likelihood(cfg.ModerationThreshold),
	)

	// Optional in-process triggers
	if cfg.StorageSubscription != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GoogleProjectID, googleOpts...)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub client")
		}
		defer pubsubClient.Close()

		storageListener := listener.NewStorageListener(pubsubClient, cfg.StorageSubscription, moderationUc, bucket)
		go func() {
			if err := storageListener.Start(ctx); err != nil {
				log.Error().Err(err).Msg("storage listener stopped")
			}
		}()
	}
	if cfg.WatchMessages {
		watcher := listener.NewMessageWatcher(firestoreClient, notificationUc)
		go func() {
			if err := watcher.Start(ctx); err != nil {
				log.Error().Err(err).Msg("message watcher stopped")
			}
		}()
	}

	handler := api.NewHandler(
		eventDelivery.NewEventHandler(welcomeUc, notificationUc, moderationUc),
		notificationDelivery.NewTokenHandler(tokenRepo),
		cfg,
	)

	log.Info().Str("port", cfg.Port).Str("project", cfg.GoogleProjectID).Msg("server starting")
	if err := handler.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
