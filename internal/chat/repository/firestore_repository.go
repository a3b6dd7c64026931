package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"friendlychat-backend/internal/chat/domain"
)

type firestoreTokenRepository struct {
	client *firestore.Client
}

// NewFirestoreTokenRepository stores tokens as document IDs in fcmTokens.
func NewFirestoreTokenRepository(client *firestore.Client) TokenRepository {
	return &firestoreTokenRepository{client: client}
}

func (r *firestoreTokenRepository) SaveToken(ctx context.Context, token string) error {
	_, err := r.client.Collection(domain.TokensCollection).Doc(token).Set(ctx, map[string]interface{}{
		"updatedAt": firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *firestoreTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	docs, err := r.client.Collection(domain.TokensCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	tokens := make([]string, 0, len(docs))
	for _, doc := range docs {
		tokens = append(tokens, doc.Ref.ID)
	}
	return tokens, nil
}

func (r *firestoreTokenRepository) DeleteToken(ctx context.Context, token string) error {
	if _, err := r.client.Collection(domain.TokensCollection).Doc(token).Delete(ctx); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) MessageRepository {
	return &firestoreMessageRepository{client: client}
}

func (r *firestoreMessageRepository) AddMessage(ctx context.Context, msg domain.Message) (string, error) {
	ref, _, err := r.client.Collection(domain.MessagesCollection).Add(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("add message: %w", err)
	}
	return ref.ID, nil
}

func (r *firestoreMessageRepository) MarkModerated(ctx context.Context, messageID string) error {
	_, err := r.client.Collection(domain.MessagesCollection).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "moderated", Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("mark message %s moderated: %w", messageID, err)
	}
	return nil
}
