package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"friendlychat-backend/internal/chat/domain"
)

// OpenPostgres connects to dsn and migrates the token table.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&domain.FCMToken{}); err != nil {
		return nil, fmt.Errorf("migrate fcm_tokens: %w", err)
	}
	return db, nil
}

type gormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository is the Postgres-backed token registry.
func NewGormTokenRepository(db *gorm.DB) TokenRepository {
	return &gormTokenRepository{db: db}
}

// SaveToken registers a token (atomic upsert)
func (r *gormTokenRepository) SaveToken(ctx context.Context, token string) error {
	now := time.Now()
	row := &domain.FCMToken{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// INSERT ... ON CONFLICT (token) DO UPDATE
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *gormTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).Model(&domain.FCMToken{}).Pluck("token", &tokens).Error; err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return tokens, nil
}

func (r *gormTokenRepository) DeleteToken(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.FCMToken{}).Error; err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
