package domain

import "time"

// FCMToken is a device registration for push notifications. In Firestore the
// token string is the document ID; the Postgres registry stores it as a
// unique column.
type FCMToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"` // Don't expose token in JSON
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FCMToken) TableName() string {
	return "fcm_tokens"
}
