package dto

import (
	"time"

	"friendlychat-backend/internal/chat/domain"
)

// UserCreatedRequest is the auth user-created event body.
type UserCreatedRequest struct {
	UID         string `json:"uid" binding:"required"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoUrl"`
}

func (r UserCreatedRequest) ToUser() domain.User {
	return domain.User{
		UID:         r.UID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		PhotoURL:    r.PhotoURL,
	}
}

// MessageCreatedRequest is the messages document-created event body.
// Text and ProfilePicURL may be null.
type MessageCreatedRequest struct {
	ID            string     `json:"id" binding:"required"`
	Name          string     `json:"name" binding:"required"`
	Text          *string    `json:"text"`
	ProfilePicURL *string    `json:"profilePicUrl"`
	ImageURL      *string    `json:"imageUrl"`
	Timestamp     *time.Time `json:"timestamp"`
}

func (r MessageCreatedRequest) ToMessage() domain.Message {
	msg := domain.Message{
		ID:            r.ID,
		Name:          r.Name,
		Text:          deref(r.Text),
		ProfilePicURL: deref(r.ProfilePicURL),
		ImageURL:      deref(r.ImageURL),
	}
	if r.Timestamp != nil {
		msg.Timestamp = *r.Timestamp
	}
	return msg
}

// StorageObjectRequest is the object resource carried by storage
// finalize events, both over HTTP and in Pub/Sub notifications.
type StorageObjectRequest struct {
	Bucket      string            `json:"bucket" binding:"required"`
	Name        string            `json:"name" binding:"required"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

func (r StorageObjectRequest) ToObject() domain.StorageObject {
	return domain.StorageObject{
		Bucket:      r.Bucket,
		Name:        r.Name,
		ContentType: r.ContentType,
		Metadata:    r.Metadata,
	}
}

// RegisterTokenRequest registers a device for push notifications.
type RegisterTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
