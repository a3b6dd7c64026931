package domain

import "time"

// Collection names in Firestore.
const (
	MessagesCollection = "messages"
	TokensCollection   = "fcmTokens"
)

// Message is a chat message document in the messages collection.
// Text and ProfilePicURL are empty when absent.
type Message struct {
	ID            string    `json:"id,omitempty" firestore:"-"`
	Name          string    `json:"name" firestore:"name"`
	Text          string    `json:"text,omitempty" firestore:"text,omitempty"`
	ProfilePicURL string    `json:"profilePicUrl,omitempty" firestore:"profilePicUrl,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Timestamp     time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	Moderated     bool      `json:"moderated,omitempty" firestore:"moderated,omitempty"`
}

// HasText reports whether the message carries text rather than only an image.
func (m Message) HasText() bool {
	return m.Text != ""
}
