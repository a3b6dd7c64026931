package domain

import "strings"

// BlurredMetadataKey marks objects that were rewritten by moderation.
const BlurredMetadataKey = "blurred"

// StorageObject describes a finalized Cloud Storage object.
type StorageObject struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (o StorageObject) IsImage() bool {
	return strings.HasPrefix(o.ContentType, "image/")
}

func (o StorageObject) Blurred() bool {
	return o.Metadata[BlurredMetadataKey] == "true"
}

// MessageID extracts the message ID from an upload path of the form
// <uid>/<messageId>/<fileName>.
func (o StorageObject) MessageID() (string, bool) {
	parts := strings.Split(o.Name, "/")
	if len(parts) < 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GCSURI is the gs:// address of the object.
func (o StorageObject) GCSURI() string {
	return "gs://" + o.Bucket + "/" + o.Name
}
