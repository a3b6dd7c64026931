package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
)

// ErrObjectNotExist is returned when the object is gone.
var ErrObjectNotExist = gcs.ErrObjectNotExist

// ObjectInfo is the subset of object attributes moderation reads.
type ObjectInfo struct {
	ContentType string
	Metadata    map[string]string
}

// Bucket moves objects between a Cloud Storage bucket and local files.
type Bucket struct {
	name   string
	handle *gcs.BucketHandle
}

func NewBucket(name string, handle *gcs.BucketHandle) *Bucket {
	return &Bucket{name: name, handle: handle}
}

func (b *Bucket) Name() string {
	return b.name
}

// Attrs loads the content type and custom metadata of object.
func (b *Bucket) Attrs(ctx context.Context, object string) (ObjectInfo, error) {
	attrs, err := b.handle.Object(object).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("attrs gs://%s/%s: %w", b.name, object, err)
	}
	return ObjectInfo{ContentType: attrs.ContentType, Metadata: attrs.Metadata}, nil
}

// Download copies object into the local file dst, creating or truncating it.
func (b *Bucket) Download(ctx context.Context, object, dst string) error {
	r, err := b.handle.Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open gs://%s/%s: %w", b.name, object, err)
	}
	defer r.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("download gs://%s/%s: %w", b.name, object, err)
	}
	return f.Close()
}

// Upload writes the local file src to object, replacing its content and metadata.
func (b *Bucket) Upload(ctx context.Context, src, object, contentType string, metadata map[string]string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	w := b.handle.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", b.name, object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", b.name, object, err)
	}
	return nil
}
