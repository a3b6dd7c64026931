package listener

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"friendlychat-backend/internal/chat/domain"
	moderationUsecase "friendlychat-backend/internal/moderation/usecase"
	"friendlychat-backend/pkg/storage"
)

type fakeModeration struct {
	objects []domain.StorageObject
	err     error
}

func (f *fakeModeration) OnImageUploaded(ctx context.Context, obj domain.StorageObject) (moderationUsecase.Outcome, error) {
	f.objects = append(f.objects, obj)
	return moderationUsecase.OutcomeClean, f.err
}

type fakeObjects struct {
	bucket  string
	objects map[string]storage.ObjectInfo
	err     error
	calls   []string
}

func (f *fakeObjects) Name() string { return f.bucket }

func (f *fakeObjects) Attrs(ctx context.Context, object string) (storage.ObjectInfo, error) {
	f.calls = append(f.calls, object)
	if f.err != nil {
		return storage.ObjectInfo{}, f.err
	}
	info, ok := f.objects[object]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("attrs gs://%s/%s: %w", f.bucket, object, storage.ErrObjectNotExist)
	}
	return info, nil
}

func TestHandleMessageFinalize(t *testing.T) {
	mod := &fakeModeration{}
	objs := &fakeObjects{bucket: "b"}
	l := NewStorageListener(nil, "uploads-sub", mod, objs)

	attrs := map[string]string{"eventType": "OBJECT_FINALIZE", "payloadFormat": "JSON_API_V1", "bucketId": "b", "objectId": "u1/m1/cat.jpg"}
	data := []byte(`{"bucket":"b","name":"u1/m1/cat.jpg","contentType":"image/jpeg","metadata":{"blurred":"true"}}`)
	if err := l.handleMessage(context.Background(), attrs, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.objects) != 1 {
		t.Fatalf("expected one moderation call, got %d", len(mod.objects))
	}
	obj := mod.objects[0]
	if obj.ContentType != "image/jpeg" || !obj.Blurred() {
		t.Fatalf("object resource not decoded: %+v", obj)
	}
	if len(objs.calls) != 0 {
		t.Fatalf("attributes must not be fetched when the payload has them, got %v", objs.calls)
	}
}

func TestHandleMessageAttributesOnly(t *testing.T) {
	mod := &fakeModeration{}
	objs := &fakeObjects{bucket: "b", objects: map[string]storage.ObjectInfo{
		"u1/m1/cat.jpg":  {ContentType: "image/jpeg"},
		"u1/m2/blur.jpg": {ContentType: "image/jpeg", Metadata: map[string]string{"blurred": "true"}},
	}}
	l := NewStorageListener(nil, "uploads-sub", mod, objs)

	for _, name := range []string{"u1/m1/cat.jpg", "u1/m2/blur.jpg"} {
		attrs := map[string]string{"eventType": "OBJECT_FINALIZE", "payloadFormat": "NONE", "bucketId": "b", "objectId": name}
		if err := l.handleMessage(context.Background(), attrs, nil); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}
	if len(mod.objects) != 2 {
		t.Fatalf("expected two moderation calls, got %d", len(mod.objects))
	}
	first := mod.objects[0]
	if first.Bucket != "b" || first.Name != "u1/m1/cat.jpg" {
		t.Fatalf("unexpected object %+v", first)
	}
	if !first.IsImage() || first.Blurred() {
		t.Fatalf("expected an unblurred image from loaded attributes, got %+v", first)
	}
	if second := mod.objects[1]; !second.IsImage() || !second.Blurred() {
		t.Fatalf("expected blurred metadata from loaded attributes, got %+v", second)
	}
}

func TestHandleMessageAttributesOnlyOtherBucket(t *testing.T) {
	mod := &fakeModeration{}
	objs := &fakeObjects{bucket: "b"}
	l := NewStorageListener(nil, "uploads-sub", mod, objs)

	attrs := map[string]string{"eventType": "OBJECT_FINALIZE", "payloadFormat": "NONE", "bucketId": "other", "objectId": "cat.jpg"}
	if err := l.handleMessage(context.Background(), attrs, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs.calls) != 0 {
		t.Fatalf("foreign bucket must not be read, got %v", objs.calls)
	}
	if len(mod.objects) != 1 || mod.objects[0].Bucket != "other" {
		t.Fatalf("expected moderation to see the foreign object, got %+v", mod.objects)
	}
}

func TestHandleMessageObjectGone(t *testing.T) {
	mod := &fakeModeration{}
	l := NewStorageListener(nil, "uploads-sub", mod, &fakeObjects{bucket: "b"})

	attrs := map[string]string{"eventType": "OBJECT_FINALIZE", "payloadFormat": "NONE", "bucketId": "b", "objectId": "u1/m1/gone.jpg"}
	if err := l.handleMessage(context.Background(), attrs, nil); err != nil {
		t.Fatalf("deleted object must be acked, got %v", err)
	}
	if len(mod.objects) != 0 {
		t.Fatalf("expected no moderation calls, got %d", len(mod.objects))
	}
}

func TestHandleMessageAttrsError(t *testing.T) {
	mod := &fakeModeration{}
	l := NewStorageListener(nil, "uploads-sub", mod, &fakeObjects{bucket: "b", err: errors.New("storage unavailable")})

	attrs := map[string]string{"eventType": "OBJECT_FINALIZE", "payloadFormat": "NONE", "bucketId": "b", "objectId": "u1/m1/cat.jpg"}
	if err := l.handleMessage(context.Background(), attrs, nil); err == nil {
		t.Fatal("expected error so the message is nacked")
	}
	if len(mod.objects) != 0 {
		t.Fatalf("expected no moderation calls, got %d", len(mod.objects))
	}
}

func TestHandleMessageIgnoresOtherEvents(t *testing.T) {
	mod := &fakeModeration{}
	l := NewStorageListener(nil, "uploads-sub", mod, nil)

	for _, attrs := range []map[string]string{
		{"eventType": "OBJECT_DELETE", "bucketId": "b", "objectId": "o"},
		{"eventType": "OBJECT_FINALIZE", "payloadFormat": "JSON_API_V1"},
	} {
		if err := l.handleMessage(context.Background(), attrs, []byte(`{}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := l.handleMessage(context.Background(), map[string]string{"eventType": "OBJECT_FINALIZE"}, []byte(`garbage`)); err != nil {
		t.Fatalf("malformed payload must be acked, got %v", err)
	}
	if len(mod.objects) != 0 {
		t.Fatalf("expected no moderation calls, got %d", len(mod.objects))
	}
}

func TestHandleMessageModerationError(t *testing.T) {
	l := NewStorageListener(nil, "uploads-sub", &fakeModeration{err: errors.New("vision quota")}, nil)
	attrs := map[string]string{"eventType": "OBJECT_FINALIZE", "bucketId": "b", "objectId": "o.jpg"}
	if err := l.handleMessage(context.Background(), attrs, nil); err == nil {
		t.Fatal("expected error so the message is nacked")
	}
}
