package domain

import "testing"

func TestStorageObjectMessageID(t *testing.T) {
	cases := []struct {
		name   string
		wantID string
		wantOK bool
	}{
		{"u1/m42/cat.jpg", "m42", true},
		{"u1/m42/nested/cat.jpg", "m42", true},
		{"u1/cat.jpg", "", false},
		{"cat.jpg", "", false},
		{"u1//cat.jpg", "", false},
	}
	for _, tc := range cases {
		id, ok := StorageObject{Name: tc.name}.MessageID()
		if id != tc.wantID || ok != tc.wantOK {
			t.Fatalf("%s: got (%q, %v), want (%q, %v)", tc.name, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestStorageObjectFlags(t *testing.T) {
	obj := StorageObject{Bucket: "b", Name: "u/m/f.png", ContentType: "image/png"}
	if !obj.IsImage() || obj.Blurred() {
		t.Fatalf("unexpected flags for %+v", obj)
	}
	if obj.GCSURI() != "gs://b/u/m/f.png" {
		t.Fatalf("unexpected uri %s", obj.GCSURI())
	}
	obj.Metadata = map[string]string{BlurredMetadataKey: "true"}
	if !obj.Blurred() {
		t.Fatal("expected blurred marker to be read")
	}
	if (StorageObject{ContentType: "video/mp4"}).IsImage() {
		t.Fatal("video is not an image")
	}
}

func TestMessageHasText(t *testing.T) {
	if (Message{Name: "Bo"}).HasText() {
		t.Fatal("empty text is an image message")
	}
	if !(Message{Name: "Ann", Text: "hi"}).HasText() {
		t.Fatal("text message not detected")
	}
}
