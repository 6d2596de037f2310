package storage

import (
	"strings"
	"testing"
)

func TestPublicURLParseRoundTrip(t *testing.T) {
	base := "https://files.example.edu"
	bucket := "assignment-submissions"
	key := "a1b2/3f9d0c2e.pdf"

	url := PublicURL(base, bucket, key)
	want := "https://files.example.edu/storage/v1/object/public/assignment-submissions/a1b2/3f9d0c2e.pdf"
	if url != want {
		t.Fatalf("PublicURL = %q, want %q", url, want)
	}

	gotBucket, gotKey, err := ParsePublicURL(url)
	if err != nil {
		t.Fatalf("ParsePublicURL: %v", err)
	}
	if gotBucket != bucket {
		t.Errorf("bucket = %q, want %q", gotBucket, bucket)
	}
	if gotKey != key {
		t.Errorf("key = %q, want %q", gotKey, key)
	}
}

func TestParsePublicURLRejectsForeignURLs(t *testing.T) {
	bad := []string{
		"https://example.com/files/report.pdf",
		"https://files.example.edu/storage/v1/object/private/bucket/key",
		"https://files.example.edu/storage/v1/object/public/onlybucket",
		"https://files.example.edu/storage/v1/object/public//key",
		"",
	}

	for _, url := range bad {
		if _, _, err := ParsePublicURL(url); err == nil {
			t.Errorf("ParsePublicURL(%q): expected error", url)
		}
	}
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("assignment-42", "Final Report.PDF")

	if !strings.HasPrefix(key, "assignment-42/") {
		t.Errorf("key %q missing folder prefix", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("key %q should keep a lowercased extension", key)
	}

	// Keys are random; two calls must not collide.
	if key == GenerateKey("assignment-42", "Final Report.PDF") {
		t.Error("two generated keys are identical")
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"report.pdf":  "application/pdf",
		"notes.TXT":   "text/plain",
		"photo.jpeg":  "image/jpeg",
		"archive.zip": "application/zip",
		"unknown.xyz": "application/octet-stream",
	}

	for filename, want := range cases {
		if got := ContentType(filename); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", filename, got, want)
		}
	}
}
