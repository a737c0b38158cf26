package local

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	body := "<html>odluka</html>"
	if err := store.Save(ctx, "theses/7/thesis_approval.html", "text/html; charset=utf-8", strings.NewReader(body)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rc, err := store.Open(ctx, "theses/7/thesis_approval.html")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != body {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestSaveOverwritesExistingObject(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	if err := store.Save(ctx, "theses/7/a.html", "text/html", strings.NewReader("v1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "theses/7/a.html", "text/html", strings.NewReader("v2")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rc, err := store.Open(ctx, "theses/7/a.html")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "v2" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestSaveRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	for _, key := range []string{"../outside.html", "/etc/passwd", ".", ""} {
		if err := store.Save(ctx, key, "text/html", strings.NewReader("x")); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}
