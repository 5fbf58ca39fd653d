package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "placeholder.mp4", want: "placeholder.mp4"},
		{key: "/videos/a.mp4", want: "videos/a.mp4"},
		{key: "./videos/../b.mp4", want: "b.mp4"},
		{key: `videos\c.mp4`, want: "videos/c.mp4"},
		{key: "", wantErr: true},
		{key: "..", wantErr: true},
		{key: "../etc/passwd", wantErr: true},
		{key: "a/../../etc", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.key)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) expected error, got %q", tc.key, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("sanitizeKey(%q) unexpected error: %v", tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestFileStoreOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	f, size, err := store.Open("clip.mp4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	if size != 10 {
		t.Fatalf("size = %d, want 10", size)
	}
	data, _ := io.ReadAll(f)
	if string(data) != "0123456789" {
		t.Fatalf("data = %q", data)
	}

	if _, _, err := store.Open("missing.mp4"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Open(missing) err = %v, want ErrNotExist", err)
	}
	if _, _, err := store.Open("../clip.mp4"); err == nil {
		t.Fatalf("Open(traversal) expected error")
	}
}

func TestFileStoreAppend(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	if err := store.Append(ctx, "logs/feedback.txt", []byte("one\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, "logs/feedback.txt", []byte("two\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "logs", "feedback.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "one\ntwo\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatalf("expected error for empty base path")
	}
}
