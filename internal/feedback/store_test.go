package feedback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"videogen/internal/domain"
	"videogen/internal/storage"
)

func TestFormatLine(t *testing.T) {
	at := time.Date(2025, 8, 23, 12, 10, 5, 0, time.UTC)
	tests := []struct {
		name  string
		entry domain.Feedback
		want  string
	}{
		{
			name:  "liked",
			entry: domain.Feedback{VideoID: "abc123", Liked: true, CreatedAt: at},
			want:  "2025-08-23 12:10:05 | video_id=abc123 | liked=true\n",
		},
		{
			name:  "disliked with country",
			entry: domain.Feedback{VideoID: "abc123", Liked: false, Country: "ID", CreatedAt: at},
			want:  "2025-08-23 12:10:05 | video_id=abc123 | liked=false | country=ID\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatLine(tc.entry); got != tc.want {
				t.Fatalf("FormatLine() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFileStoreSave(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	store := NewFileStore(files, "user_feedback.txt")
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := context.Background()
	if err := store.Save(ctx, domain.Feedback{VideoID: "v1", Liked: true, CreatedAt: at}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, domain.Feedback{VideoID: "v2", Liked: false, CreatedAt: at}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "user_feedback.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "2025-01-02 03:04:05 | video_id=v1 | liked=true\n2025-01-02 03:04:05 | video_id=v2 | liked=false\n"
	if string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
}

func TestFileStoreRejectsMissingVideoID(t *testing.T) {
	store := NewFileStore(nil, "x")
	if err := store.Save(context.Background(), domain.Feedback{}); !errors.Is(err, domain.ErrInvalidFeedback) {
		t.Fatalf("err = %v, want ErrInvalidFeedback", err)
	}
}

type stubExecer struct {
	sql  []string
	args [][]any
	err  error
}

func (s *stubExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.sql = append(s.sql, sql)
	s.args = append(s.args, args)
	return pgconn.CommandTag{}, s.err
}

func TestPostgresStoreSave(t *testing.T) {
	db := &stubExecer{}
	store := NewPostgresStore(db)
	at := time.Now()
	if err := store.Save(context.Background(), domain.Feedback{VideoID: "v1", Liked: true, Country: "SG", CreatedAt: at}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(db.args) != 1 {
		t.Fatalf("exec calls = %d, want 1", len(db.args))
	}
	args := db.args[0]
	if args[0] != "v1" || args[1] != true || args[2] != "SG" || args[3] != at {
		t.Fatalf("args = %#v", args)
	}
}

func TestPostgresStoreWrapsError(t *testing.T) {
	boom := errors.New("connection refused")
	store := NewPostgresStore(&stubExecer{err: boom})
	err := store.Save(context.Background(), domain.Feedback{VideoID: "v1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if err := store.Migrate(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Migrate err = %v", err)
	}
}
