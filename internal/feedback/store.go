package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"videogen/internal/domain"
)

// Store persists feedback entries.
type Store interface {
	Save(ctx context.Context, entry domain.Feedback) error
}

// Appender is the slice of storage.FileStore used by FileStore.
type Appender interface {
	Append(ctx context.Context, key string, data []byte) error
}

// FileStore appends one human-readable line per entry:
//
//	2025-08-23 12:10:00 | video_id=abc123 | liked=true
type FileStore struct {
	files Appender
	key   string
}

func NewFileStore(files Appender, key string) *FileStore {
	return &FileStore{files: files, key: key}
}

func (s *FileStore) Save(ctx context.Context, entry domain.Feedback) error {
	if err := validate(entry); err != nil {
		return err
	}
	if err := s.files.Append(ctx, s.key, []byte(FormatLine(entry))); err != nil {
		return fmt.Errorf("feedback: append: %w", err)
	}
	return nil
}

// FormatLine renders entry in the feedback log format, newline included.
func FormatLine(entry domain.Feedback) string {
	var b strings.Builder
	b.WriteString(entry.CreatedAt.Format(time.DateTime))
	b.WriteString(" | video_id=")
	b.WriteString(entry.VideoID)
	fmt.Fprintf(&b, " | liked=%t", entry.Liked)
	if entry.Country != "" {
		b.WriteString(" | country=")
		b.WriteString(entry.Country)
	}
	b.WriteByte('\n')
	return b.String()
}

// Execer is satisfied by *pgxpool.Pool and *pgx.Conn.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const insertFeedbackSQL = `
INSERT INTO video_feedback (video_id, liked, country, created_at)
VALUES ($1, $2, NULLIF($3, ''), $4);
`

// CreateTableSQL is the schema expected by PostgresStore.
const CreateTableSQL = `
CREATE TABLE IF NOT EXISTS video_feedback (
    id         BIGSERIAL PRIMARY KEY,
    video_id   TEXT        NOT NULL,
    liked      BOOLEAN     NOT NULL,
    country    TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore writes entries to the video_feedback table.
type PostgresStore struct {
	db Execer
}

func NewPostgresStore(db Execer) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the feedback table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, CreateTableSQL); err != nil {
		return fmt.Errorf("feedback: migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, entry domain.Feedback) error {
	if err := validate(entry); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, insertFeedbackSQL, entry.VideoID, entry.Liked, entry.Country, entry.CreatedAt); err != nil {
		return fmt.Errorf("feedback: insert: %w", err)
	}
	return nil
}

func validate(entry domain.Feedback) error {
	if strings.TrimSpace(entry.VideoID) == "" {
		return fmt.Errorf("%w: video_id required", domain.ErrInvalidFeedback)
	}
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
