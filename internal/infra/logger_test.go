package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "")
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s, want info", logger.GetLevel())
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("job_id", "j1").Msg("visible")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "visible" || line["job_id"] != "j1" || line["service"] != "videogen" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNewLoggerLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	if got := newLogger(&buf, "development", "warn").GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("level = %s, want warn", got)
	}
	if got := newLogger(&buf, "development", "").GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("level = %s, want debug", got)
	}
	if got := newLogger(&buf, "production", "bogus").GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("level = %s, want info", got)
	}
}
