package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"videogen/internal/feedback"
	"videogen/internal/jobs"
	"videogen/internal/prompt"
	"videogen/internal/storage"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// App carries the dependencies shared by all HTTP handlers.
type App struct {
	Jobs             *jobs.Cache
	Media            *storage.FileStore
	FeedbackStore    feedback.Store
	Optimizer        prompt.Optimizer
	PlaceholderVideo string
	Logger           zerolog.Logger
	Now              func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func (a *App) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
