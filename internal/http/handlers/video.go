package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"videogen/internal/domain"
	"videogen/internal/storage"
	"videogen/internal/stream"
)

// Video redirects to the provider-hosted file once a job has succeeded with
// one, and otherwise streams the local placeholder with byte-range support.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	rec, ok, err := a.Jobs.Lookup(r.Context(), jobID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("video: lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if ok && rec.Status == domain.JobStatusSucceeded && rec.UpstreamURL() != "" {
		http.Redirect(w, r, rec.UpstreamURL(), http.StatusTemporaryRedirect)
		return
	}

	f, size, err := a.Media.Open(a.PlaceholderVideo)
	if errors.Is(err, storage.ErrNotExist) {
		a.error(w, http.StatusNotFound, "not_found", "Video missing")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("video: open placeholder failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to open video")
		return
	}
	defer f.Close()

	resp := stream.Serve(f, size, r.Header.Get("Range"))
	if n, err := resp.Send(w, "video/mp4"); err != nil {
		a.Logger.Warn().Err(err).Str("job_id", jobID).Int64("written", n).Msg("video: stream aborted")
	}
}
