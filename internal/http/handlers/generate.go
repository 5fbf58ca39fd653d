package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"videogen/internal/domain"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type generateResponse struct {
	JobID    string           `json:"job_id"`
	Status   domain.JobStatus `json:"status"`
	VideoURL *string          `json:"video_url,omitempty"`
	Cached   bool             `json:"cached"`
}

type statusResponse struct {
	JobID    string           `json:"job_id"`
	Status   domain.JobStatus `json:"status"`
	VideoURL *string          `json:"video_url"`
	Cached   bool             `json:"cached"`
}

type statusErrorResponse struct {
	JobID  string           `json:"job_id"`
	Status domain.JobStatus `json:"status"`
	Error  string           `json:"error"`
}

// Generate submits a prompt or returns the job already tracking it.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	rec, cached, err := a.Jobs.SubmitOrReuse(r.Context(), req.Prompt, req.Style)
	switch {
	case errors.Is(err, domain.ErrInvalidPrompt):
		a.error(w, http.StatusBadRequest, "bad_request", "Prompt is required")
		return
	case err != nil:
		a.Logger.Error().Err(err).Msg("generate: submit failed")
		a.error(w, http.StatusBadGateway, "provider_error", "video provider rejected the request")
		return
	}
	resp := generateResponse{JobID: rec.ID, Status: rec.Status, Cached: cached}
	if cached {
		resp.VideoURL = nullable(rec.VideoPath)
	}
	a.json(w, http.StatusOK, resp)
}

// Status polls the provider for a tracked job and reports its state.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	rec, ok, err := a.Jobs.Refresh(r.Context(), jobID)
	if err != nil {
		if !ok {
			a.Logger.Error().Err(err).Str("job_id", jobID).Msg("status: lookup failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
			return
		}
		a.Logger.Warn().Err(err).Str("job_id", jobID).Msg("status: provider fetch failed")
		a.error(w, http.StatusBadGateway, "provider_error", "failed to fetch job status")
		return
	}
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if msg := rec.Meta[domain.MetaError]; msg != "" {
		a.json(w, http.StatusOK, statusErrorResponse{JobID: rec.ID, Status: domain.JobStatusFailed, Error: msg})
		return
	}
	a.json(w, http.StatusOK, statusResponse{
		JobID:    rec.ID,
		Status:   rec.Status,
		VideoURL: nullable(rec.VideoPath),
		Cached:   rec.Cached,
	})
}
