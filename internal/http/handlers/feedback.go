package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"videogen/internal/domain"
	"videogen/internal/middleware"
)

type feedbackRequest struct {
	VideoID string     `json:"video_id"`
	Liked   *likedFlag `json:"liked"`
}

// likedFlag accepts a JSON boolean, a number (non-zero is true) or a string
// understood by strconv.ParseBool. null leaves the flag unset.
type likedFlag bool

func (f *likedFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = likedFlag(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("liked: %w", err)
		}
		*f = likedFlag(parsed)
		return nil
	}
	return fmt.Errorf("liked: unsupported value %s", data)
}

func (a *App) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	videoID := strings.TrimSpace(req.VideoID)
	if videoID == "" || req.Liked == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "video_id and liked are required")
		return
	}
	entry := domain.Feedback{
		VideoID:   videoID,
		Liked:     bool(*req.Liked),
		Country:   middleware.CountryFromContext(r.Context()),
		CreatedAt: a.now(),
	}
	if err := a.FeedbackStore.Save(r.Context(), entry); err != nil {
		a.Logger.Error().Err(err).Str("video_id", videoID).Msg("feedback: save failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save feedback")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true, "message": "Feedback saved"})
}
