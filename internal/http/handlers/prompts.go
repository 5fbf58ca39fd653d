package handlers

import (
	"net/http"

	"videogen/internal/prompt"
)

type optimizeRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

func (a *App) OptimizePrompt(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	userPrompt, style := prompt.Normalize(req.Prompt, req.Style)
	if userPrompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "Prompt is required")
		return
	}
	optimized, err := a.Optimizer.Optimize(r.Context(), userPrompt, style)
	if err != nil {
		a.Logger.Error().Err(err).Msg("optimize_prompt: optimizer failed")
		a.error(w, http.StatusInternalServerError, "internal", "optimizer failed")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"optimized_prompt": optimized})
}
