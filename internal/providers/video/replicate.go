package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"videogen/internal/domain"
)

const (
	ReplicateName = "replicate"

	defaultReplicateBaseURL = "https://api.replicate.com/v1"
	defaultReplicateModel   = "pixverse/pixverse-v5"
)

// ReplicateOptions controls how the Replicate client is configured.
type ReplicateOptions struct {
	APIToken   string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Replicate submits predictions to Replicate's hosted text-to-video models
// and polls them by prediction ID.
type Replicate struct {
	apiToken   string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

type replicatePredictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   map[string]any `json:"input"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
}

type replicateErrorResponse struct {
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// errPredictionNotFound marks a 404 from the predictions endpoint.
var errPredictionNotFound = errors.New("replicate: prediction not found")

func NewReplicate(opts ReplicateOptions) (*Replicate, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultReplicateBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultReplicateModel
	}

	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	token := strings.TrimSpace(opts.APIToken)
	if token == "" {
		logger.Warn().Msg("replicate: no API token configured; requests will be rejected upstream")
	}

	return &Replicate{
		apiToken:   token,
		model:      model,
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

func (r *Replicate) Name() string { return ReplicateName }

// Model returns the configured model reference.
func (r *Replicate) Model() string { return r.model }

func (r *Replicate) Submit(ctx context.Context, prompt string, opts Options) (*Job, error) {
	input := map[string]any{
		"prompt":       prompt,
		"aspect_ratio": "16:9",
		"duration":     5,
	}
	for k, v := range styleOverrides(opts.Style) {
		input[k] = v
	}

	path, payload := r.predictionTarget(input)
	var pred replicatePrediction
	if err := r.invoke(ctx, http.MethodPost, path, payload, &pred); err != nil {
		r.logger.Error().Err(err).Str("model", r.model).Msg("replicate: submit failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if pred.ID == "" {
		return nil, fmt.Errorf("%w: replicate returned no prediction id", domain.ErrProviderFailure)
	}

	r.logger.Info().Str("prediction_id", pred.ID).Str("model", r.model).Msg("replicate: created prediction")
	return &Job{ID: pred.ID, Status: domain.JobStatusProcessing}, nil
}

func (r *Replicate) Fetch(ctx context.Context, id string) (*Job, error) {
	var pred replicatePrediction
	err := r.invoke(ctx, http.MethodGet, "/predictions/"+url.PathEscape(id), nil, &pred)
	if errors.Is(err, errPredictionNotFound) {
		return &Job{ID: id, Status: domain.JobStatusNotFound, Error: "Unknown job"}, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("prediction_id", id).Msg("replicate: fetch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	status := mapReplicateStatus(pred.Status)
	job := &Job{ID: id, Status: status}
	switch status {
	case domain.JobStatusSucceeded:
		job.VideoURL = firstOutputURL(pred.Output)
	case domain.JobStatusFailed:
		job.Error = predictionError(pred.Error)
	}
	return job, nil
}

// predictionTarget chooses between the model endpoint ("owner/name") and the
// generic predictions endpoint for pinned versions ("owner/name:version").
func (r *Replicate) predictionTarget(input map[string]any) (string, replicatePredictionRequest) {
	if idx := strings.Index(r.model, ":"); idx >= 0 {
		return "/predictions", replicatePredictionRequest{Version: r.model[idx+1:], Input: input}
	}
	owner, name, _ := strings.Cut(r.model, "/")
	return fmt.Sprintf("/models/%s/%s/predictions", url.PathEscape(owner), url.PathEscape(name)), replicatePredictionRequest{Input: input}
}

func (r *Replicate) invoke(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if r.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiToken)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke replicate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errPredictionNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr replicateErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Detail != "" {
			return fmt.Errorf("replicate status %d: %s", resp.StatusCode, apiErr.Detail)
		}
		if msg := strings.TrimSpace(string(data)); msg != "" {
			return fmt.Errorf("replicate status %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("replicate status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode replicate response: %w", err)
	}
	return nil
}

func mapReplicateStatus(status string) domain.JobStatus {
	switch status {
	case "succeeded":
		return domain.JobStatusSucceeded
	case "failed", "canceled":
		return domain.JobStatusFailed
	default:
		return domain.JobStatusProcessing
	}
}

func styleOverrides(style string) map[string]any {
	switch strings.ToLower(style) {
	case "cinematic":
		return map[string]any{"duration": 8, "aspect_ratio": "16:9"}
	case "anime":
		return map[string]any{"duration": 5, "aspect_ratio": "16:9"}
	case "product":
		return map[string]any{"duration": 5, "aspect_ratio": "1:1"}
	}
	return nil
}

// firstOutputURL accepts a bare URL string or a list of URLs.
func firstOutputURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func predictionError(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "Generation failed"
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return msg
	}
	return strings.TrimSpace(string(raw))
}

var _ Provider = (*Replicate)(nil)
