package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	openAIDefaultTimeout = 15 * time.Second
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

var openAIModelCanonical = map[string]string{
	"gpt-3.5-turbo": "gpt-3.5-turbo",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
}

var openAIModelAliases = map[string]string{
	"gpt-3.5":      "gpt-3.5-turbo",
	"gpt3.5":       "gpt-3.5-turbo",
	"gpt-35-turbo": "gpt-3.5-turbo",
	"gpt4o-mini":   "gpt-4o-mini",
	"gpt4omini":    "gpt-4o-mini",
	"gpt4o":        "gpt-4o",
}

type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// Fallback answers when the API is unreachable or replies with something
	// unusable. Defaults to StaticOptimizer.
	Fallback Optimizer
	Logger   zerolog.Logger
}

// OpenAIOptimizer asks a chat completion model to rewrite prompts and falls
// back to another Optimizer on any failure, so callers always get an answer.
type OpenAIOptimizer struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback Optimizer
	logger   zerolog.Logger
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type optimizedPayload struct {
	OptimizedPrompt string `json:"optimized_prompt"`
}

func NewOpenAIOptimizer(opts OpenAIOptions) (*OpenAIOptimizer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model, reason := normalizeOpenAIModel(opts.Model)
	if reason != "" {
		opts.Logger.Warn().
			Str("requested", opts.Model).
			Str("resolved", model).
			Str("reason", reason).
			Msg("prompt: openai model normalized")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticOptimizer()
	}
	return &OpenAIOptimizer{
		apiKey:   strings.TrimSpace(opts.APIKey),
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: fallback,
		logger:   opts.Logger,
	}, nil
}

// Model returns the resolved chat model name.
func (o *OpenAIOptimizer) Model() string { return o.model }

func (o *OpenAIOptimizer) Optimize(ctx context.Context, userPrompt, style string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", nil
	}
	text, err := o.complete(ctx, userPrompt, style)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		o.logger.Warn().Err(err).Str("model", o.model).Msg("prompt: openai optimizer fell back")
		return o.fallback.Optimize(ctx, userPrompt, style)
	}
	return text, nil
}

func (o *OpenAIOptimizer) complete(ctx context.Context, userPrompt, style string) (string, error) {
	payload := openAIChatRequest{
		Model:          o.model,
		Temperature:    0.4,
		ResponseFormat: &openAIFormat{Type: "json_object"},
		Messages: []openAIMessage{
			{Role: "system", Content: "You rewrite prompts for a text-to-video model and only respond with valid JSON."},
			{Role: "user", Content: buildOptimizeInstruction(userPrompt, style)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices")
	}
	parsed, err := parseModelPayload[optimizedPayload](out.Choices[0].Message.Content)
	if err != nil {
		return "", fmt.Errorf("parse payload: %w", err)
	}
	text := strings.TrimSpace(parsed.OptimizedPrompt)
	if text == "" {
		return "", errors.New("empty optimized_prompt")
	}
	return text, nil
}

func buildOptimizeInstruction(userPrompt, style string) string {
	var sb strings.Builder
	sb.WriteString(`Rewrite the prompt below so a text-to-video model produces a vivid, coherent 5 to 8 second clip. `)
	sb.WriteString(`Keep the subject and intent, describe camera motion and lighting, and stay under 80 words. `)
	fmt.Fprintf(&sb, "Target style: %q.", style)
	if preset, ok := Lookup(style); ok {
		fmt.Fprintf(&sb, " Useful cues: %s. Avoid: %s.", preset.Guidance, preset.Negatives)
	}
	fmt.Fprintf(&sb, ` Respond strictly as JSON: {"optimized_prompt":string}. Prompt: %q`, userPrompt)
	return sb.String()
}

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// extractJSONFragment strips markdown fences and any prose around the first
// JSON object in raw.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

var _ Optimizer = (*OpenAIOptimizer)(nil)
