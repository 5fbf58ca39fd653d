package video

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"videogen/internal/domain"
)

// Options carries per-request generation hints.
type Options struct {
	Style string
}

// Job is a provider's view of a generation request.
type Job struct {
	ID       string
	Status   domain.JobStatus
	VideoURL string
	Error    string
}

// Provider is the capability every text-to-video backend implements.
type Provider interface {
	Name() string
	Submit(ctx context.Context, prompt string, opts Options) (*Job, error)
	Fetch(ctx context.Context, id string) (*Job, error)
}

// Config selects and configures a provider.
type Config struct {
	Name           string
	ReplicateToken string
	ReplicateModel string
	ReplicateURL   string
	MockReadyAfter int
	Logger         *zerolog.Logger
}

// New builds the provider named in cfg. Unknown names fall back to Replicate.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case MockName:
		return NewMock(cfg.MockReadyAfter), nil
	case ReplicateName, "":
		return NewReplicate(ReplicateOptions{
			APIToken: cfg.ReplicateToken,
			Model:    cfg.ReplicateModel,
			BaseURL:  cfg.ReplicateURL,
			Logger:   cfg.Logger,
		})
	default:
		if cfg.Logger != nil {
			cfg.Logger.Warn().Str("provider", cfg.Name).Msg("video: unknown provider; using replicate")
		}
		return NewReplicate(ReplicateOptions{
			APIToken: cfg.ReplicateToken,
			Model:    cfg.ReplicateModel,
			BaseURL:  cfg.ReplicateURL,
			Logger:   cfg.Logger,
		})
	}
}
