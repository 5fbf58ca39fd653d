package jobs

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"videogen/internal/domain"
	"videogen/internal/prompt"
	"videogen/internal/providers/video"
)

// SubmitTimeout bounds one provider submission shared by concurrent callers.
const SubmitTimeout = 2 * time.Minute

// ServedPath is the local URL under which a job's video is served.
func ServedPath(id string) string {
	return "/video/" + url.PathEscape(id)
}

// Cache deduplicates generation requests by prompt hash and tracks job status
// observations made by callers polling the provider.
type Cache struct {
	store    Store
	provider video.Provider
	logger   zerolog.Logger
	inflight singleflight.Group
}

func NewCache(store Store, provider video.Provider, logger zerolog.Logger) *Cache {
	return &Cache{store: store, provider: provider, logger: logger}
}

// Provider returns the backend jobs are submitted to.
func (c *Cache) Provider() video.Provider {
	return c.provider
}

// SubmitOrReuse returns an existing processing or succeeded job for the same
// normalized (prompt, style) pair, or submits a new one. Identical concurrent
// calls share a single provider submission; every caller except the one that
// submitted sees cached == true.
func (c *Cache) SubmitOrReuse(ctx context.Context, userPrompt, style string) (domain.JobRecord, bool, error) {
	userPrompt, style = prompt.Normalize(userPrompt, style)
	if userPrompt == "" {
		return domain.JobRecord{}, false, domain.ErrInvalidPrompt
	}
	hash := Hash(userPrompt, style)

	if rec, ok, err := c.reusable(ctx, hash); err != nil || ok {
		return rec, ok, err
	}

	// The shared submission outlives any single caller: each caller waits
	// on its own context, and the submission only inherits request values.
	var leader bool
	ch := c.inflight.DoChan(hash, func() (any, error) {
		subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SubmitTimeout)
		defer cancel()
		// A submission that finished between the check above and DoChan is
		// already visible in the store.
		if rec, ok, err := c.reusable(subCtx, hash); err != nil || ok {
			return rec, err
		}
		leader = true
		return c.submit(subCtx, userPrompt, style, hash)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return domain.JobRecord{}, false, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return domain.JobRecord{}, false, res.Err
	}
	rec := res.Val.(domain.JobRecord).Clone()
	if !leader {
		rec.Cached = true
	}
	return rec, !leader, nil
}

func (c *Cache) reusable(ctx context.Context, hash string) (domain.JobRecord, bool, error) {
	rec, ok, err := c.store.GetByHash(ctx, hash)
	if err != nil {
		return domain.JobRecord{}, false, err
	}
	if !ok || !rec.Status.Reusable() {
		return domain.JobRecord{}, false, nil
	}
	rec.Cached = true
	return rec, true, nil
}

func (c *Cache) submit(ctx context.Context, userPrompt, style, hash string) (domain.JobRecord, error) {
	job, err := c.provider.Submit(ctx, prompt.Compose(userPrompt, style), video.Options{Style: style})
	if err != nil {
		return domain.JobRecord{}, fmt.Errorf("submit job: %w", err)
	}
	status := job.Status
	if status == "" {
		status = domain.JobStatusProcessing
	}
	rec := domain.JobRecord{
		ID:         job.ID,
		Status:     status,
		Provider:   c.provider.Name(),
		PromptHash: hash,
		Meta:       map[string]string{},
	}
	if err := c.store.Put(ctx, rec); err != nil {
		return domain.JobRecord{}, fmt.Errorf("store job: %w", err)
	}
	c.logger.Info().
		Str("job_id", rec.ID).
		Str("prompt_hash", hash).
		Str("style", style).
		Str("provider", rec.Provider).
		Msg("jobs: submitted")
	return rec, nil
}

// RecordStatus applies a status observation to a known job. The first
// succeeded observation assigns the served path and remembers the upstream
// URL; later observations leave both untouched.
func (c *Cache) RecordStatus(ctx context.Context, id string, status domain.JobStatus, upstreamURL, errMsg string) (domain.JobRecord, bool, error) {
	return c.store.Update(ctx, id, func(rec *domain.JobRecord) {
		rec.Status = status
		if rec.Meta == nil {
			rec.Meta = map[string]string{}
		}
		if status == domain.JobStatusSucceeded && rec.VideoPath == "" {
			rec.VideoPath = ServedPath(id)
			if upstreamURL != "" {
				rec.Meta[domain.MetaUpstreamOutputURL] = upstreamURL
			}
		}
		if errMsg != "" {
			rec.Meta[domain.MetaError] = errMsg
		} else {
			delete(rec.Meta, domain.MetaError)
		}
	})
}

// Refresh polls the provider for a known job and records the result.
// Unknown IDs are reported as a miss without contacting the provider.
func (c *Cache) Refresh(ctx context.Context, id string) (domain.JobRecord, bool, error) {
	if _, ok, err := c.store.GetByID(ctx, id); err != nil || !ok {
		return domain.JobRecord{}, false, err
	}
	job, err := c.provider.Fetch(ctx, id)
	if err != nil {
		return domain.JobRecord{}, true, fmt.Errorf("fetch job: %w", err)
	}
	rec, ok, err := c.RecordStatus(ctx, id, job.Status, job.VideoURL, job.Error)
	if err != nil {
		return domain.JobRecord{}, ok, err
	}
	c.logger.Debug().Str("job_id", id).Str("status", string(rec.Status)).Msg("jobs: refreshed")
	return rec, ok, nil
}

// Lookup returns the record for id, if any.
func (c *Cache) Lookup(ctx context.Context, id string) (domain.JobRecord, bool, error) {
	return c.store.GetByID(ctx, id)
}
