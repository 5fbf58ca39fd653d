package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidPrompt    = errors.New("invalid prompt")
	ErrProviderFailure  = errors.New("provider failure")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrInvalidFeedback  = errors.New("invalid feedback")
	ErrStoreUnavailable = errors.New("store unavailable")
)
