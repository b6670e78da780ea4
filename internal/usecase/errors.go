package usecase

import "errors"

var (
	ErrCycleInProgress = errors.New("a batch cycle is already running")
	ErrStageFailed     = errors.New("extraction stage failed")
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrInvalidAPIKey   = errors.New("invalid or expired API key")
	ErrNoURLs          = errors.New("no URLs provided")
)
