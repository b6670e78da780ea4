package repository

import (
	"context"
	"time"
)

// APIKeyRepository stores issued API keys with a sliding expiry.
type APIKeyRepository interface {
	// Save stores key for ttl.
	Save(ctx context.Context, key string, ttl time.Duration) error
	// Touch reports whether key is live and, if so, pushes its expiry out by ttl.
	Touch(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
