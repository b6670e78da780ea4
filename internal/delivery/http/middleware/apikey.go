package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/user/phishguard/internal/delivery/http/response"
	"github.com/user/phishguard/internal/usecase"
	"go.uber.org/zap"
)

const APIKeyHeader = "X-API-KEY"

// Authenticator validates an API key and refreshes its lifetime.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) error
}

// APIKey rejects requests without a live key in the X-API-KEY header.
func APIKey(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := auth.Authenticate(r.Context(), r.Header.Get(APIKeyHeader))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, usecase.ErrMissingAPIKey), errors.Is(err, usecase.ErrInvalidAPIKey):
				_ = response.Error(w, http.StatusUnauthorized, err.Error())
			default:
				logger.Error("api key check failed", zap.Error(err))
				_ = response.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		})
	}
}
