package repository

import (
	"context"

	"github.com/user/phishguard/internal/entity"
)

// PageRenderer loads a page in a real browser and returns the realized DOM.
type PageRenderer interface {
	// Render returns ErrRenderTimeout when the page load exceeds its budget,
	// ErrNavigationFailed when the page cannot be opened and ErrSessionUnavailable
	// when no browser session could be established.
	Render(ctx context.Context, url string) (*entity.RenderedPage, error)
}
