package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrSessionUnavailable means the browser itself could not be started or attached to.
	ErrSessionUnavailable = errors.New("browser session unavailable")
	// ErrNavigationFailed means the browser was up but the page could not be opened.
	ErrNavigationFailed = errors.New("page navigation failed")
	// ErrRenderTimeout means the page did not finish loading within the render budget.
	ErrRenderTimeout = errors.New("page render timed out")
)
