// Package behavioral renders pages in a headless browser and runs DOM and script
// heuristics over the result.
package behavioral

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrBrowserUnavailable is returned when no URL in a batch could get a browser session.
var ErrBrowserUnavailable = errors.New("behavioral: browser unavailable for the whole batch")

// Extractor is the stage-3 feature producer.
type Extractor struct {
	renderer repository.PageRenderer
	retries  int
	workers  int
	logger   *zap.Logger
}

// New builds a behavioral extractor. retries is how many extra attempts a URL gets
// when the browser session cannot be established.
func New(renderer repository.PageRenderer, retries, workers int, logger *zap.Logger) *Extractor {
	if retries < 0 {
		retries = 0
	}
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		renderer: renderer,
		retries:  retries,
		workers:  workers,
		logger:   logger.Named("behavioral"),
	}
}

type outcome int

const (
	outcomeRow outcome = iota
	outcomeOmitted
)

// Extract renders each URL and runs every detector on it. A render timeout yields a
// sentinel row; a URL whose session never comes up is left out of the record.
func (e *Extractor) Extract(ctx context.Context, urls []string) (*entity.StageRecord, error) {
	rows := make([]entity.Features, len(urls))
	results := make([]outcome, len(urls))

	var mu sync.Mutex
	sessionFailures := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, u := range urls {
		g.Go(func() error {
			row, err := e.extractOne(gctx, u)
			if err != nil {
				results[i] = outcomeOmitted
				if errors.Is(err, repository.ErrSessionUnavailable) {
					mu.Lock()
					sessionFailures++
					mu.Unlock()
				}
				e.logger.Warn("omitting url from behavioral stage", zap.String("url", u), zap.Error(err))
				return nil
			}
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(urls) > 0 && sessionFailures == len(urls) {
		return nil, ErrBrowserUnavailable
	}

	rec := entity.NewStageRecord(len(urls))
	for i, u := range urls {
		if results[i] == outcomeRow {
			rec.Set(u, rows[i])
		}
	}
	return rec, nil
}

// extractOne renders url with bounded retries and scores the result.
func (e *Extractor) extractOne(ctx context.Context, url string) (entity.Features, error) {
	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		rendered, err := e.renderer.Render(ctx, url)
		switch {
		case err == nil:
			return e.Analyze(url, rendered)
		case errors.Is(err, repository.ErrRenderTimeout):
			e.logger.Info("render timed out, using sentinel row", zap.String("url", url))
			return SentinelRow(), nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		}
		lastErr = err
		e.logger.Debug("render attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, fmt.Errorf("render %s after %d attempts: %w", url, e.retries+1, lastErr)
}

// Analyze runs every detector against an already rendered page.
func (e *Extractor) Analyze(url string, rendered *entity.RenderedPage) (entity.Features, error) {
	p, err := newPage(url, rendered)
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}

	row := make(entity.Features, len(Columns()))
	for _, d := range detectors {
		for k, v := range runDetector(d, p, e.logger) {
			row[k] = v
		}
	}
	return row, nil
}

// SentinelRow marks every behavioral column as unavailable.
func SentinelRow() entity.Features {
	cols := Columns()
	row := make(entity.Features, len(cols))
	for _, c := range cols {
		row[c] = -1
	}
	return row
}
