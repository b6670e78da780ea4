package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
)

type extractFunc func(ctx context.Context, urls []string) (*entity.StageRecord, error)

func (f extractFunc) Extract(ctx context.Context, urls []string) (*entity.StageRecord, error) {
	return f(ctx, urls)
}

// constant emits the same row for every URL.
func constant(row entity.Features) extractFunc {
	return func(_ context.Context, urls []string) (*entity.StageRecord, error) {
		rec := entity.NewStageRecord(len(urls))
		for _, u := range urls {
			cp := make(entity.Features, len(row))
			for k, v := range row {
				cp[k] = v
			}
			rec.Set(u, cp)
		}
		return rec, nil
	}
}

func failing(err error) extractFunc {
	return func(context.Context, []string) (*entity.StageRecord, error) {
		return nil, err
	}
}

func record(rows map[string]entity.Features, order ...string) *entity.StageRecord {
	rec := entity.NewStageRecord(len(order))
	for _, u := range order {
		rec.Set(u, rows[u])
	}
	return rec
}

func prob(p float64) *float64 { return &p }

// fakeScorer returns a fixed verdict per URL; unknown URLs are benign.
type fakeScorer struct {
	mu       sync.Mutex
	manifest []string
	verdicts map[string]entity.Classification
	err      error
	calls    int
}

func (s *fakeScorer) Manifest() []string { return s.manifest }

func (s *fakeScorer) Score(_ context.Context, m *entity.Matrix) ([]entity.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]entity.Classification, len(m.URLs))
	for i, u := range m.URLs {
		v, ok := s.verdicts[u]
		if !ok {
			v = entity.Classification{Label: entity.LabelBenign}
		}
		v.URL = u
		out[i] = v
	}
	return out, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	content []byte
	message string
	err     error
}

func (p *fakePublisher) Publish(_ context.Context, content []byte, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.content = append([]byte(nil), content...)
	p.message = message
	return nil
}

// brokenRegistry fails every batch write.
type brokenRegistry struct {
	repository.RegistryRepository
}

func (brokenRegistry) UpsertBatch(context.Context, []string, time.Time) ([]entity.UpsertOutcome, error) {
	return nil, errors.New("connection reset")
}
