package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
	"github.com/user/phishguard/pkg/metrics"
	"go.uber.org/zap"
)

const defaultRecentLimit = 50

// SubmitResult reports what an ingestion call did to the pending set.
type SubmitResult struct {
	Received int   `json:"received"`
	Added    int   `json:"added"`
	Pending  int64 `json:"pending"`
}

// SubmissionUseCase is everything the HTTP surface needs besides running cycles.
type SubmissionUseCase struct {
	pending      repository.PendingQueue
	registry     repository.RegistryRepository
	stats        repository.StatsRepository
	keys         repository.APIKeyRepository
	keyTTL       time.Duration
	modelVersion string
	logger       *zap.Logger
}

func NewSubmissionUseCase(
	pending repository.PendingQueue,
	registry repository.RegistryRepository,
	stats repository.StatsRepository,
	keys repository.APIKeyRepository,
	keyTTL time.Duration,
	modelVersion string,
	logger *zap.Logger,
) *SubmissionUseCase {
	return &SubmissionUseCase{
		pending:      pending,
		registry:     registry,
		stats:        stats,
		keys:         keys,
		keyTTL:       keyTTL,
		modelVersion: modelVersion,
		logger:       logger.Named("submission"),
	}
}

// IssueAPIKey creates a fresh key valid for the configured TTL.
func (uc *SubmissionUseCase) IssueAPIKey(ctx context.Context) (string, error) {
	key := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	if err := uc.keys.Save(ctx, key, uc.keyTTL); err != nil {
		return "", fmt.Errorf("save api key: %w", err)
	}
	return key, nil
}

// Authenticate accepts a live key and extends its lifetime.
func (uc *SubmissionUseCase) Authenticate(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrMissingAPIKey
	}
	ok, err := uc.keys.Touch(ctx, key, uc.keyTTL)
	if err != nil {
		return fmt.Errorf("check api key: %w", err)
	}
	if !ok {
		return ErrInvalidAPIKey
	}
	return nil
}

// SubmitURLs normalizes urls and adds them to the pending set.
func (uc *SubmissionUseCase) SubmitURLs(ctx context.Context, urls []string) (*SubmitResult, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			cleaned = append(cleaned, u)
		}
	}
	normalized := entity.NormalizeAll(cleaned)
	if len(normalized) == 0 {
		return nil, ErrNoURLs
	}

	added, err := uc.pending.Add(ctx, normalized...)
	if err != nil {
		return nil, fmt.Errorf("add pending: %w", err)
	}
	size, err := uc.pending.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending size: %w", err)
	}
	metrics.URLsPending.Set(float64(size))

	uc.logger.Info("URLs submitted",
		zap.Int("received", len(urls)),
		zap.Int("added", added),
		zap.Int64("pending", size),
	)
	return &SubmitResult{Received: len(urls), Added: added, Pending: size}, nil
}

func (uc *SubmissionUseCase) Stats(ctx context.Context) (*entity.ServerStats, error) {
	registrySize, err := uc.registry.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count registry: %w", err)
	}
	updates, err := uc.stats.Updates(ctx)
	if err != nil {
		return nil, fmt.Errorf("read updates: %w", err)
	}
	pending, err := uc.pending.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending size: %w", err)
	}
	return &entity.ServerStats{
		ModelVersion: uc.modelVersion,
		RegistrySize: registrySize,
		UpdatesSoFar: updates,
		PendingSize:  pending,
	}, nil
}

func (uc *SubmissionUseCase) PendingURLs(ctx context.Context) ([]string, error) {
	return uc.pending.Snapshot(ctx)
}

// RecentEntries lists the most recently seen registry rows. A non-positive limit uses the default.
func (uc *SubmissionUseCase) RecentEntries(ctx context.Context, limit int) ([]*entity.RegistryEntry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return uc.registry.ListRecent(ctx, limit)
}
