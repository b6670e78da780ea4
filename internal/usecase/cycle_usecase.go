package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
	"github.com/user/phishguard/pkg/metrics"
	"go.uber.org/zap"
)

// Scorer classifies an aligned matrix. Manifest is the column order it expects.
type Scorer interface {
	Manifest() []string
	Score(ctx context.Context, m *entity.Matrix) ([]entity.Classification, error)
}

// CycleConfig holds the knobs of a batch cycle.
type CycleConfig struct {
	Threshold   float64
	Timeout     time.Duration
	PublishSkip bool
}

// CycleUseCase drains the pending set through extraction, classification and the
// registry. Only one cycle runs at a time, and the pending set is only trimmed
// once the registry write has succeeded.
type CycleUseCase struct {
	pending      repository.PendingQueue
	registry     repository.RegistryRepository
	stats        repository.StatsRepository
	publisher    repository.BlocklistPublisher
	orchestrator *StageOrchestrator
	aligner      *FeatureAligner
	scorer       Scorer
	cfg          CycleConfig
	logger       *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewCycleUseCase wires a cycle. publisher may be nil, which behaves like PublishSkip.
func NewCycleUseCase(
	pending repository.PendingQueue,
	registry repository.RegistryRepository,
	stats repository.StatsRepository,
	publisher repository.BlocklistPublisher,
	orchestrator *StageOrchestrator,
	aligner *FeatureAligner,
	scorer Scorer,
	cfg CycleConfig,
	logger *zap.Logger,
) *CycleUseCase {
	return &CycleUseCase{
		pending:      pending,
		registry:     registry,
		stats:        stats,
		publisher:    publisher,
		orchestrator: orchestrator,
		aligner:      aligner,
		scorer:       scorer,
		cfg:          cfg,
		logger:       logger.Named("cycle"),
		now:          time.Now,
	}
}

// RunCycle processes a snapshot of the pending set. It returns ErrCycleInProgress
// immediately if another cycle holds the gate.
func (uc *CycleUseCase) RunCycle(ctx context.Context) (*entity.CycleResult, error) {
	if !uc.mu.TryLock() {
		metrics.CyclesTotal.WithLabelValues("rejected").Inc()
		return nil, ErrCycleInProgress
	}
	defer uc.mu.Unlock()
	return uc.run(ctx)
}

// StartCycle takes the gate synchronously and runs the cycle in the background.
// done, if non-nil, receives the outcome.
func (uc *CycleUseCase) StartCycle(ctx context.Context, done func(*entity.CycleResult, error)) error {
	if !uc.mu.TryLock() {
		metrics.CyclesTotal.WithLabelValues("rejected").Inc()
		return ErrCycleInProgress
	}
	go func() {
		defer uc.mu.Unlock()
		res, err := uc.run(ctx)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

func (uc *CycleUseCase) run(ctx context.Context) (*entity.CycleResult, error) {
	start := uc.now()
	result := &entity.CycleResult{ID: uuid.NewString(), StartedAt: start}
	log := uc.logger.With(zap.String("cycle_id", result.ID))

	snapshot, err := uc.pending.Snapshot(ctx)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("snapshot pending: %w", err)
	}
	if len(snapshot) == 0 {
		metrics.CyclesTotal.WithLabelValues("empty").Inc()
		log.Info("no pending URLs, nothing to do")
		return result, nil
	}
	result.Processed = len(snapshot)
	log.Info("cycle started", zap.Int("urls", len(snapshot)))

	runCtx := ctx
	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}

	if err := uc.process(runCtx, snapshot, result); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("cycle exceeded %s: %w", uc.cfg.Timeout, err)
		}
		metrics.CyclesTotal.WithLabelValues("failure").Inc()
		log.Error("cycle failed, pending URLs kept for retry", zap.Error(err))
		return nil, err
	}

	if result.Joined > 0 {
		uc.publish(runCtx, result, log)
	}

	// The registry already holds this batch, so the commit must not be lost to the cycle budget.
	if err := uc.pending.Commit(context.WithoutCancel(ctx), snapshot); err != nil {
		metrics.CyclesTotal.WithLabelValues("failure").Inc()
		log.Error("failed to commit pending snapshot", zap.Error(err))
		return result, fmt.Errorf("commit pending: %w", err)
	}
	if size, err := uc.pending.Size(ctx); err == nil {
		metrics.URLsPending.Set(float64(size))
	}

	result.Duration = uc.now().Sub(start)
	metrics.CyclesTotal.WithLabelValues("success").Inc()
	metrics.CycleDuration.Observe(result.Duration.Seconds())
	log.Info("cycle finished",
		zap.Int("joined", result.Joined),
		zap.Int("dropped", result.Dropped),
		zap.Int("phishing", result.Phishing),
		zap.Int("inserted", result.Inserted),
		zap.Int("bumped", result.Bumped),
		zap.Bool("published", result.Published),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (uc *CycleUseCase) process(ctx context.Context, snapshot []string, result *entity.CycleResult) error {
	outputs, err := uc.orchestrator.ExtractAll(ctx, snapshot)
	if err != nil {
		return err
	}
	result.LexicalRows = outputs.Lexical.Len()
	result.ReputationRows = outputs.Reputation.Len()
	result.BehavioralRows = outputs.Behavioral.Len()
	result.BehavioralDegraded = outputs.BehavioralDegraded

	matrix, report := uc.aligner.Align(outputs, uc.scorer.Manifest())
	result.Joined = report.Joined
	result.Dropped = report.Dropped
	if matrix.Len() == 0 {
		return ctx.Err()
	}

	scores, err := uc.scorer.Score(ctx, matrix)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	var gated []string
	for _, c := range scores {
		if c.Label == entity.LabelPhishing {
			result.Phishing++
		}
		if c.Qualifies(uc.cfg.Threshold) {
			gated = append(gated, c.URL)
		}
	}
	if len(gated) > 0 {
		if err := uc.persist(ctx, gated, result); err != nil {
			return err
		}
	}

	// Every scored cycle counts as an update, even when nothing was gated.
	if _, err := uc.stats.IncrUpdates(ctx); err != nil {
		uc.logger.Warn("failed to bump updates counter", zap.Error(err))
	}
	return ctx.Err()
}

func (uc *CycleUseCase) persist(ctx context.Context, gated []string, result *entity.CycleResult) error {
	outcomes, err := uc.registry.UpsertBatch(ctx, gated, uc.now())
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	for _, o := range outcomes {
		switch o {
		case entity.UpsertInserted:
			result.Inserted++
			metrics.RegistryUpsertsTotal.WithLabelValues("inserted").Inc()
		case entity.UpsertBumped:
			result.Bumped++
			metrics.RegistryUpsertsTotal.WithLabelValues("bumped").Inc()
		}
	}
	return nil
}

// publish renders the whole registry. Failures are reported on the result only.
func (uc *CycleUseCase) publish(ctx context.Context, result *entity.CycleResult, log *zap.Logger) {
	if uc.cfg.PublishSkip || uc.publisher == nil {
		log.Info("publish skipped")
		metrics.PublishesTotal.WithLabelValues("skipped").Inc()
		return
	}

	err := uc.publishRegistry(ctx)
	if err != nil {
		result.PublishError = err.Error()
		metrics.PublishesTotal.WithLabelValues("failure").Inc()
		log.Error("block-list publish failed", zap.Error(err))
		return
	}
	result.Published = true
	metrics.PublishesTotal.WithLabelValues("success").Inc()
}

func (uc *CycleUseCase) publishRegistry(ctx context.Context) error {
	entries, err := uc.registry.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list registry: %w", err)
	}
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.URL
	}

	n, err := uc.stats.Updates(ctx)
	if err != nil {
		return fmt.Errorf("read updates counter: %w", err)
	}
	msg := fmt.Sprintf("Daily update dynamic phishing list no.%d", n)
	return uc.publisher.Publish(ctx, BuildBlocklist(urls), msg)
}
