package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StageExtractor produces one stage's feature record for a batch of URLs.
type StageExtractor interface {
	Extract(ctx context.Context, urls []string) (*entity.StageRecord, error)
}

// StageOrchestrator runs the three extraction stages concurrently and applies the
// per-stage failure policy: lexical and reputation failures abort the batch, a
// behavioral failure degrades to a key-only record.
type StageOrchestrator struct {
	lexical    StageExtractor
	reputation StageExtractor
	behavioral StageExtractor // nil when the browser stage is disabled
	logger     *zap.Logger
}

func NewStageOrchestrator(lexical, reputation, behavioral StageExtractor, logger *zap.Logger) *StageOrchestrator {
	return &StageOrchestrator{
		lexical:    lexical,
		reputation: reputation,
		behavioral: behavioral,
		logger:     logger.Named("orchestrator"),
	}
}

// ExtractAll blocks until every stage has finished.
func (o *StageOrchestrator) ExtractAll(ctx context.Context, urls []string) (*entity.StageOutputs, error) {
	var out entity.StageOutputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rec, err := o.run(gctx, entity.StageLexical, o.lexical, urls)
		if err != nil {
			return o.fatal(entity.StageLexical, err)
		}
		out.Lexical = rec
		return nil
	})
	g.Go(func() error {
		rec, err := o.run(gctx, entity.StageReputation, o.reputation, urls)
		if err != nil {
			return o.fatal(entity.StageReputation, err)
		}
		out.Reputation = rec
		return nil
	})
	g.Go(func() error {
		if o.behavioral == nil {
			o.logger.Warn("behavioral stage unavailable, continuing without it")
			out.Behavioral = entity.KeyOnlyRecord(urls)
			out.BehavioralDegraded = true
			return nil
		}
		rec, err := o.run(gctx, entity.StageBehavioral, o.behavioral, urls)
		if err != nil {
			metrics.StageFailuresTotal.WithLabelValues(string(entity.StageBehavioral), "degraded").Inc()
			o.logger.Warn("behavioral stage failed, continuing without it", zap.Error(err))
			out.Behavioral = entity.KeyOnlyRecord(urls)
			out.BehavioralDegraded = true
			return nil
		}
		out.Behavioral = rec
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *StageOrchestrator) fatal(stage entity.Stage, err error) error {
	metrics.StageFailuresTotal.WithLabelValues(string(stage), "fatal").Inc()
	o.logger.Error("stage failed", zap.String("stage", string(stage)), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err)
}

func (o *StageOrchestrator) run(ctx context.Context, stage entity.Stage, ex StageExtractor, urls []string) (rec *entity.StageRecord, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("panic: %v", r)
		}
		metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	}()

	rec, err = ex.Extract(ctx, urls)
	if err == nil && rec == nil {
		rec = entity.NewStageRecord(0)
	}
	return rec, err
}
