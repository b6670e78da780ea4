package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/phishguard/internal/adapter/memory"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/repository"
	"go.uber.org/zap"
)

type cycleFixture struct {
	pending   *memory.PendingRepoImpl
	registry  *memory.RegistryRepoImpl
	stats     *memory.StatsRepoImpl
	scorer    *fakeScorer
	publisher *fakePublisher
}

func newFixture(verdicts map[string]entity.Classification) *cycleFixture {
	return &cycleFixture{
		pending:   memory.NewPendingRepo(),
		registry:  memory.NewRegistryRepo(),
		stats:     memory.NewStatsRepo(),
		scorer:    &fakeScorer{manifest: []string{"l", "r", "b"}, verdicts: verdicts},
		publisher: &fakePublisher{},
	}
}

func (f *cycleFixture) cycle(lexical, behavioral StageExtractor, registry repository.RegistryRepository) *CycleUseCase {
	if lexical == nil {
		lexical = constant(entity.Features{"l": 1})
	}
	if registry == nil {
		registry = f.registry
	}
	o := NewStageOrchestrator(lexical, constant(entity.Features{"r": 1}), behavioral, zap.NewNop())
	return NewCycleUseCase(f.pending, registry, f.stats, f.publisher, o, NewFeatureAligner(zap.NewNop()),
		f.scorer, CycleConfig{Threshold: 0.5, Timeout: time.Minute}, zap.NewNop())
}

func (f *cycleFixture) add(t *testing.T, urls ...string) {
	t.Helper()
	if _, err := f.pending.Add(context.Background(), urls...); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestRunCycleThresholdGate(t *testing.T) {
	t.Parallel()

	at, below, benign, labelOnly := "http://at.test", "http://below.test", "http://benign.test", "http://nolabel.test"
	f := newFixture(map[string]entity.Classification{
		at:        {Label: entity.LabelPhishing, Probability: prob(0.5)},
		below:     {Label: entity.LabelPhishing, Probability: prob(0.49)},
		benign:    {Label: entity.LabelBenign, Probability: prob(0.9)},
		labelOnly: {Label: entity.LabelPhishing},
	})
	f.add(t, at, below, benign, labelOnly)

	res, err := f.cycle(nil, constant(entity.Features{"b": 1}), nil).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if res.Processed != 4 || res.Joined != 4 || res.Phishing != 3 || res.Inserted != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	ctx := context.Background()
	for _, u := range []string{at, labelOnly} {
		if _, err := f.registry.FindByURL(ctx, u); err != nil {
			t.Fatalf("%s should be persisted: %v", u, err)
		}
	}
	for _, u := range []string{below, benign} {
		if _, err := f.registry.FindByURL(ctx, u); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("%s should not be persisted: %v", u, err)
		}
	}
	if size, _ := f.pending.Size(ctx); size != 0 {
		t.Fatalf("pending should be drained, has %d", size)
	}
	if n, _ := f.stats.Updates(ctx); n != 1 {
		t.Fatalf("expected one update, got %d", n)
	}
	if !res.Published || f.publisher.message != "Daily update dynamic phishing list no.1" {
		t.Fatalf("unexpected publish: published=%v message=%q", res.Published, f.publisher.message)
	}
	if string(f.publisher.content) != "||at.test^$all\n||nolabel.test^$all\n" {
		t.Fatalf("unexpected block-list:\n%s", f.publisher.content)
	}
}

func TestRunCycleBenignOnlyStillAdvancesUpdateNumber(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	ctx := context.Background()

	for i, want := range []string{
		"Daily update dynamic phishing list no.1",
		"Daily update dynamic phishing list no.2",
	} {
		f.add(t, "http://benign.test")
		res, err := f.cycle(nil, nil, nil).RunCycle(ctx)
		if err != nil {
			t.Fatalf("cycle %d: %v", i+1, err)
		}
		if res.Inserted != 0 || !res.Published {
			t.Fatalf("cycle %d: unexpected result: %+v", i+1, res)
		}
		if f.publisher.message != want {
			t.Fatalf("cycle %d: message = %q, want %q", i+1, f.publisher.message, want)
		}
	}
	if n, _ := f.stats.Updates(ctx); n != 2 {
		t.Fatalf("expected two updates, got %d", n)
	}
}

func TestRunCycleFailureKeepsPendingAndRetries(t *testing.T) {
	t.Parallel()

	u := "http://evil.test/login"
	f := newFixture(map[string]entity.Classification{u: {Label: entity.LabelPhishing, Probability: prob(0.9)}})
	f.add(t, u)
	ctx := context.Background()

	f.scorer.err = errors.New("model crashed")
	if _, err := f.cycle(nil, nil, nil).RunCycle(ctx); err == nil {
		t.Fatal("expected scoring failure")
	}
	f.scorer.err = nil
	if _, err := f.cycle(nil, nil, brokenRegistry{f.registry}).RunCycle(ctx); err == nil {
		t.Fatal("expected persistence failure")
	}
	if snap, _ := f.pending.Snapshot(ctx); len(snap) != 1 || snap[0] != u {
		t.Fatalf("pending must be untouched after failures, got %v", snap)
	}
	if n, _ := f.registry.Count(ctx); n != 0 {
		t.Fatalf("no rows may be persisted by a failed cycle, got %d", n)
	}
	if f.publisher.message != "" {
		t.Fatal("a failed cycle must not publish")
	}

	if _, err := f.cycle(nil, nil, nil).RunCycle(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	e, err := f.registry.FindByURL(ctx, u)
	if err != nil || e.ReportsCount != 1 {
		t.Fatalf("retry should persist exactly once: %+v %v", e, err)
	}
	if size, _ := f.pending.Size(ctx); size != 0 {
		t.Fatalf("pending should be drained after retry, has %d", size)
	}
}

func TestRunCycleStageFailureIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	f.add(t, "http://a.test")

	_, err := f.cycle(failing(errors.New("bad input")), nil, nil).RunCycle(context.Background())
	if !errors.Is(err, ErrStageFailed) {
		t.Fatalf("expected ErrStageFailed, got %v", err)
	}
	if size, _ := f.pending.Size(context.Background()); size != 1 {
		t.Fatalf("pending must survive a fatal stage, has %d", size)
	}
}

func TestRunCycleDegradedBehavioralStillPersists(t *testing.T) {
	t.Parallel()

	u := "http://evil.test"
	f := newFixture(map[string]entity.Classification{u: {Label: entity.LabelPhishing, Probability: prob(0.8)}})
	f.add(t, u)

	res, err := f.cycle(nil, failing(errors.New("no browser")), nil).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if !res.BehavioralDegraded || res.Joined != 1 || res.Inserted != 1 {
		t.Fatalf("unexpected degraded result: %+v", res)
	}
}

func TestRunCycleEmptyIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	res, err := f.cycle(nil, nil, nil).RunCycle(context.Background())
	if err != nil || res.Processed != 0 {
		t.Fatalf("unexpected empty cycle: %+v %v", res, err)
	}
	if f.scorer.calls != 0 || f.publisher.message != "" {
		t.Fatal("an empty cycle must not score or publish")
	}
}

func TestRunCycleKeepsLateArrivals(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	f.add(t, "http://early.test")
	late := "http://late.test"

	lexical := extractFunc(func(ctx context.Context, urls []string) (*entity.StageRecord, error) {
		if _, err := f.pending.Add(ctx, late); err != nil {
			return nil, err
		}
		return constant(entity.Features{"l": 1})(ctx, urls)
	})

	res, err := f.cycle(lexical, nil, nil).RunCycle(context.Background())
	if err != nil || res.Processed != 1 {
		t.Fatalf("unexpected result: %+v %v", res, err)
	}
	snap, _ := f.pending.Snapshot(context.Background())
	if len(snap) != 1 || snap[0] != late {
		t.Fatalf("URL added mid-cycle must survive commit, pending=%v", snap)
	}
}

func TestRunCycleRejectsOverlap(t *testing.T) {
	t.Parallel()

	f := newFixture(nil)
	f.add(t, "http://a.test")

	entered := make(chan struct{})
	release := make(chan struct{})
	lexical := extractFunc(func(ctx context.Context, urls []string) (*entity.StageRecord, error) {
		close(entered)
		<-release
		return constant(entity.Features{"l": 1})(ctx, urls)
	})
	uc := f.cycle(lexical, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := uc.RunCycle(context.Background())
		done <- err
	}()

	<-entered
	if _, err := uc.RunCycle(context.Background()); !errors.Is(err, ErrCycleInProgress) {
		t.Fatalf("expected ErrCycleInProgress, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first cycle: %v", err)
	}
}

func TestRunCyclePublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	u := "http://evil.test/a"
	f := newFixture(map[string]entity.Classification{u: {Label: entity.LabelPhishing}})
	f.publisher.err = errors.New("github down")
	f.add(t, u)

	res, err := f.cycle(nil, nil, nil).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if res.Published || !strings.Contains(res.PublishError, "github down") {
		t.Fatalf("publish failure should be reported on the result: %+v", res)
	}
	if size, _ := f.pending.Size(context.Background()); size != 0 {
		t.Fatalf("persisted batch must be committed despite publish failure, pending=%d", size)
	}
}

func TestStartCycleRunsInBackground(t *testing.T) {
	t.Parallel()

	u := "http://evil.test"
	f := newFixture(map[string]entity.Classification{u: {Label: entity.LabelPhishing}})
	f.add(t, u)

	release := make(chan struct{})
	lexical := extractFunc(func(ctx context.Context, urls []string) (*entity.StageRecord, error) {
		<-release
		return constant(entity.Features{"l": 1})(ctx, urls)
	})
	uc := f.cycle(lexical, nil, nil)

	done := make(chan *entity.CycleResult, 1)
	if err := uc.StartCycle(context.Background(), func(r *entity.CycleResult, _ error) { done <- r }); err != nil {
		t.Fatalf("StartCycle: %v", err)
	}
	if err := uc.StartCycle(context.Background(), nil); !errors.Is(err, ErrCycleInProgress) {
		t.Fatalf("expected ErrCycleInProgress while running, got %v", err)
	}
	close(release)

	if res := <-done; res == nil || res.Inserted != 1 {
		t.Fatalf("unexpected background result: %+v", res)
	}
}
