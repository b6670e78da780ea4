package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/phishguard/internal/adapter/memory"
	"go.uber.org/zap"
)

func newSubmission() (*SubmissionUseCase, *memory.PendingRepoImpl) {
	pending := memory.NewPendingRepo()
	uc := NewSubmissionUseCase(pending, memory.NewRegistryRepo(), memory.NewStatsRepo(),
		memory.NewAPIKeyRepo(time.Hour), time.Hour, "v-test", zap.NewNop())
	return uc, pending
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	uc, _ := newSubmission()
	ctx := context.Background()

	if err := uc.Authenticate(ctx, ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if err := uc.Authenticate(ctx, "made-up"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}

	key, err := uc.IssueAPIKey(ctx)
	if err != nil || len(key) != 64 {
		t.Fatalf("IssueAPIKey: %q %v", key, err)
	}
	if err := uc.Authenticate(ctx, key); err != nil {
		t.Fatalf("issued key rejected: %v", err)
	}
}

func TestSubmitURLsNormalizesAndDedups(t *testing.T) {
	t.Parallel()

	uc, pending := newSubmission()
	ctx := context.Background()

	res, err := uc.SubmitURLs(ctx, []string{" www.evil.test/a ", "http://evil.test/a", "", "http://other.test"})
	if err != nil {
		t.Fatalf("SubmitURLs: %v", err)
	}
	if res.Received != 4 || res.Added != 2 || res.Pending != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	snap, _ := pending.Snapshot(ctx)
	if snap[0] != "http://evil.test/a" || snap[1] != "http://other.test" {
		t.Fatalf("unexpected pending set: %v", snap)
	}

	res, err = uc.SubmitURLs(ctx, []string{"http://evil.test/a"})
	if err != nil || res.Added != 0 {
		t.Fatalf("resubmission should be a no-op: %+v %v", res, err)
	}

	if _, err := uc.SubmitURLs(ctx, []string{"", "  "}); !errors.Is(err, ErrNoURLs) {
		t.Fatalf("expected ErrNoURLs, got %v", err)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	uc, _ := newSubmission()
	ctx := context.Background()
	if _, err := uc.SubmitURLs(ctx, []string{"http://a.test"}); err != nil {
		t.Fatalf("SubmitURLs: %v", err)
	}

	s, err := uc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.ModelVersion != "v-test" || s.PendingSize != 1 || s.RegistrySize != 0 || s.UpdatesSoFar != 0 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
