package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/phishguard/internal/adapter/memory"
	"github.com/user/phishguard/internal/delivery/http/handler"
	"github.com/user/phishguard/internal/delivery/http/middleware"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/internal/usecase"
	"go.uber.org/zap"
)

type fakeCycles struct {
	busy    bool
	started int
}

func (f *fakeCycles) StartCycle(context.Context, func(*entity.CycleResult, error)) error {
	if f.busy {
		return usecase.ErrCycleInProgress
	}
	f.started++
	return nil
}

type fixture struct {
	srv      http.Handler
	pending  *memory.PendingRepoImpl
	registry *memory.RegistryRepoImpl
	cycles   *fakeCycles
	key      string
}

func newFixture(t *testing.T, perMinute int) *fixture {
	t.Helper()

	pending := memory.NewPendingRepo()
	registry := memory.NewRegistryRepo()
	submissions := usecase.NewSubmissionUseCase(pending, registry, memory.NewStatsRepo(),
		memory.NewAPIKeyRepo(time.Hour), time.Hour, "v-test", zap.NewNop())
	key, err := submissions.IssueAPIKey(context.Background())
	if err != nil {
		t.Fatalf("IssueAPIKey: %v", err)
	}

	cycles := &fakeCycles{}
	h := handler.NewHandler(submissions, cycles, time.Hour, zap.NewNop())
	return &fixture{
		srv:      New(h, submissions, middleware.NewRateLimiter(perMinute), zap.NewNop()),
		pending:  pending,
		registry: registry,
		cycles:   cycles,
		key:      key,
	}
}

func (f *fixture) do(method, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(middleware.APIKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndKeyIssuance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)
	if rec := f.do(http.MethodGet, "/api/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}

	rec := f.do(http.MethodGet, "/api/key", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("key: %d %s", rec.Code, rec.Body)
	}
	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.APIKey == "" {
		t.Fatalf("decode key: %v %+v", err, body)
	}
	if rec := f.do(http.MethodGet, "/api/stats", "", body.APIKey); rec.Code != http.StatusOK {
		t.Fatalf("fresh key should authenticate, got %d", rec.Code)
	}
}

func TestSubmitURLs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)
	payload := `{"daily_urls": ["www.evil.test/login", "http://evil.test/login", "http://other.test"]}`

	if rec := f.do(http.MethodPut, "/api/urls", payload, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: expected 401, got %d", rec.Code)
	}
	if rec := f.do(http.MethodPut, "/api/urls", payload, "bogus"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad key: expected 401, got %d", rec.Code)
	}
	if rec := f.do(http.MethodPut, "/api/urls", `{"daily_urls": "nope"}`, f.key); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body: expected 400, got %d", rec.Code)
	}
	if rec := f.do(http.MethodPut, "/api/urls", `{}`, f.key); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing list: expected 400, got %d", rec.Code)
	}

	rec := f.do(http.MethodPut, "/api/urls", payload, f.key)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}
	if size, _ := f.pending.Size(context.Background()); size != 2 {
		t.Fatalf("expected 2 pending URLs, got %d", size)
	}

	rec = f.do(http.MethodGet, "/api/debug/pending", "", f.key)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Fatalf("pending: %d %s", rec.Code, rec.Body)
	}
}

func TestSubmitURLsRateLimited(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 2)
	payload := `{"daily_urls": ["http://a.test"]}`
	for i := 0; i < 2; i++ {
		if rec := f.do(http.MethodPut, "/api/urls", payload, f.key); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := f.do(http.MethodPut, "/api/urls", payload, f.key)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d %v", rec.Code, rec.Header())
	}
	if rec := f.do(http.MethodGet, "/api/stats", "", f.key); rec.Code != http.StatusOK {
		t.Fatalf("other routes must not be limited, got %d", rec.Code)
	}
}

func TestRecentRegistry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []string{"http://a.test", "http://b.test", "http://c.test"} {
		if _, err := f.registry.Upsert(ctx, u, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	rec := f.do(http.MethodGet, "/api/debug/registry?limit=2", "", f.key)
	if rec.Code != http.StatusOK {
		t.Fatalf("registry: %d", rec.Code)
	}
	var body struct {
		Count int                     `json:"count"`
		Rows  []*entity.RegistryEntry `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || body.Rows[0].URL != "http://c.test" {
		t.Fatalf("expected the two most recent rows, got %+v", body)
	}

	rec = f.do(http.MethodGet, "/api/debug/registry?limit=abc", "", f.key)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":3`) {
		t.Fatalf("bad limit should fall back to default: %d %s", rec.Code, rec.Body)
	}
}

func TestTriggerCycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)
	if rec := f.do(http.MethodPost, "/api/debug/cycle", "", f.key); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	f.cycles.busy = true
	if rec := f.do(http.MethodPost, "/api/debug/cycle", "", f.key); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while running, got %d", rec.Code)
	}
	if f.cycles.started != 1 {
		t.Fatalf("expected one started cycle, got %d", f.cycles.started)
	}
}
