package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/phishguard/internal/entity"
	"go.uber.org/zap"
)

type labelOnly struct{ classes []int }

func (l labelOnly) Predict(context.Context, *entity.Matrix) ([]int, error) {
	return l.classes, nil
}

type brokenProba struct{ labelOnly }

func (brokenProba) PredictProbability(context.Context, *entity.Matrix) ([]float64, error) {
	return nil, errors.New("proba unavailable")
}

func matrix(cols []string, urls ...string) *entity.Matrix {
	m := &entity.Matrix{URLs: urls, Columns: cols}
	for range urls {
		m.Rows = append(m.Rows, make([]float64, len(cols)))
	}
	return m
}

func writeFile(t *testing.T, name string, v any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "features.json", []string{"b", "a", "c"})
	got, err := LoadManifest(path, nil)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(got) != 3 || got[0] != "b" || got[2] != "c" {
		t.Fatalf("manifest order not preserved: %v", got)
	}

	missing := filepath.Join(t.TempDir(), "absent.json")
	got, err = LoadManifest(missing, []string{"x", "y"})
	if err != nil || len(got) != 2 {
		t.Fatalf("expected fallback to declared names, got %v %v", got, err)
	}
	if _, err := LoadManifest(missing, nil); !errors.Is(err, ErrManifestInvalid) {
		t.Fatalf("expected ErrManifestInvalid, got %v", err)
	}

	dup := writeFile(t, "dup.json", []string{"a", "a"})
	if _, err := LoadManifest(dup, nil); !errors.Is(err, ErrManifestInvalid) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestAdapterLabelOnly(t *testing.T) {
	t.Parallel()

	cols := []string{"f1", "f2"}
	a, err := NewAdapter(labelOnly{classes: []int{1, 0}}, cols, "test", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if a.SupportsProbability() {
		t.Fatal("label-only model must not report probability support")
	}

	got, err := a.Score(context.Background(), matrix(cols, "http://a.test", "http://b.test"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got[0].Label != entity.LabelPhishing || got[0].Probability != nil {
		t.Fatalf("unexpected first result: %+v", got[0])
	}
	if got[1].Label != entity.LabelBenign || got[1].URL != "http://b.test" {
		t.Fatalf("unexpected second result: %+v", got[1])
	}
}

func TestAdapterFallsBackWhenProbabilityFails(t *testing.T) {
	t.Parallel()

	cols := []string{"f1"}
	a, err := NewAdapter(brokenProba{labelOnly{classes: []int{1}}}, cols, "test", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	if !a.SupportsProbability() {
		t.Fatal("expected probability support to be detected")
	}

	got, err := a.Score(context.Background(), matrix(cols, "http://a.test"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got[0].Probability != nil || !got[0].Qualifies(0.99) {
		t.Fatalf("label-only fallback should qualify on label: %+v", got[0])
	}
}

func TestAdapterRejectsMisalignedMatrix(t *testing.T) {
	t.Parallel()

	a, err := NewAdapter(labelOnly{classes: []int{0}}, []string{"a", "b"}, "test", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	_, err = a.Score(context.Background(), matrix([]string{"b", "a"}, "http://a.test"))
	if !errors.Is(err, ErrColumnMismatch) {
		t.Fatalf("expected ErrColumnMismatch, got %v", err)
	}
}

func TestLogisticModel(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "model.json", map[string]any{
		"feature_names": []string{"x"},
		"weights":       []float64{2},
		"bias":          -1,
	})
	model, err := LoadLogisticModel(path)
	if err != nil {
		t.Fatalf("LoadLogisticModel: %v", err)
	}

	m := &entity.Matrix{URLs: []string{"lo", "hi"}, Columns: []string{"x"}, Rows: [][]float64{{0}, {3}}}
	probs, err := model.PredictProbability(context.Background(), m)
	if err != nil {
		t.Fatalf("PredictProbability: %v", err)
	}
	if probs[0] >= 0.5 || probs[1] <= 0.5 {
		t.Fatalf("unexpected probabilities: %v", probs)
	}
	classes, err := model.Predict(context.Background(), m)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if classes[0] != 0 || classes[1] != 1 {
		t.Fatalf("unexpected classes: %v", classes)
	}
	if names := model.FeatureNames(); len(names) != 1 || names[0] != "x" {
		t.Fatalf("unexpected feature names: %v", names)
	}
}

func TestRemoteClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/predict":
			labels := make([]int, len(req.Rows))
			labels[0] = 1
			_ = json.NewEncoder(w).Encode(predictResponse{Labels: labels})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL+"/", "secret", time.Second)
	a, err := NewAdapter(client, []string{"f"}, "remote", zap.NewNop())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	got, err := a.Score(context.Background(), matrix([]string{"f"}, "http://a.test", "http://b.test"))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got[0].Label != entity.LabelPhishing || got[1].Label != entity.LabelBenign {
		t.Fatalf("unexpected labels: %+v", got)
	}
	if got[0].Probability != nil {
		t.Fatal("missing /predict_proba should degrade to label-only")
	}
}
