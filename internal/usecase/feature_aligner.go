package usecase

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/metrics"
	"go.uber.org/zap"
)

// legacyKeyColumns may carry the URL inside a row. They are never features.
var legacyKeyColumns = []string{"url", "URL"}

// FeatureAligner merges the stage outputs into the matrix the classifier expects.
type FeatureAligner struct {
	logger *zap.Logger
}

func NewFeatureAligner(logger *zap.Logger) *FeatureAligner {
	return &FeatureAligner{logger: logger.Named("aligner")}
}

type keyedRows struct {
	order []string
	rows  map[string]entity.Features
}

// Align inner-joins the three records on normalized URL, keeping lexical order, and
// projects every joined row onto manifest. The returned matrix always has exactly
// the manifest's columns in the manifest's order.
func (a *FeatureAligner) Align(out *entity.StageOutputs, manifest []string) (*entity.Matrix, *entity.AlignReport) {
	lex := rekey(out.Lexical)
	rep := rekey(out.Reputation)
	beh := rekey(out.Behavioral)

	report := &entity.AlignReport{}
	matrix := &entity.Matrix{
		Columns: append([]string(nil), manifest...),
	}

	inManifest := make(map[string]struct{}, len(manifest))
	for _, c := range manifest {
		inManifest[c] = struct{}{}
	}
	missing := make(map[string]struct{})
	extra := make(map[string]struct{})

	for _, url := range lex.order {
		r2, ok2 := rep.rows[url]
		r3, ok3 := beh.rows[url]
		if !ok2 || !ok3 {
			continue
		}

		merged := make(entity.Features, len(manifest))
		for _, src := range []entity.Features{lex.rows[url], r2, r3} {
			for k, v := range src {
				merged[k] = v
			}
		}
		for _, k := range legacyKeyColumns {
			delete(merged, k)
		}
		for k := range merged {
			if _, ok := inManifest[k]; !ok {
				extra[k] = struct{}{}
			}
		}

		row := make([]float64, len(manifest))
		for i, col := range manifest {
			v, ok := merged[col]
			if !ok {
				missing[col] = struct{}{}
				continue
			}
			f, clean := toFloat(v)
			if !clean {
				report.CoercedValues++
			}
			row[i] = f
		}
		matrix.URLs = append(matrix.URLs, url)
		matrix.Rows = append(matrix.Rows, row)
	}

	report.Joined = len(matrix.URLs)
	report.Dropped = unionSize(lex, rep, beh) - report.Joined
	report.MissingColumns = inOrder(manifest, missing)
	report.ExtraColumns = sortedKeys(extra)

	if report.Dropped > 0 {
		metrics.JoinDroppedTotal.Add(float64(report.Dropped))
		a.logger.Warn("URLs dropped by join, a stage produced no row for them",
			zap.Int("dropped", report.Dropped),
			zap.Int("joined", report.Joined),
		)
	}
	if len(report.MissingColumns) > 0 {
		a.logger.Warn("manifest columns missing from features, filled with 0",
			zap.Strings("columns", report.MissingColumns))
	}
	if len(report.ExtraColumns) > 0 {
		a.logger.Info("dropping columns not in manifest", zap.Strings("columns", report.ExtraColumns))
	}
	if report.CoercedValues > 0 {
		a.logger.Debug("non-numeric feature values coerced", zap.Int("count", report.CoercedValues))
	}
	return matrix, report
}

// rekey indexes a record by normalized URL, preferring a url column inside the row.
// The first row for a key wins.
func rekey(rec *entity.StageRecord) keyedRows {
	k := keyedRows{rows: make(map[string]entity.Features, rec.Len())}
	for _, key := range rec.URLs() {
		row, _ := rec.Get(key)
		for _, col := range legacyKeyColumns {
			if s, ok := row[col].(string); ok && strings.TrimSpace(s) != "" {
				key = s
				break
			}
		}
		key = entity.NormalizeURL(key)
		if _, dup := k.rows[key]; dup {
			continue
		}
		k.order = append(k.order, key)
		k.rows[key] = row
	}
	return k
}

func unionSize(sets ...keyedRows) int {
	all := make(map[string]struct{})
	for _, s := range sets {
		for _, u := range s.order {
			all[u] = struct{}{}
		}
	}
	return len(all)
}

// toFloat reports clean=false when v had to be replaced or reinterpreted.
func toFloat(v any) (f float64, clean bool) {
	switch x := v.(type) {
	case float64:
		f, clean = x, true
	case float32:
		f, clean = float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, false
		}
		return 0, false
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f, clean = p, true
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, clean
}

func inOrder(order []string, set map[string]struct{}) []string {
	var out []string
	for _, c := range order {
		if _, ok := set[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
