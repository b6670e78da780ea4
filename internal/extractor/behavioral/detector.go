package behavioral

import (
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/metrics"
	"go.uber.org/zap"
)

// detector is one independent heuristic over a rendered page. It reports counts and
// ratios only; weighing them is the classifier's job.
type detector struct {
	name    string
	columns []string
	run     func(p *page) entity.Features
}

// detectors run in this order and define the stage's column order.
var detectors = []detector{
	faviconDetector,
	anchorDetector,
	linkDensityDetector,
	resourceDetector,
	formDetector,
	iframeDetector,
	scriptRiskDetector,
	textSignalDetector,
	eventHandlerDetector,
	liveDOMDetector,
}

// Columns lists every behavioral column in canonical order.
func Columns() []string {
	var cols []string
	for _, d := range detectors {
		cols = append(cols, d.columns...)
	}
	return cols
}

// runDetector isolates a detector: a panic zeroes its columns and leaves the others alone.
func runDetector(d detector, p *page, logger *zap.Logger) (row entity.Features) {
	defer func() {
		if r := recover(); r != nil {
			metrics.DetectorErrorsTotal.WithLabelValues(d.name).Inc()
			logger.Warn("detector failed, reporting zeros",
				zap.String("detector", d.name),
				zap.String("url", p.url),
				zap.Any("panic", r),
			)
			row = zeroRow(d.columns)
		}
	}()

	row = d.run(p)
	for _, c := range d.columns {
		if _, ok := row[c]; !ok {
			row[c] = 0
		}
	}
	return row
}

func zeroRow(columns []string) entity.Features {
	row := make(entity.Features, len(columns))
	for _, c := range columns {
		row[c] = 0
	}
	return row
}
