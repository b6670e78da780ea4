// Package reputation computes network-reputation features: certificate state, domain
// registration dates and third-party reputation counts.
package reputation

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/metrics"
	"github.com/user/phishguard/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ColSSLExists    = "SSL Exists"
	ColSSLValid     = "SSL Valid"
	ColDomainAge    = "Domain Age"
	ColDomainExpiry = "Domain Expiry"
	ColVTReputation = "VT Reputation"
	ColVTMalicious  = "VT Malicious"
	ColVTSuspicious = "VT Suspicious"
	ColVTUndetected = "VT Undetected"
	ColVTHarmless   = "VT Harmless"
)

// Columns lists the stage output in its canonical order.
var Columns = []string{
	ColSSLExists, ColSSLValid, ColDomainAge, ColDomainExpiry,
	ColVTReputation, ColVTMalicious, ColVTSuspicious, ColVTUndetected, ColVTHarmless,
}

const (
	tlsTimeout      = 5 * time.Second
	whoisTimeout    = 5 * time.Second
	httpTimeout     = 10 * time.Second
	maxRedirects    = 10
	sentinelMissing = -1
)

// Extractor is the stage-2 feature producer. Every input URL gets a row; each
// sub-lookup that fails leaves its columns at -1.
type Extractor struct {
	tls        *TLSChecker
	whois      *WhoisClient
	api        *APIClient
	httpClient *http.Client
	workers    int
	logger     *zap.Logger
	now        func() time.Time
}

// New builds a reputation extractor. workers bounds how many URLs are looked up at once.
func New(api *APIClient, workers int, logger *zap.Logger) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		tls:   NewTLSChecker(tlsTimeout),
		whois: NewWhoisClient(whoisTimeout),
		api:   api,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		workers: workers,
		logger:  logger.Named("reputation"),
		now:     time.Now,
	}
}

// Extract looks up every URL, at most e.workers at a time, and returns rows in input order.
func (e *Extractor) Extract(ctx context.Context, urls []string) (*entity.StageRecord, error) {
	rows := make([]entity.Features, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, u := range urls {
		g.Go(func() error {
			rows[i] = e.safeRow(gctx, u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := entity.NewStageRecord(len(urls))
	for i, u := range urls {
		rec.Set(u, rows[i])
	}
	return rec, nil
}

func (e *Extractor) safeRow(ctx context.Context, raw string) (row entity.Features) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("recovered panic while looking up url", zap.String("url", raw), zap.Any("panic", r))
			row = sentinelRow()
		}
	}()
	return e.Row(ctx, raw)
}

// Row runs the three guarded lookups for one URL.
func (e *Extractor) Row(ctx context.Context, raw string) entity.Features {
	row := sentinelRow()

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		e.logger.Debug("skipping lookups for unparseable url", zap.String("url", raw))
		return row
	}
	host := e.finalHost(ctx, raw, u.Hostname())

	if exists, valid, err := e.tls.Check(ctx, host); err != nil {
		e.lookupFailed("tls", raw, err)
	} else {
		row[ColSSLExists] = exists
		row[ColSSLValid] = valid
	}

	if dates, err := e.whois.Lookup(ctx, host); err != nil {
		e.lookupFailed("whois", raw, err)
	} else {
		now := e.now()
		if !dates.Created.IsZero() {
			row[ColDomainAge] = int(now.Sub(dates.Created).Hours() / 24)
		}
		if !dates.Expires.IsZero() {
			row[ColDomainExpiry] = int(dates.Expires.Sub(now).Hours() / 24)
		}
	}

	if e.api.Enabled() {
		doc, err := e.api.Query(ctx, raw)
		if err != nil {
			e.lookupFailed("reputation_api", raw, err)
			return row
		}
		for _, col := range Columns {
			v, ok := pick(doc, col)
			if !ok {
				continue
			}
			// Local lookups win; the service only fills what they could not determine.
			if !isVTColumn(col) && row[col] != sentinelMissing {
				continue
			}
			row[col] = v
		}
	}

	return row
}

// finalHost follows redirects and returns the host the chain ends on, or fallback.
func (e *Extractor) finalHost(ctx context.Context, raw, fallback string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		e.lookupFailed("final_host", raw, err)
		return fallback
	}
	req.Header.Set("User-Agent", utils.RandomUserAgent())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.lookupFailed("final_host", raw, err)
		return fallback
	}
	resp.Body.Close()

	if h := resp.Request.URL.Hostname(); h != "" {
		return h
	}
	return fallback
}

func (e *Extractor) lookupFailed(lookup, raw string, err error) {
	metrics.LookupFailuresTotal.WithLabelValues(lookup).Inc()
	e.logger.Debug("lookup failed, using sentinel",
		zap.String("lookup", lookup),
		zap.String("url", raw),
		zap.Error(err),
	)
}

func isVTColumn(col string) bool {
	switch col {
	case ColVTReputation, ColVTMalicious, ColVTSuspicious, ColVTUndetected, ColVTHarmless:
		return true
	}
	return false
}

func sentinelRow() entity.Features {
	row := make(entity.Features, len(Columns))
	for _, c := range Columns {
		row[c] = sentinelMissing
	}
	return row
}
