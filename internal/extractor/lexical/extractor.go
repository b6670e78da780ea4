// Package lexical computes URL-string features. It performs no I/O.
package lexical

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/utils"
)

// Column names as the trained model knows them.
const (
	ColURLLength       = "URL Length"
	ColSubdomains      = "Subdomains"
	ColHostnameLength  = "Hostname Length"
	ColIP              = "IP"
	ColShortener       = "Shortener"
	ColHyphens         = "Hyphens"
	ColAtSigns         = "At Signs"
	ColQueryParameters = "Query Parameters"
	ColResources       = "Resources"
	ColSuspiciousChars = "Suspicious Chars"
)

// Columns lists the stage output in its canonical order.
var Columns = []string{
	ColURLLength, ColSubdomains, ColHostnameLength, ColIP, ColShortener,
	ColHyphens, ColAtSigns, ColQueryParameters, ColResources, ColSuspiciousChars,
}

var suspiciousChars = regexp.MustCompile("[@\\^{}\\[\\]~|`%\\\\<>]")

// Extractor is the stage-1 feature producer.
type Extractor struct{}

// New returns a lexical extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract emits exactly one row per URL. It never fails as a whole.
func (e *Extractor) Extract(ctx context.Context, urls []string) (*entity.StageRecord, error) {
	rec := entity.NewStageRecord(len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec.Set(u, Features(u))
	}
	return rec, nil
}

// Features computes the lexical row for one URL. Unparseable input yields the sentinel row.
func Features(raw string) entity.Features {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return sentinel()
	}

	host := strings.TrimPrefix(utils.CleanHost(u.Hostname()), "www.")
	clean := host + strings.TrimRight(u.EscapedPath(), "/") + u.RawQuery
	ip := utils.IsIP(host)

	return entity.Features{
		ColURLLength:       len(clean),
		ColSubdomains:      subdomainCount(host, ip),
		ColHostnameLength:  len(host),
		ColIP:              boolToInt(ip),
		ColShortener:       boolToInt(isShortener(host)),
		ColHyphens:         strings.Count(clean, "-"),
		ColAtSigns:         strings.Count(clean, "@"),
		ColQueryParameters: queryParamCount(u.RawQuery),
		ColResources:       resourceCount(u.Path),
		ColSuspiciousChars: boolToInt(suspiciousChars.MatchString(clean)),
	}
}

func sentinel() entity.Features {
	row := entity.Features{ColURLLength: 0}
	for _, c := range Columns[1:] {
		row[c] = -1
	}
	return row
}

// subdomainCount counts labels left of the registrable domain, ignoring www.
func subdomainCount(host string, ip bool) int {
	if ip || host == "" {
		return 0
	}
	domain := utils.RegistrableDomain(host)
	if domain == host || !strings.HasSuffix(host, "."+domain) {
		return 0
	}
	n := 0
	for _, label := range strings.Split(strings.TrimSuffix(host, "."+domain), ".") {
		if label != "" && label != "www" {
			n++
		}
	}
	return n
}

// queryParamCount counts distinct parameter names, blank values included.
func queryParamCount(rawQuery string) int {
	if rawQuery == "" {
		return 0
	}
	names := make(map[string]struct{})
	for _, pair := range strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' || r == ';' }) {
		name, _, _ := strings.Cut(pair, "=")
		if name == "" {
			continue
		}
		names[name] = struct{}{}
	}
	return len(names)
}

func resourceCount(path string) int {
	n := 0
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if strings.TrimSpace(seg) != "" {
			n++
		}
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
