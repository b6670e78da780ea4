package behavioral

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/utils"
)

// page is the shared, read-only input every detector works from.
type page struct {
	url       string
	domain    string // registrable domain of url, empty if it has none
	doc       *goquery.Document
	lowerHTML string
	rendered  *entity.RenderedPage
}

func newPage(url string, rendered *entity.RenderedPage) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered.HTML))
	if err != nil {
		return nil, err
	}
	domain, _ := utils.DomainOf(url)
	return &page{
		url:       url,
		domain:    domain,
		doc:       doc,
		lowerHTML: strings.ToLower(rendered.HTML),
		rendered:  rendered,
	}, nil
}

// isExternal reports whether ref points at a registrable domain other than the page's.
// known is false for relative references and values that carry no host.
func (p *page) isExternal(ref string) (external, known bool) {
	d, ok := utils.DomainOf(ref)
	if !ok {
		return false, false
	}
	return d != p.domain, true
}

// attr returns the trimmed attribute value.
func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

// inlineScripts returns the bodies of <script> elements without a src, lower-cased.
func (p *page) inlineScripts() []string {
	var out []string
	p.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("src"); ok {
			return
		}
		out = append(out, strings.ToLower(s.Text()))
	})
	return out
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
