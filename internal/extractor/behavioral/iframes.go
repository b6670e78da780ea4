package behavioral

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
)

var iframeDetector = detector{
	name: "iframes",
	columns: []string{
		"iframe_src_count", "iframe_src_hidden", "iframe_src_size", "iframe_src_diff_domain",
		"iframe_src_no_sandbox", "iframe_external_src_ratio",
		"iframe_srcdoc_count", "iframe_srcdoc_hidden", "iframe_srcdoc_scripts", "iframe_srcdoc_sus_words",
		"total_iframes",
	},
	run: detectIframes,
}

func detectIframes(p *page) entity.Features {
	iframes := p.doc.Find("iframe")
	row := detectIframeSrc(p, iframes)
	for k, v := range detectIframeSrcdoc(iframes) {
		row[k] = v
	}
	row["total_iframes"] = row["iframe_src_count"].(int) + row["iframe_srcdoc_count"].(int)
	return row
}

func detectIframeSrc(p *page, iframes *goquery.Selection) entity.Features {
	count, hidden, zeroSize, diff, noSandbox := 0, 0, 0, 0, 0

	iframes.Each(func(_ int, f *goquery.Selection) {
		src := strings.ToLower(attr(f, "src"))
		if src == "" || containsAny(src, trackerIframeTokens) {
			return
		}
		count++

		if external, known := p.isExternal(src); known && external {
			diff++
		}
		if isHiddenStyle(attr(f, "style")) {
			hidden++
		}
		if attr(f, "width") == "0" || attr(f, "height") == "0" {
			zeroSize++
		}
		if _, ok := f.Attr("sandbox"); !ok {
			noSandbox++
		}
	})

	return entity.Features{
		"iframe_src_count":          count,
		"iframe_src_hidden":         hidden,
		"iframe_src_size":           zeroSize,
		"iframe_src_diff_domain":    diff,
		"iframe_src_no_sandbox":     noSandbox,
		"iframe_external_src_ratio": ratio(diff, count),
	}
}

func detectIframeSrcdoc(iframes *goquery.Selection) entity.Features {
	count, hidden, scripts, words := 0, 0, 0, 0

	iframes.Each(func(_ int, f *goquery.Selection) {
		srcdoc := strings.ToLower(attr(f, "srcdoc"))
		if srcdoc == "" {
			return
		}
		count++

		if inner, err := goquery.NewDocumentFromReader(strings.NewReader(srcdoc)); err == nil {
			if suspiciousWordsRe.MatchString(inner.Text()) {
				words++
			}
		}
		if strings.Contains(srcdoc, "<script") || strings.Contains(srcdoc, "javascript:") {
			scripts++
		}
		if isHiddenStyle(srcdoc) {
			hidden++
		}
	})

	return entity.Features{
		"iframe_srcdoc_count":     count,
		"iframe_srcdoc_hidden":    hidden,
		"iframe_srcdoc_scripts":   scripts,
		"iframe_srcdoc_sus_words": words,
	}
}

// isHiddenStyle looks for display:none or visibility:hidden, ignoring whitespace and case.
func isHiddenStyle(style string) bool {
	compact := strings.ToLower(strings.Join(strings.Fields(style), ""))
	return strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden")
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
