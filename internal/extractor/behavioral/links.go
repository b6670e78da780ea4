package behavioral

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
)

var linkDensityDetector = detector{
	name: "link_density",
	columns: []string{
		"meta_external", "meta_sus_words", "external_meta_ratio",
		"script_external", "script_sus_words", "external_script_ratio",
		"total_links", "external_link_count", "ratio_extern_link", "total_external",
	},
	run: detectLinkDensity,
}

func detectLinkDensity(p *page) entity.Features {
	metas := p.doc.Find("meta[content]")
	metaExternal, metaWords := 0, 0
	metas.Each(func(_ int, s *goquery.Selection) {
		content := attr(s, "content")
		external, known := p.isExternal(content)
		if !known {
			return
		}
		if external {
			metaExternal++
		}
		metaWords += len(suspiciousWordsRe.FindAllString(strings.ToLower(content), -1))
	})

	scripts := p.doc.Find("script[src]")
	scriptExternal, scriptWords := 0, 0
	scripts.Each(func(_ int, s *goquery.Selection) {
		src := attr(s, "src")
		external, known := p.isExternal(src)
		if !known {
			return
		}
		if external {
			scriptExternal++
		}
		scriptWords += len(suspiciousWordsRe.FindAllString(strings.ToLower(src), -1))
	})

	totalLinks, linkExternal := 0, 0
	p.doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		href := attr(s, "href")
		if href == "" {
			return
		}
		totalLinks++
		if external, known := p.isExternal(href); known && external {
			linkExternal++
		}
	})

	return entity.Features{
		"meta_external":         metaExternal,
		"meta_sus_words":        metaWords,
		"external_meta_ratio":   ratio(metaExternal, metas.Length()),
		"script_external":       scriptExternal,
		"script_sus_words":      scriptWords,
		"external_script_ratio": ratio(scriptExternal, scripts.Length()),
		"total_links":           totalLinks,
		"external_link_count":   linkExternal,
		"ratio_extern_link":     ratio(linkExternal, totalLinks),
		"total_external":        linkExternal + metaExternal + scriptExternal,
	}
}
