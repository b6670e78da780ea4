package behavioral

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
)

var anchorDetector = detector{
	name:    "anchors",
	columns: []string{"anchor_tags_present", "anchor_empty_href", "anchor_diff_domain", "anchor_diff_ratio"},
	run:     detectAnchors,
}

func detectAnchors(p *page) entity.Features {
	anchors := p.doc.Find("a[href]")
	total, empty, diff := anchors.Length(), 0, 0

	anchors.Each(func(_ int, s *goquery.Selection) {
		href := attr(s, "href")
		if _, ok := emptyHrefs[href]; ok || href == "" {
			empty++
			return
		}
		if external, known := p.isExternal(href); known && external {
			diff++
		}
	})

	return entity.Features{
		"anchor_tags_present": total,
		"anchor_empty_href":   empty,
		"anchor_diff_domain":  diff,
		"anchor_diff_ratio":   ratio(diff, total-empty),
	}
}
