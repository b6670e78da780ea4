package behavioral

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
)

var resourceDetector = detector{
	name:    "resources",
	columns: []string{"total_resources", "external_resources", "external_request_ratio"},
	run:     detectResources,
}

func detectResources(p *page) entity.Features {
	resources := p.doc.Find("img[src], source[src], audio[src], video[src], embed[src], iframe[src]")
	external := 0
	resources.Each(func(_ int, s *goquery.Selection) {
		if ext, known := p.isExternal(attr(s, "src")); known && ext {
			external++
		}
	})

	return entity.Features{
		"total_resources":        resources.Length(),
		"external_resources":     external,
		"external_request_ratio": ratio(external, resources.Length()),
	}
}
