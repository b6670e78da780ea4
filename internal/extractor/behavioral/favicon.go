package behavioral

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/utils"
)

var faviconDetector = detector{
	name:    "favicon",
	columns: []string{"has_icon", "favicon_diff_domain", "favicon_invalid_ext"},
	run:     detectFavicon,
}

func detectFavicon(p *page) entity.Features {
	seen := make(map[string]struct{})
	var hrefs []string
	p.doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		if !strings.Contains(strings.ToLower(attr(s, "rel")), "icon") {
			return
		}
		href := attr(s, "href")
		if href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		hrefs = append(hrefs, href)
	})

	diff, badExt := 0, 0
	for _, href := range hrefs {
		external, known := p.isExternal(href)
		if !known || isKnownFaviconHost(href) {
			continue
		}
		if external {
			diff++
		}
		if !faviconExtRe.MatchString(href) {
			badExt++
		}
	}
	return entity.Features{
		"has_icon":            boolToInt(len(hrefs) > 0),
		"favicon_diff_domain": diff,
		"favicon_invalid_ext": badExt,
	}
}

func isKnownFaviconHost(ref string) bool {
	d, _ := utils.DomainOf(ref)
	for _, safe := range knownFaviconHosts {
		if d == safe || strings.HasSuffix(d, "."+safe) {
			return true
		}
	}
	return false
}
