package behavioral

import (
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/utils"
)

var liveDOMDetector = detector{
	name: "live_dom",
	columns: []string{
		"total_scripts", "external_script",
		"meta_refresh_redirect", "window_location_redirect", "final_url_diff_domain",
		"hidden_forms_count",
	},
	run: detectLiveDOM,
}

// detectLiveDOM reads signals that only exist after the page has executed.
func detectLiveDOM(p *page) entity.Features {
	r := p.rendered

	external := 0
	for _, src := range r.LiveScriptSources {
		if ext, known := p.isExternal(src); known && ext {
			external++
		}
	}

	finalDiff := 0
	if r.FinalURL != "" {
		if d, _ := utils.DomainOf(r.FinalURL); d != p.domain {
			finalDiff = 1
		}
	}

	return entity.Features{
		"total_scripts":            r.LiveScripts,
		"external_script":          external,
		"meta_refresh_redirect":    boolToInt(metaRefreshRe.MatchString(p.lowerHTML)),
		"window_location_redirect": boolToInt(locationRedirectRe.MatchString(p.lowerHTML)),
		"final_url_diff_domain":    finalDiff,
		"hidden_forms_count":       r.LiveHiddenForms,
	}
}
