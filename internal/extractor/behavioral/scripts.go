package behavioral

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
	"github.com/user/phishguard/pkg/utils"
)

var scriptRiskDetector = detector{
	name: "script_risk",
	columns: []string{
		"inline_scripts", "high_risk_patterns", "medium_risk_patterns", "low_risk_patterns",
		"sus_js_diff_domain", "sus_js_behave_ratio", "risk_patterns_ratio",
	},
	run: detectScriptRisk,
}

func detectScriptRisk(p *page) entity.Features {
	inline := p.inlineScripts()
	high, medium, low := 0, 0, 0
	for _, body := range inline {
		high += countMatching(highRiskPatterns, body)
		medium += countMatching(mediumRiskPatterns, body)
		low += countMatching(lowRiskPatterns, body)
	}

	crossDomain := 0
	p.doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src := attr(s, "src")
		external, known := p.isExternal(src)
		if !known || !external || isKnownSafeScript(src) {
			return
		}
		crossDomain++
	})

	return entity.Features{
		"inline_scripts":       len(inline),
		"high_risk_patterns":   high,
		"medium_risk_patterns": medium,
		"low_risk_patterns":    low,
		"sus_js_diff_domain":   crossDomain,
		"sus_js_behave_ratio":  ratio(crossDomain, len(inline)),
		"risk_patterns_ratio":  ratio(high+medium+low, len(inline)),
	}
}

// countMatching counts how many patterns occur at least once in body.
func countMatching(patterns []*regexp.Regexp, body string) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(body) {
			n++
		}
	}
	return n
}

// isKnownSafeScript matches either the script's full host or its registrable domain.
func isKnownSafeScript(src string) bool {
	d, ok := utils.DomainOf(src)
	if !ok {
		return false
	}
	if _, safe := knownSafeScriptHosts[d]; safe {
		return true
	}
	host, _ := utils.HostOf(src)
	_, safe := knownSafeScriptHosts[host]
	return safe
}
