package behavioral

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/phishguard/internal/entity"
)

var formDetector = detector{
	name: "sfh",
	columns: []string{
		"sfh_total_forms", "sfh_blank_action", "sfh_diff_domain", "sfh_password_inputs", "sfh_suspicious_inputs",
	},
	run: detectForms,
}

func detectForms(p *page) entity.Features {
	forms := p.doc.Find("form")
	blank, diff, passwords, suspicious := 0, 0, 0, 0

	forms.Each(func(_ int, form *goquery.Selection) {
		action := strings.ToLower(attr(form, "action"))
		if _, ok := blankFormActions[action]; ok {
			blank++
		} else if external, known := p.isExternal(action); known && external {
			diff++
		}

		form.Find("input").Each(func(_ int, in *goquery.Selection) {
			if strings.ToLower(attr(in, "type")) == "password" {
				passwords++
			}
			name := strings.ToLower(attr(in, "name"))
			for _, kw := range suspiciousInputKeywords {
				if strings.Contains(name, kw) {
					suspicious++
					break
				}
			}
		})
	})

	return entity.Features{
		"sfh_total_forms":       forms.Length(),
		"sfh_blank_action":      blank,
		"sfh_diff_domain":       diff,
		"sfh_password_inputs":   passwords,
		"sfh_suspicious_inputs": suspicious,
	}
}
