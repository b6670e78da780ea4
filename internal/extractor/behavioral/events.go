package behavioral

import (
	"strings"

	"github.com/user/phishguard/internal/entity"
)

var eventHandlerDetector = detector{
	name:    "event_handlers",
	columns: []string{"onmouseover_scripts", "onmouseover_tags", "right_click_scripts", "right_click_tags"},
	run:     detectEventHandlers,
}

func detectEventHandlers(p *page) entity.Features {
	mouseoverScripts, rightClickScripts := 0, 0
	for _, body := range p.inlineScripts() {
		if strings.Contains(body, "onmouseover") {
			mouseoverScripts++
		}
		if body != "" && (rightClickRe.MatchString(body) || strings.Contains(body, "contextmenu")) {
			rightClickScripts++
		}
	}

	return entity.Features{
		"onmouseover_scripts": mouseoverScripts,
		"onmouseover_tags":    p.doc.Find("[onmouseover]").Length(),
		"right_click_scripts": rightClickScripts,
		"right_click_tags":    p.doc.Find("[oncontextmenu]").Length(),
	}
}
