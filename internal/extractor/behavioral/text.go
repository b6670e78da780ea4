package behavioral

import (
	"strings"

	"github.com/user/phishguard/internal/entity"
)

var textSignalDetector = detector{
	name:    "text_signal",
	columns: []string{"nlp_suspicious_words", "nlp_suspicious_density"},
	run:     detectTextSignal,
}

// detectTextSignal counts credential-harvesting vocabulary in the visible text.
func detectTextSignal(p *page) entity.Features {
	body := p.doc.Find("body")
	if body.Length() == 0 {
		body = p.doc.Selection
	}
	visible := body.Clone()
	visible.Find("script, style, noscript, template").Remove()

	text := strings.ToLower(visible.Text())
	matches := len(suspiciousWordsRe.FindAllString(text, -1))

	return entity.Features{
		"nlp_suspicious_words":   matches,
		"nlp_suspicious_density": ratio(matches, len(strings.Fields(text))),
	}
}
