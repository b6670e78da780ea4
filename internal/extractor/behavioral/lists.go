package behavioral

import "regexp"

var suspiciousWordsRe = regexp.MustCompile(`(?i)(log[\s\-]?in|sign[\s\-]?in|auth|user(name)?|email|phone|account|` +
	`credential|password|passcode|pin|security[\s\-]?code|credit[\s\-]?card|cvv|expiry|iban|bank)`)

var (
	highRiskPatterns = compileAll(
		`eval\s*\(`,
		`new\s+Function\s*\(`,
		`document\.write\s*\(`,
		`onmouseover\s*=`,
		`setTimeout\s*\(\s*['"]`,
	)
	mediumRiskPatterns = compileAll(
		`window\.location`,
		`innerHTML\s*=`,
		`onbeforeunload`,
	)
	lowRiskPatterns = compileAll(
		`navigator\.clipboard`,
		`XMLHttpRequest`,
		`fetch\s*\(`,
	)
)

var (
	faviconExtRe       = regexp.MustCompile(`(?i)\.(ico|png|gif)([\?#].*)?$`)
	rightClickRe       = regexp.MustCompile(`event\s*\.\s*button\s*==\s*2`)
	metaRefreshRe      = regexp.MustCompile(`(?i)<meta\s+http-equiv\s*=\s*["']?refresh["']?`)
	locationRedirectRe = regexp.MustCompile(`(window\.)?location\.(href|replace)`)
)

// suspiciousInputKeywords are matched as substrings of lower-cased input names.
var suspiciousInputKeywords = []string{"login", "signin", "verify", "auth", "password", "2fa", "secure"}

// trackerIframeTokens mark iframes that are ad or analytics plumbing rather than content.
var trackerIframeTokens = []string{"ads", "analytics", "pixel", "tracker", "doubleclick"}

var emptyHrefs = map[string]struct{}{
	"#":                   {},
	"javascript:void(0);": {},
	"javascript:":         {},
}

var blankFormActions = map[string]struct{}{
	"":            {},
	"#":           {},
	"about:blank": {},
}

var knownSafeScriptHosts = toSet(
	"cdnjs.cloudflare.com", "cdn.jsdelivr.net", "ajax.googleapis.com", "fonts.googleapis.com",
	"fonts.gstatic.com", "stackpath.bootstrapcdn.com", "ajax.aspnetcdn.com", "maxcdn.bootstrapcdn.com",
	"code.jquery.com", "cdn.shopify.com", "cdn.wix.com", "unpkg.com", "polyfill.io", "bootstrapcdn.com",
	"gstatic.com", "google.com", "googleapis.com", "microsoft.com", "cloudflare.com", "cloudfront.net",
	"fbcdn.net", "facebook.com", "yahooapis.com", "notion.so", "vercel.app", "netlify.app",
	"res.cloudinary.com",
)

var knownFaviconHosts = []string{
	"google.com", "gstatic.com", "googleusercontent.com", "googleapis.com", "youtube.com", "ytimg.com",
	"apple.com", "microsoft.com", "office.com", "windows.com", "live.com", "microsoftonline.com",
	"adobe.com", "typekit.net", "adobestatic.com", "facebook.com", "fbcdn.net", "instagram.com",
	"cdninstagram.com", "twitter.com", "twimg.com", "linkedin.com", "licdn.com", "pinterest.com",
	"pinimg.com", "reddit.com", "redditstatic.com", "tumblr.com", "cloudflare.com", "jsdelivr.net",
	"shopify.com", "bootstrapcdn.com", "aspnetcdn.com", "akamaihd.net", "akamaized.net", "fastly.net",
	"cloudfront.net", "unpkg.com", "githubusercontent.com", "github.com", "githubassets.com", "wp.com",
	"squarespace.com", "squarespace-cdn.com", "wix.com", "wixstatic.com", "paypal.com", "paypalobjects.com",
	"ebay.com", "ebaystatic.com", "amazon.com", "amazonaws.com", "yahoo.com", "yimg.com", "yahooapis.com",
	"fastly.com", "googletagmanager.com", "googlesyndication.com", "doubleclick.net", "googledomains.com",
	"firebaseio.com", "firebaseapp.com", "notion.so", "notion-static.com", "netlify.app", "vercel.app",
	"cloudinary.com",
}

// Risk patterns run against lower-cased script bodies, so they match case-insensitively.
func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
