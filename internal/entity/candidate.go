package entity

import (
	"net/url"
	"strings"

	"github.com/user/phishguard/pkg/utils"
)

// NormalizeURL turns a raw submission into the join key used by every stage.
// The scheme defaults to http, a trailing dot and a leading "www." are removed from the host.
// Input that cannot be parsed comes back trimmed so it still keys its rows.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(utils.WithScheme(raw))
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.TrimSuffix(u.Hostname(), ".")
	if len(host) > 4 && strings.EqualFold(host[:4], "www.") && strings.Contains(host[4:], ".") {
		host = host[4:]
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host

	return u.String()
}

// NormalizeAll normalizes urls and collapses duplicates, keeping first-seen order.
func NormalizeAll(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		key := NormalizeURL(raw)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
