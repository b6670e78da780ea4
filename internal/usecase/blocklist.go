package usecase

import (
	"net/url"
	"sort"
	"strings"

	"github.com/user/phishguard/pkg/utils"
)

// BuildBlocklist renders registry URLs as adblock-style rules: a page rule when the
// URL has a path, a whole-host rule otherwise. Output is sorted, unique and
// newline-terminated.
func BuildBlocklist(urls []string) []byte {
	rules := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		if rule, ok := blockRule(raw); ok {
			rules[rule] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(rules))
	for r := range rules {
		sorted = append(sorted, r)
	}
	sort.Strings(sorted)
	return []byte(strings.Join(sorted, "\n") + "\n")
}

func blockRule(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(utils.WithScheme(raw))
	if err != nil {
		return "", false
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", false
	}
	host = strings.TrimPrefix(host, "www.")
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	if u.Path != "" && u.Path != "/" {
		return "||" + host + u.Path + "$document,frame", true
	}
	return "||" + host + "^$all", true
}
