package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HashKey creates a SHA256 hash of a string.
// This is useful for creating consistent, safe keys for Redis.
func HashKey(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// CleanHost lower-cases a hostname and strips a trailing dot and IPv6 brackets.
func CleanHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return host
}

// IsIP reports whether host is an IPv4 or IPv6 literal.
func IsIP(host string) bool {
	return net.ParseIP(CleanHost(host)) != nil
}

// RegistrableDomain returns the eTLD+1 of host using the public suffix list.
// IP literals and hosts without a registrable part are returned cleaned but unchanged.
func RegistrableDomain(host string) string {
	host = CleanHost(host)
	if host == "" || IsIP(host) {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// HostOf returns the cleaned host of an absolute or protocol-relative URL.
func HostOf(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := CleanHost(u.Hostname())
	return host, host != ""
}

// DomainOf extracts the registrable domain of an absolute or protocol-relative URL.
// Relative references, data URIs and values without a dotted host report ok=false.
func DomainOf(raw string) (string, bool) {
	host, ok := HostOf(raw)
	if !ok {
		return "", false
	}
	if IsIP(host) {
		return host, true
	}
	if !strings.Contains(host, ".") {
		return "", false
	}
	return RegistrableDomain(host), true
}

// TLD returns the last label of host.
func TLD(host string) string {
	host = CleanHost(host)
	if i := strings.LastIndex(host, "."); i >= 0 {
		return host[i+1:]
	}
	return host
}

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://`)

// WithScheme prefixes http:// unless raw already starts with a scheme. A "://"
// later in the string, e.g. inside a redirect parameter, does not count.
func WithScheme(raw string) string {
	if schemePrefix.MatchString(raw) {
		return raw
	}
	return "http://" + strings.TrimPrefix(raw, "//")
}
