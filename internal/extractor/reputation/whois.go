package reputation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/user/phishguard/pkg/utils"
)

const (
	defaultWhoisRoot = "whois.iana.org"
	defaultWhoisPort = "43"
	maxWhoisResponse = 64 << 10
)

var (
	creationDateRe = regexp.MustCompile(`(?i)(Creation Date|created):\s*(\d{4}-\d{2}-\d{2})`)
	expiryDateRe   = regexp.MustCompile(`(?i)(Registry Expiry Date|Registrar Registration Expiration Date|Expiration Date|expires|paid-till):\s*(\d{4}-\d{2}-\d{2})`)

	errNoReferral = errors.New("whois: no referral server for tld")
	errNoDate     = errors.New("whois: no date in response")
)

// WhoisClient speaks the line-based WHOIS protocol: one query line, read until close.
type WhoisClient struct {
	Root    string // referral server queried for the TLD
	Port    string
	Timeout time.Duration
}

// NewWhoisClient returns a client that resolves TLD servers through IANA.
func NewWhoisClient(timeout time.Duration) *WhoisClient {
	return &WhoisClient{Root: defaultWhoisRoot, Port: defaultWhoisPort, Timeout: timeout}
}

// DomainDates holds the dates parsed from a registry answer. Zero values mean "not found".
type DomainDates struct {
	Created time.Time
	Expires time.Time
}

// Lookup queries the authoritative server for the registrable domain of host.
func (c *WhoisClient) Lookup(ctx context.Context, host string) (*DomainDates, error) {
	domain := utils.RegistrableDomain(host)
	if domain == "" || utils.IsIP(domain) {
		return nil, fmt.Errorf("whois: %q has no registrable domain", host)
	}

	server, err := c.referral(ctx, utils.TLD(domain))
	if err != nil {
		return nil, err
	}

	raw, err := c.query(ctx, server, domain)
	if err != nil {
		return nil, err
	}
	return parseDates(raw)
}

func (c *WhoisClient) referral(ctx context.Context, tld string) (string, error) {
	raw, err := c.query(ctx, c.Root, tld)
	if err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) > 6 && strings.EqualFold(line[:6], "whois:") {
			if server := strings.TrimSpace(line[6:]); server != "" {
				return server, nil
			}
		}
	}
	return "", errNoReferral
}

func (c *WhoisClient) query(ctx context.Context, server, q string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(server, c.Port))
	if err != nil {
		return "", fmt.Errorf("whois: dial %s: %w", server, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return "", err
	}
	if _, err := io.WriteString(conn, q+"\r\n"); err != nil {
		return "", fmt.Errorf("whois: write to %s: %w", server, err)
	}

	body, err := io.ReadAll(io.LimitReader(conn, maxWhoisResponse))
	if err != nil && len(body) == 0 {
		return "", fmt.Errorf("whois: read from %s: %w", server, err)
	}
	return string(body), nil
}

func parseDates(raw string) (*DomainDates, error) {
	var dates DomainDates
	if m := creationDateRe.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse("2006-01-02", m[2]); err == nil {
			dates.Created = t
		}
	}
	if m := expiryDateRe.FindStringSubmatch(raw); m != nil {
		if t, err := time.Parse("2006-01-02", m[2]); err == nil {
			dates.Expires = t
		}
	}
	if dates.Created.IsZero() && dates.Expires.IsZero() {
		return nil, errNoDate
	}
	return &dates, nil
}
