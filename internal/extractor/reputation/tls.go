package reputation

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"time"
)

// TLSChecker dials a host's HTTPS port and inspects the presented certificate.
type TLSChecker struct {
	Port    string
	Timeout time.Duration
	RootCAs *x509.CertPool // nil uses the system pool
}

// NewTLSChecker returns a checker for port 443.
func NewTLSChecker(timeout time.Duration) *TLSChecker {
	return &TLSChecker{Port: "443", Timeout: timeout}
}

// Check returns (exists, valid). A certificate that fails verification still counts as present.
// Connection failures return an error so the caller can apply its sentinel.
func (c *TLSChecker) Check(ctx context.Context, host string) (exists, valid int, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.Timeout},
		Config: &tls.Config{
			ServerName: host,
			RootCAs:    c.RootCAs,
			MinVersion: tls.VersionTLS10,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, c.Port))
	if err != nil {
		var verifyErr *tls.CertificateVerificationError
		var hostErr x509.HostnameError
		var unknownErr x509.UnknownAuthorityError
		var invalidErr x509.CertificateInvalidError
		if errors.As(err, &verifyErr) || errors.As(err, &hostErr) ||
			errors.As(err, &unknownErr) || errors.As(err, &invalidErr) {
			return 1, 0, nil
		}
		return 0, 0, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return 0, 0, nil
	}
	if time.Now().Before(state.PeerCertificates[0].NotAfter) {
		return 1, 1, nil
	}
	return 1, 0, nil
}
