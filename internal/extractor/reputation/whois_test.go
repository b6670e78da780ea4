package reputation

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

// startWhoisServer answers TLD queries with a referral back to itself and
// domain queries with a registry record.
func startWhoisServer(t *testing.T, record string) (host, port string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	host, port, _ = net.SplitHostPort(ln.Addr().String())
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				line, _ := bufio.NewReader(c).ReadString('\n')
				q := strings.TrimSpace(line)
				if !strings.Contains(q, ".") {
					c.Write([]byte("refer:        " + host + "\nwhois:        " + host + "\nstatus: ACTIVE\n"))
					return
				}
				c.Write([]byte(record))
			}(conn)
		}
	}()
	return host, port
}

func TestWhoisLookupFollowsReferral(t *testing.T) {
	t.Parallel()

	host, port := startWhoisServer(t, "Domain Name: EVIL.TEST\r\nCreation Date: 2020-03-01T10:00:00Z\r\nRegistry Expiry Date: 2030-03-01T10:00:00Z\r\n")
	c := &WhoisClient{Root: host, Port: port, Timeout: 2 * time.Second}

	dates, err := c.Lookup(context.Background(), "login.evil.test")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got := dates.Created.Format("2006-01-02"); got != "2020-03-01" {
		t.Fatalf("unexpected creation date %s", got)
	}
	if got := dates.Expires.Format("2006-01-02"); got != "2030-03-01" {
		t.Fatalf("unexpected expiry date %s", got)
	}
}

func TestWhoisLookupWithoutDates(t *testing.T) {
	t.Parallel()

	host, port := startWhoisServer(t, "No match for domain\n")
	c := &WhoisClient{Root: host, Port: port, Timeout: 2 * time.Second}

	if _, err := c.Lookup(context.Background(), "nothing.test"); err == nil {
		t.Fatal("expected an error when the record carries no dates")
	}
}

func TestWhoisLookupRejectsIP(t *testing.T) {
	t.Parallel()

	c := &WhoisClient{Root: "127.0.0.1", Port: "1", Timeout: time.Second}
	if _, err := c.Lookup(context.Background(), "10.0.0.1"); err == nil {
		t.Fatal("expected an error for an IP literal")
	}
}

func TestParseDatesLowercaseCreated(t *testing.T) {
	t.Parallel()

	dates, err := parseDates("domain: example.test\ncreated: 1999-12-31\n")
	if err != nil {
		t.Fatalf("parseDates: %v", err)
	}
	if dates.Created.Year() != 1999 || !dates.Expires.IsZero() {
		t.Fatalf("unexpected dates: %+v", dates)
	}
}
