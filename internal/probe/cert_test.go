package probe

import (
	"context"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func tlsTarget(t *testing.T) (*CertificateProbe, *httptest.Server) {
	t.Helper()
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(s.Close)

	host, port, _ := net.SplitHostPort(s.Listener.Addr().String())
	n, _ := strconv.Atoi(port)
	pool := x509.NewCertPool()
	pool.AddCert(s.Certificate())
	return &CertificateProbe{Host: host, Port: uint16(n), Timeout: 2 * time.Second, RootCAs: pool}, s
}

func TestCertificateProbe_ValidCertificate(t *testing.T) {
	p, _ := tlsTarget(t)
	p.DaysBeforeExpiry = 30
	if out := p.Execute(context.Background()); !out.Success {
		t.Fatalf("want success, got %+v", out)
	}
}

func TestCertificateProbe_BelowThreshold(t *testing.T) {
	p, s := tlsTarget(t)
	// the test certificate lives for decades; a threshold past its expiry must fail
	days := uint64(time.Until(s.Certificate().NotAfter)/(24*time.Hour)) + 10
	p.DaysBeforeExpiry = days
	out := p.Execute(context.Background())
	if out.Success {
		t.Fatalf("want failure, got %+v", out)
	}
	if !strings.Contains(out.Message, "threshold") {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestCertificateProbe_UntrustedChainFails(t *testing.T) {
	p, _ := tlsTarget(t)
	p.RootCAs = x509.NewCertPool()
	out := p.Execute(context.Background())
	if out.Success || !strings.HasPrefix(out.Message, "TLS handshake failed") {
		t.Fatalf("want handshake failure, got %+v", out)
	}
}

func TestCertificateProbe_Evaluate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &CertificateProbe{DaysBeforeExpiry: 30, now: func() time.Time { return now }}

	cases := []struct {
		notAfter time.Time
		ok       bool
		prefix   string
	}{
		{now.Add(31 * 24 * time.Hour), true, "Certificate valid"},
		{now.Add(30 * 24 * time.Hour), true, "Certificate valid"},
		{now.Add(29 * 24 * time.Hour), false, "Certificate expires in 29 days"},
		{now.Add(-3 * 24 * time.Hour), false, "Certificate expired 3 days ago"},
	}
	for _, c := range cases {
		out := p.evaluate(c.notAfter)
		if out.Success != c.ok || !strings.HasPrefix(out.Message, c.prefix) {
			t.Fatalf("evaluate(%v) = %+v, want ok=%v prefix %q", c.notAfter, out, c.ok, c.prefix)
		}
	}
}
