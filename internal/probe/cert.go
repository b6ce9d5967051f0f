package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
	"time"
)

// CertificateProbe fails when the peer certificate expires in fewer than
// DaysBeforeExpiry days.
type CertificateProbe struct {
	Host             string
	Port             uint16
	DaysBeforeExpiry uint64
	Timeout          time.Duration

	RootCAs *x509.CertPool // nil uses the system pool
	now     func() time.Time
}

func (c *CertificateProbe) Execute(ctx context.Context) Outcome {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return timed(func() Outcome {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		d := tls.Dialer{
			NetDialer: &net.Dialer{},
			Config: &tls.Config{
				ServerName: c.Host,
				RootCAs:    c.RootCAs,
				MinVersion: tls.VersionTLS12,
			},
		}
		conn, err := d.DialContext(cctx, "tcp", net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))))
		if err != nil {
			return Failed("TLS handshake failed: %v", err)
		}
		defer conn.Close()

		certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
		if len(certs) == 0 {
			return Failed("No peer certificate found")
		}
		return c.evaluate(certs[0].NotAfter)
	})
}

func (c *CertificateProbe) evaluate(notAfter time.Time) Outcome {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	days := int64(notAfter.Sub(now()) / (24 * time.Hour))
	threshold := int64(c.DaysBeforeExpiry)

	switch {
	case days < 0:
		return Failed("Certificate expired %d days ago", -days)
	case notAfter.Before(now()):
		return Failed("Certificate expired")
	case days < threshold:
		return Failed("Certificate expires in %d days (threshold: %d days)", days, threshold)
	}
	return Succeeded("Certificate valid for " + strconv.FormatInt(days, 10) + " days")
}
