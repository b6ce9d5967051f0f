package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/hamed0406/healthcheck/internal/config"
)

// Outcome is the result of exactly one probe attempt.
//
// Fields:
//   - Message: human-readable failure reason; a short status line on success.
//   - StatusCode: HTTP status when available; 0 for every other probe and for
//     transport errors.
type Outcome struct {
	Success    bool
	Message    string
	StatusCode int
	Latency    time.Duration
}

func Succeeded(msg string) Outcome { return Outcome{Success: true, Message: msg} }

func Failed(format string, args ...any) Outcome {
	return Outcome{Message: fmt.Sprintf(format, args...)}
}

// Probe is implemented by every check variant (HTTP, TCP, certificate, DNS).
// Execute makes a single attempt and must return once its own timeout has
// elapsed, even when ctx carries no deadline.
type Probe interface {
	Execute(ctx context.Context) Outcome
}

// New builds the probe selected by c.
func New(c config.Check) (Probe, error) {
	switch {
	case c.HTTP != nil:
		return NewHTTPProbe(c.HTTP.URL, c.HTTP.Expected(), c.HTTP.Timeout()), nil
	case c.TCPPing != nil:
		return &TCPProbe{
			Host:    c.TCPPing.Host,
			Port:    c.TCPPing.Port,
			Timeout: c.TCPPing.Timeout(),
		}, nil
	case c.Certificate != nil:
		return &CertificateProbe{
			Host:             c.Certificate.Host,
			Port:             c.Certificate.Port,
			DaysBeforeExpiry: c.Certificate.Threshold(),
			Timeout:          c.Certificate.Timeout(),
		}, nil
	case c.DNS != nil:
		return &DNSProbe{Host: c.DNS.Host, Timeout: c.DNS.Timeout()}, nil
	}
	return nil, config.ErrNoCheck
}

// timed runs fn and stamps the elapsed time on its outcome.
func timed(fn func() Outcome) Outcome {
	start := time.Now()
	out := fn()
	out.Latency = time.Since(start)
	return out
}
