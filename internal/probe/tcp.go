package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

type TCPProbe struct {
	Host    string
	Port    uint16
	Timeout time.Duration
}

func (t *TCPProbe) Execute(ctx context.Context) Outcome {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	return timed(func() Outcome {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var d net.Dialer
		conn, err := d.DialContext(cctx, "tcp", net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port))))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
				return Failed("Timeout after %dms", timeout.Milliseconds())
			}
			return Failed("Connection failed: %v", err)
		}
		_ = conn.Close()
		return Succeeded("connected")
	})
}
