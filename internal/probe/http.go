package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

type HTTPProbe struct {
	URL            string
	ExpectedStatus int
	Client         *http.Client
}

func NewHTTPProbe(url string, expected int, timeout time.Duration) *HTTPProbe {
	if expected == 0 {
		expected = http.StatusOK
	}
	return &HTTPProbe{
		URL:            url,
		ExpectedStatus: expected,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (h *HTTPProbe) Execute(ctx context.Context) Outcome {
	return timed(func() Outcome {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
		if err != nil {
			return Failed("Request failed: %v", err)
		}

		resp, err := h.client().Do(req)
		if err != nil {
			return Failed("Request failed: %v", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		if resp.StatusCode != h.ExpectedStatus {
			out := Failed("Unexpected status: %d", resp.StatusCode)
			out.StatusCode = resp.StatusCode
			return out
		}
		out := Succeeded(resp.Status)
		out.StatusCode = resp.StatusCode
		return out
	})
}

func (h *HTTPProbe) client() *http.Client {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return h.Client
}
