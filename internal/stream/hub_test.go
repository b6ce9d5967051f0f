package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/health"
	"github.com/hamed0406/healthcheck/internal/notify"
)

func startHub(t *testing.T, origins []string) (*Hub, *httptest.Server) {
	t.Helper()
	h := New(zaptest.NewLogger(t), origins)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnect))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-h.done
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
}

func TestHub_BroadcastsStatusAndAlerts(t *testing.T) {
	h, srv := startHub(t, nil)
	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	h.Observe(domain.ServiceStatus{ID: "api", Name: "API", State: domain.StatusFailure, ConsecutiveFailures: 2})
	h.Send(context.Background(), notify.NewEvent("api", "API", "", health.Decision{Kind: health.EventAlert, Detail: "down"}, 3, time.Now()))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first struct {
		Type      string               `json:"type"`
		ServiceID string               `json:"serviceId"`
		Payload   domain.ServiceStatus `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&first))
	require.Equal(t, TypeStatus, first.Type)
	require.Equal(t, "api", first.ServiceID)
	require.Equal(t, domain.StatusFailure, first.Payload.State)

	var second struct {
		Type    string       `json:"type"`
		Payload notify.Event `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&second))
	require.Equal(t, TypeAlert, second.Type)
	require.Equal(t, "alert", second.Payload.KindName)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	_, srv := startHub(t, []string{"https://status.example.com"})

	_, resp, err := dial(t, srv, "https://evil.example.net")
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, "https://status.example.com")
	require.NoError(t, err)
	conn.Close()

	conn, _, err = dial(t, srv, "http://localhost:5173")
	require.NoError(t, err)
	conn.Close()
}

func TestHub_PublishWithoutClientsDoesNotBlock(t *testing.T) {
	h := New(nil, nil) // not running
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Observe(domain.ServiceStatus{ID: "api"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked")
	}
}
