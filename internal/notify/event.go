package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/health"
)

// Event is one alert or recovery raised by a runner.
type Event struct {
	ID                  string           `json:"id"`
	ServiceID           domain.ServiceID `json:"service_id"`
	ServiceName         string           `json:"service_name"`
	ServiceDescription  string           `json:"service_description"`
	Kind                health.EventKind `json:"-"`
	KindName            string           `json:"kind"`
	Detail              string           `json:"detail,omitempty"`
	ConsecutiveFailures uint64           `json:"consecutive_failures"`
	At                  time.Time        `json:"at"`
}

// NewEvent stamps a fresh id on the decision taken for a service.
func NewEvent(id domain.ServiceID, name, description string, d health.Decision, failures uint64, at time.Time) Event {
	return Event{
		ID:                  uuid.NewString(),
		ServiceID:           id,
		ServiceName:         name,
		ServiceDescription:  description,
		Kind:                d.Kind,
		KindName:            d.Kind.String(),
		Detail:              d.Detail,
		ConsecutiveFailures: failures,
		At:                  at,
	}
}

func (e Event) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("event_id", e.ID)
	enc.AddString("service_id", string(e.ServiceID))
	enc.AddString("service", e.ServiceName)
	enc.AddString("kind", e.Kind.String())
	enc.AddUint64("consecutive_failures", e.ConsecutiveFailures)
	if e.Detail != "" {
		enc.AddString("detail", e.Detail)
	}
	return nil
}

// Sink accepts events. Delivery is fire-and-forget: implementations handle
// and log their own failures.
type Sink interface {
	Send(ctx context.Context, ev Event)
}

// Sinks fans an event out to several sinks in order.
type Sinks []Sink

func (s Sinks) Send(ctx context.Context, ev Event) {
	for _, sink := range s {
		if sink != nil {
			sink.Send(ctx, ev)
		}
	}
}

// Dispatcher composes alert messages and hands them to a transport.
type Dispatcher struct {
	Logger   *zap.Logger
	Notifier Notifier
}

func NewDispatcher(logger *zap.Logger, n Notifier) *Dispatcher {
	return &Dispatcher{Logger: logger, Notifier: n}
}

func (d *Dispatcher) Send(ctx context.Context, ev Event) {
	title, text := Compose(ev)
	d.Logger.Info("notify", zap.Object("event", ev))
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.Send(ctx, title, text); err != nil {
		d.Logger.Error("notify_failed",
			zap.String("event_id", ev.ID),
			zap.String("service", ev.ServiceName),
			zap.Error(err),
		)
	}
}

// Compose renders the title and body for ev.
func Compose(ev Event) (string, string) {
	title := "🚨 Alert: " + ev.ServiceName
	if ev.Kind == health.EventRecovered {
		title = "✅ Recovery: " + ev.ServiceName
	}

	var b strings.Builder
	if ev.ServiceDescription != "" {
		b.WriteString(ev.ServiceDescription)
		b.WriteString("\n")
	}
	if ev.Detail != "" {
		b.WriteString(ev.Detail)
		b.WriteString("\n")
	}
	if ev.Kind != health.EventRecovered {
		fmt.Fprintf(&b, "Consecutive failures: %d\n", ev.ConsecutiveFailures)
	}
	b.WriteString("Checked: " + ev.At.UTC().Format(time.RFC3339))
	return title, b.String()
}
