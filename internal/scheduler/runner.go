package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/health"
	"github.com/hamed0406/healthcheck/internal/notify"
	"github.com/hamed0406/healthcheck/internal/probe"
)

// Observer receives every status row a runner publishes.
type Observer interface {
	Observe(row domain.ServiceStatus)
}

// Runner drives the repeated probing of one service. Its health state is
// owned by the Run goroutine; readers only see published copies.
type Runner struct {
	ID       domain.ServiceID
	Service  config.Service
	Defaults config.Defaults

	Probe    probe.Probe
	Sink     notify.Sink
	Observer Observer
	Logger   *zap.Logger
	Clock    Clock

	state  health.State
	status atomic.Pointer[domain.ServiceStatus]
	done   chan struct{}

	mu      sync.Mutex // guards retired against emission in step
	retired bool
}

// NewRunner builds a runner for svc and publishes its initial Unknown row.
func NewRunner(
	logger *zap.Logger,
	id domain.ServiceID,
	svc config.Service,
	defaults config.Defaults,
	p probe.Probe,
	sink notify.Sink,
	clock Clock,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	r := &Runner{
		ID:       id,
		Service:  svc,
		Defaults: defaults,
		Probe:    p,
		Sink:     sink,
		Logger:   logger.With(zap.String("service_id", string(id))),
		Clock:    clock,
		done:     make(chan struct{}),
	}
	r.publish()
	return r
}

// Status returns the latest published row. It is safe to call from any
// goroutine.
func (r *Runner) Status() domain.ServiceStatus {
	return *r.status.Load()
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} { return r.done }

// retire stops r from publishing anything further. Once it returns, no
// later probe result reaches the status row, the Observer or the Sink.
func (r *Runner) retire() {
	r.mu.Lock()
	r.retired = true
	r.mu.Unlock()
}

// Run probes the service until ctx is cancelled. An in-flight probe is not
// interrupted; its result is dropped when the stop arrived meanwhile.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	r.Logger.Info("runner_started",
		zap.String("name", r.Service.Name),
		zap.String("check", r.Service.Check.Kind()),
	)
	defer r.Logger.Info("runner_stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		out := r.execute(ctx)
		if ctx.Err() != nil {
			r.Logger.Debug("probe_result_discarded", zap.Bool("success", out.Success))
			return nil
		}

		delay, ok := r.step(ctx, out)
		if !ok {
			r.Logger.Debug("probe_result_discarded", zap.Bool("success", out.Success))
			return nil
		}

		t := r.Clock.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C():
		}
	}
}

// execute makes one probe attempt bounded by the check's own timeout. The
// attempt is detached from ctx so a stop lets it finish instead of cutting
// it off mid-flight.
func (r *Runner) execute(ctx context.Context) probe.Outcome {
	timeout := r.Service.Check.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return r.Probe.Execute(pctx)
}

// step applies out to the health state, publishes the new row, hands a due
// notification to the sink and returns the delay before the next probe.
// It reports false, changing nothing, when r was stopped or retired.
func (r *Runner) step(ctx context.Context, out probe.Outcome) (time.Duration, bool) {
	prev := r.state
	next := health.Apply(prev, out, r.Clock.Now())
	next, decision, due := health.Decide(prev, next, r.thresholds())

	r.mu.Lock()
	if r.retired || ctx.Err() != nil {
		r.mu.Unlock()
		return 0, false
	}
	r.state = next
	row := r.publish()
	if r.Observer != nil {
		r.Observer.Observe(row)
	}
	r.mu.Unlock()

	if out.Success {
		r.Logger.Debug("probe_ok",
			zap.Duration("latency", out.Latency),
			zap.Int("status", out.StatusCode),
		)
	} else {
		r.Logger.Warn("probe_failed",
			zap.String("reason", out.Message),
			zap.Uint64("consecutive_failures", next.ConsecutiveFailures),
			zap.Duration("latency", out.Latency),
		)
	}

	if due && r.Sink != nil {
		ev := notify.NewEvent(r.ID, r.Service.Name, r.Service.Description, decision, next.ConsecutiveFailures, next.LastCheck)
		// delivery outlives a stop so recoveries are not lost on reload
		r.Sink.Send(context.WithoutCancel(ctx), ev)
	}
	return r.NextDelay(next), true
}

// NextDelay picks the success or failure interval for the state just
// reached. A service that has never been probed uses the failure interval.
func (r *Runner) NextDelay(s health.State) time.Duration {
	if s.Status == domain.StatusSuccess {
		return r.Service.SuccessInterval(r.Defaults)
	}
	return r.Service.FailureInterval(r.Defaults)
}

func (r *Runner) thresholds() health.Thresholds {
	return health.Thresholds{
		NotifyFailures: r.Service.NotifyThreshold(r.Defaults),
		Rereport:       r.Service.RereportInterval(r.Defaults),
	}
}

func (r *Runner) publish() domain.ServiceStatus {
	row := r.state.Row(r.ID, r.Service.Name, r.Service.Description)
	r.status.Store(&row)
	return row
}
