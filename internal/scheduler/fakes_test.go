package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/notify"
	"github.com/hamed0406/healthcheck/internal/probe"
)

// --- fakes ---

type fakeTimer struct {
	d time.Duration
	c chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }
func (t *fakeTimer) Stop() bool          { return true }

// fire lets the waiting runner proceed.
func (t *fakeTimer) fire() { t.c <- time.Time{} }

// fakeClock hands every timer it creates to the test through timers.
type fakeClock struct {
	now    time.Time
	timers chan *fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC),
		timers: make(chan *fakeTimer, 256),
	}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	t := &fakeTimer{d: d, c: make(chan time.Time, 1)}
	c.timers <- t
	return t
}

// scriptProbe replays outcomes in order and then repeats the last one.
type scriptProbe struct {
	mu    sync.Mutex
	outs  []probe.Outcome
	calls int
}

func (p *scriptProbe) Execute(ctx context.Context) probe.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	if i >= len(p.outs) {
		i = len(p.outs) - 1
	}
	p.calls++
	return p.outs[i]
}

func (p *scriptProbe) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// blockingProbe parks until release is closed, ignoring ctx.
type blockingProbe struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	out     probe.Outcome
}

func newBlockingProbe(out probe.Outcome) *blockingProbe {
	return &blockingProbe{entered: make(chan struct{}), release: make(chan struct{}), out: out}
}

func (p *blockingProbe) Execute(ctx context.Context) probe.Outcome {
	p.once.Do(func() { close(p.entered) })
	<-p.release
	return p.out
}

type recSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *recSink) Send(ctx context.Context, ev notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recSink) Events() []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Event(nil), s.events...)
}

type recObserver struct {
	mu   sync.Mutex
	rows []domain.ServiceStatus
}

func (o *recObserver) Observe(row domain.ServiceStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rows = append(o.rows, row)
}

func (o *recObserver) Rows() []domain.ServiceStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.ServiceStatus(nil), o.rows...)
}

func u64(v uint64) *uint64 { return &v }

func okProbe() probe.Outcome { return probe.Succeeded("200 OK") }

func failProbe() probe.Outcome { return probe.Failed("Unexpected status: %d", 503) }

func tcpService(name string, enabled bool) config.Service {
	return config.Service{
		Enabled: enabled,
		Name:    name,
		Check:   config.Check{TCPPing: &config.TCPPingCheck{Host: "127.0.0.1", Port: 9}},
	}
}

func serviceFile(services map[string]config.Service) *config.File {
	return &config.File{
		CheckIntervalSuccess: 60000,
		CheckIntervalFail:    10000,
		NotifyFailures:       3,
		Rereport:             10,
		Services:             services,
	}
}
