package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/notify"
	"github.com/hamed0406/healthcheck/internal/probe"
	"github.com/hamed0406/healthcheck/internal/repo"
)

var (
	ErrNotStarted    = errors.New("supervisor not started")
	ErrStopped       = errors.New("supervisor stopped")
	ErrInvalidConfig = errors.New("invalid service file")
)

const defaultGrace = 2 * time.Second

type Options struct {
	Logger   *zap.Logger
	Sink     notify.Sink
	Observer Observer
	Clock    Clock

	// Grace bounds how long Replace and Shutdown wait for the old runners.
	Grace time.Duration

	// Store persists accepted replacements. Optional.
	Store repo.ConfigStore

	// NewProbe builds the probe of a check; defaults to probe.New.
	NewProbe func(config.Check) (probe.Probe, error)
}

// runnerSet is one immutable generation of runners. It is never modified
// after publication; Replace builds a new one.
type runnerSet struct {
	file    *config.File
	runners []*Runner
	cancel  context.CancelFunc
	done    chan struct{}
}

// stop retires every runner, so none of them publishes again, then cancels
// the set.
func (set *runnerSet) stop() {
	for _, r := range set.runners {
		r.retire()
	}
	set.cancel()
}

// Supervisor owns the active runner set.
type Supervisor struct {
	opts Options

	mu      sync.Mutex // serializes Start, Replace and Shutdown
	base    context.Context
	stopped bool

	active atomic.Pointer[runnerSet]
}

func NewSupervisor(opts Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Grace <= 0 {
		opts.Grace = defaultGrace
	}
	if opts.NewProbe == nil {
		opts.NewProbe = probe.New
	}
	return &Supervisor{opts: opts}
}

// Start launches one runner per enabled service of f. Runners live until ctx
// is cancelled or Shutdown is called.
func (s *Supervisor) Start(ctx context.Context, f *config.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.active.Load() != nil {
		return errors.New("supervisor already started")
	}
	set, err := s.build(f)
	if err != nil {
		return err
	}
	s.base = ctx
	s.launch(set)
	s.active.Store(set)

	s.opts.Logger.Info("supervisor_started", zap.Int("runners", len(set.runners)))
	return nil
}

// Snapshot returns the status rows of the active set ordered by display name.
// Every row comes from the same generation.
func (s *Supervisor) Snapshot() []domain.ServiceStatus {
	set := s.active.Load()
	if set == nil {
		return nil
	}
	rows := make([]domain.ServiceStatus, 0, len(set.runners))
	for _, r := range set.runners {
		rows = append(rows, r.Status())
	}
	return rows
}

// Config returns the service file of the active set, nil before Start.
// Callers must not modify it.
func (s *Supervisor) Config() *config.File {
	set := s.active.Load()
	if set == nil {
		return nil
	}
	return set.file
}

// Replace swaps the running set for one built from f. An invalid file or a
// failed save leaves the current set running untouched. Runners of the old
// set that outlive the grace period are abandoned.
func (s *Supervisor) Replace(ctx context.Context, f *config.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	old := s.active.Load()
	if old == nil {
		return ErrNotStarted
	}
	if s.base.Err() != nil {
		return ErrStopped
	}

	next, err := s.build(f)
	if err != nil {
		return err
	}
	if s.opts.Store != nil {
		if err := s.opts.Store.Save(ctx, next.file); err != nil {
			return fmt.Errorf("save service file: %w", err)
		}
	}

	s.halt(old)
	s.launch(next)
	s.active.Store(next)

	s.opts.Logger.Info("supervisor_replaced",
		zap.Int("old_runners", len(old.runners)),
		zap.Int("runners", len(next.runners)),
	)
	return nil
}

// Shutdown stops the active set and waits for it until ctx is done. The last
// snapshot stays readable afterwards.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true

	set := s.active.Load()
	if set == nil {
		return nil
	}
	set.stop()
	select {
	case <-set.done:
		s.opts.Logger.Info("supervisor_stopped")
		return nil
	case <-ctx.Done():
		s.opts.Logger.Warn("supervisor_stop_timeout", zap.Strings("pending", pending(set)))
		return ctx.Err()
	}
}

// build validates f and constructs every runner of the new generation
// without starting any of them. The set keeps a normalized copy; f itself
// is never modified.
func (s *Supervisor) build(f *config.File) (*runnerSet, error) {
	if err := config.Validate(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	f = config.Normalized(f)

	defaults := f.Defaults()
	set := &runnerSet{file: f, done: make(chan struct{})}
	for id, svc := range f.Services {
		if !svc.Enabled {
			continue
		}
		p, err := s.opts.NewProbe(svc.Check)
		if err != nil {
			return nil, fmt.Errorf("%w: service %q: %w", ErrInvalidConfig, id, err)
		}
		r := NewRunner(s.opts.Logger, domain.ServiceID(id), svc, defaults, p, s.opts.Sink, s.opts.Clock)
		r.Observer = s.opts.Observer
		set.runners = append(set.runners, r)
	}
	sortRunners(set.runners)
	return set, nil
}

func (s *Supervisor) launch(set *runnerSet) {
	ctx, cancel := context.WithCancel(s.base)
	set.cancel = cancel

	var g errgroup.Group
	for _, r := range set.runners {
		g.Go(func() error { return r.Run(ctx) })
	}
	go func() {
		_ = g.Wait()
		close(set.done)
	}()
}

// halt cancels set and waits at most the grace period for its runners.
func (s *Supervisor) halt(set *runnerSet) {
	set.stop()
	t := time.NewTimer(s.opts.Grace)
	defer t.Stop()
	select {
	case <-set.done:
	case <-t.C:
		s.opts.Logger.Warn("runners_abandoned",
			zap.Strings("pending", pending(set)),
			zap.Duration("grace", s.opts.Grace),
		)
	}
}

func pending(set *runnerSet) []string {
	var ids []string
	for _, r := range set.runners {
		select {
		case <-r.Done():
		default:
			ids = append(ids, string(r.ID))
		}
	}
	return ids
}

// sortRunners orders by case-insensitive name, then name, then id.
func sortRunners(rs []*Runner) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		la, lb := strings.ToLower(a.Service.Name), strings.ToLower(b.Service.Name)
		if la != lb {
			return la < lb
		}
		if a.Service.Name != b.Service.Name {
			return a.Service.Name < b.Service.Name
		}
		return a.ID < b.ID
	})
}
