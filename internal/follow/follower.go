package follow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/syncboard"
)

// minInterval keeps a misconfigured follower from spinning.
const minInterval = 100 * time.Millisecond

// Step is the outcome of one slide.
type Step struct {
	// Chart is the name of the followed chart.
	Chart string

	// Range is the window after the slide. It is zero if the window could
	// not be read.
	Range syncboard.Range

	// Moved reports whether the window changed. A window already ending at
	// the tick time is left alone and does not broadcast.
	Moved bool

	// At is the tick time the window was aligned to.
	At time.Time

	// Err contains any error raised while reading or moving the chart.
	Err error
}

// Follower periodically slides a chart's window to end at the current time.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Follower struct {
	name     string
	chart    syncboard.ChartHandle
	interval time.Duration
	locker   sync.Locker
	now      func() time.Time
	steps    chan Step
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// Option configures a [Follower] during construction.
type Option func(*Follower)

// WithLocker serializes every slide with other chart interaction. The
// locker is held for the whole slide, including the broadcast it causes.
func WithLocker(l sync.Locker) Option {
	return func(f *Follower) {
		if l != nil {
			f.locker = l
		}
	}
}

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Follower) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates a [Follower] for the named chart.
//
// The follower must be started with [Follower.Start] and stopped with
// [Follower.Stop]. Slide outcomes are available via [Follower.Steps].
//
// Returns an error if chart is nil or interval is below 100ms.
func New(name string, chart syncboard.ChartHandle, interval time.Duration, logger *slog.Logger, opts ...Option) (*Follower, error) {
	if chart == nil {
		return nil, errors.New("followed chart cannot be nil")
	}
	if interval < minInterval {
		return nil, fmt.Errorf("follow interval must be at least %v, got %v", minInterval, interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Follower{
		name:     name,
		chart:    chart,
		interval: interval,
		locker:   noopLocker{},
		now:      time.Now,
		steps:    make(chan Step, 1),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Steps returns a receive-only channel that emits one [Step] per slide.
//
// The channel is closed when the follower stops. Consumers should read from
// it until it is closed; an unread step blocks the next tick.
func (f *Follower) Steps() <-chan Step {
	return f.steps
}

// Start begins following in a background goroutine.
//
// Start is non-blocking. The follower slides the chart immediately, then on
// every tick until [Follower.Stop] is called or ctx is cancelled.
//
// If ctx is nil, context.Background() is used. Start is idempotent, and a
// no-op after Stop.
func (f *Follower) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started || f.stopped {
		f.mu.Unlock()
		return
	}
	f.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.wg.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.wg.Done()
		defer f.closeOnce.Do(func() { close(f.steps) })

		if !f.emit(runCtx, f.slide()) {
			return
		}

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if !f.emit(runCtx, f.slide()) {
					return
				}
			}
		}
	}()
}

// Stop halts the follower and waits for the loop to exit. The steps
// channel is closed on return.
//
// Stop is idempotent and safe to call before Start.
func (f *Follower) Stop() {
	f.mu.Lock()
	if !f.stopped {
		f.stopped = true
		if f.cancel != nil {
			f.cancel()
		}
	}
	f.mu.Unlock()

	f.wg.Wait()

	// ensure channel is closed even if Start() was never called
	f.closeOnce.Do(func() { close(f.steps) })
}

// Run starts the follower and blocks until ctx is cancelled, logging each
// failed slide. It always returns nil so it can run under an errgroup.
func (f *Follower) Run(ctx context.Context) error {
	f.Start(ctx)
	defer f.Stop()

	for step := range f.steps {
		if step.Err != nil {
			f.logger.Warn("follow step failed", "chart", step.Chart, "error", step.Err)
			continue
		}
		if step.Moved {
			f.logger.Debug("follow step",
				"chart", step.Chart,
				"start_ms", step.Range.StartMillis(),
				"end_ms", step.Range.EndMillis(),
			)
		}
	}
	return nil
}

func (f *Follower) emit(ctx context.Context, s Step) bool {
	select {
	case f.steps <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

// slide moves the chart once while holding the locker.
func (f *Follower) slide() (step Step) {
	f.locker.Lock()
	defer f.locker.Unlock()

	at := f.now()
	step = Step{Chart: f.name, At: at}

	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			f.logger.Error("follow panic",
				"correlation_id", correlationID,
				"chart", f.name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			step.Err = fmt.Errorf("follow panic (correlation_id: %s)", correlationID)
		}
	}()

	current, err := f.chart.CurrentRange()
	if err != nil {
		step.Err = fmt.Errorf("failed to read range of %q: %w", f.name, err)
		return step
	}

	next := current.EndingAt(at)
	if next.Equal(current) {
		step.Range = current
		return step
	}

	if err := f.chart.SetRange(next); err != nil {
		step.Err = fmt.Errorf("failed to move %q: %w", f.name, err)
		return step
	}
	step.Range = next
	step.Moved = true
	return step
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}
