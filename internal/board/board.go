package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/dashboard"
	"github.com/jpalmerr/syncboard/internal/chart"
	"github.com/jpalmerr/syncboard/internal/follow"
	"github.com/jpalmerr/syncboard/internal/server"
	"github.com/jpalmerr/syncboard/internal/store"
)

const defaultPort = 8080

// entry binds a chart to its dashboard slot.
type entry struct {
	spec    ChartSpec
	chart   *chart.Chart
	tracker *syncboard.Tracker // nil for the reference chart
}

// Board is the standalone synchronized dashboard.
//
// Board is created with [New] and run with [Board.Start]. It implements
// [server.Controller] for the HTTP API.
type Board struct {
	title  string
	port   int
	logger *slog.Logger
	dash   *syncboard.Dashboard
	store  *store.MemoryStore
	follow *followSpec
	server *server.Server

	// loop serializes every chart interaction, like a UI event loop
	loop    sync.Mutex
	entries map[string]*entry
	order   []string
}

// New creates a [Board] with the given options.
//
// At least one chart must be configured via [WithChart]. Chart names must
// be unique, at most one chart may be the reference, and a follow target
// must name a configured chart.
//
// Each chart is built from its options merged with the dashboard defaults,
// so it reports its redraws to the board's dashboard. Non-reference charts
// are registered as trackers right away; they are attached once drawn.
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		port:   defaultPort,
		assets: dashboard.Assets,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.charts) == 0 {
		return nil, errors.New("at least one chart is required")
	}

	seen := make(map[string]bool, len(cfg.charts))
	references := 0
	for _, spec := range cfg.charts {
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate chart name: %q", spec.Name)
		}
		seen[spec.Name] = true
		if spec.Reference {
			references++
		}
	}
	if references > 1 {
		return nil, fmt.Errorf("at most one reference chart is allowed, got %d", references)
	}
	if cfg.follow != nil && !seen[cfg.follow.chart] {
		return nil, fmt.Errorf("follow chart %q is not configured", cfg.follow.chart)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Board{
		title:   cfg.title,
		port:    cfg.port,
		logger:  logger,
		store:   store.NewMemoryStore(),
		follow:  cfg.follow,
		entries: make(map[string]*entry, len(cfg.charts)),
	}

	dashOpts := append([]syncboard.Option{syncboard.WithLogger(logger)}, cfg.dashOpts...)
	dashOpts = append(dashOpts, syncboard.WithBroadcastCallback(b.logBroadcast))
	dash, err := syncboard.New(dashOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}
	b.dash = dash

	for _, spec := range cfg.charts {
		e, err := b.newEntry(spec)
		if err != nil {
			return nil, err
		}
		b.entries[spec.Name] = e
		b.order = append(b.order, spec.Name)
	}

	b.server = server.NewServer(b.store, b, b.port, cfg.assets, b.title, logger)
	return b, nil
}

func (b *Board) newEntry(spec ChartSpec) (*entry, error) {
	opts := spec.Options
	b.dash.ApplyDefaults(&opts)

	chartOpts := []chart.Option{
		chart.WithLabels(copyMap(spec.Labels)),
		chart.WithLabelFunc(b.axisLabel),
	}
	if spec.Reference {
		chartOpts = append(chartOpts, chart.AsReference())
	}

	c, err := chart.New(spec.Name, opts, b.store, chartOpts...)
	if err != nil {
		return nil, fmt.Errorf("chart %q: %w", spec.Name, err)
	}

	e := &entry{spec: spec, chart: c}
	if !spec.Reference {
		e.tracker = b.dash.Track(spec.Name)
		if spec.Hidden {
			e.tracker.Hide()
		}
	}
	return e, nil
}

// axisLabel renders a window bound with the dashboard's formatter at a
// granularity suited to the window width.
func (b *Board) axisLabel(t time.Time, window syncboard.Range) string {
	return b.dash.FormatAxis(t, syncboard.GranularityFor(window.Width()))
}

// Start draws every chart, then runs the follower and the HTTP server
// until ctx is cancelled.
//
// Start is a blocking call. Returns nil on graceful shutdown, or an error
// if a chart cannot be drawn or the HTTP server fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("syncboard starting", "chart_count", len(b.order))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	var follower *follow.Follower
	if b.follow != nil {
		e := b.entries[b.follow.chart]
		f, err := follow.New(e.spec.Name, e.chart, b.follow.interval, b.logger, follow.WithLocker(&b.loop))
		if err != nil {
			return err
		}
		follower = f
	}

	if err := b.drawAll(); err != nil {
		return err
	}
	defer b.closeAll()

	g, gctx := errgroup.WithContext(ctx)

	if err := b.server.Start(gctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.listenPort()))

	if follower != nil {
		b.logger.Info("following live edge", "chart", b.follow.chart, "interval", b.follow.interval.String())
		g.Go(func() error {
			return follower.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err := g.Wait()
	b.logger.Info("syncboard stopped")
	return err
}

// drawAll performs the initial draw of every chart and attaches it to its
// slot. Initial draws do not broadcast.
func (b *Board) drawAll() error {
	b.loop.Lock()
	defer b.loop.Unlock()

	for _, name := range b.order {
		e := b.entries[name]
		e.chart.SetHidden(e.spec.Hidden)
		if err := e.chart.Draw(); err != nil {
			return fmt.Errorf("failed to draw chart %q: %w", name, err)
		}
		if e.tracker != nil {
			e.tracker.Attach(e.chart)
		} else {
			b.dash.SetReference(e.chart)
		}
	}
	return nil
}

// closeAll tears down every chart and releases the dashboard slots.
func (b *Board) closeAll() {
	b.loop.Lock()
	defer b.loop.Unlock()

	for _, name := range b.order {
		e := b.entries[name]
		if e.tracker != nil {
			e.tracker.Detach()
			b.dash.Untrack(e.tracker)
		}
		e.chart.Close()
	}
	b.dash.SetReference(nil)
}

func (b *Board) logBroadcast(bc syncboard.Broadcast) {
	b.logger.Debug("charts synchronized",
		"start_ms", bc.Range.StartMillis(),
		"end_ms", bc.Range.EndMillis(),
		"targets", bc.Targets,
		"skipped", bc.Skipped,
	)
}

// Pan implements [server.Controller]. It moves the named chart as a user
// drag would; the chart's redraw hook broadcasts the window.
func (b *Board) Pan(_ context.Context, name string, r syncboard.Range) (store.ChartState, error) {
	b.loop.Lock()
	defer b.loop.Unlock()

	e, err := b.lookup(name)
	if err != nil {
		return store.ChartState{}, err
	}
	if err := e.chart.SetRange(r); err != nil {
		return store.ChartState{}, err
	}

	state, _ := b.store.Get(name)
	return state, nil
}

// SetHidden implements [server.Controller]. Hiding the reference chart only
// changes its published state; it keeps receiving broadcasts.
func (b *Board) SetHidden(_ context.Context, name string, hidden bool) (store.ChartState, error) {
	b.loop.Lock()
	defer b.loop.Unlock()

	e, err := b.lookup(name)
	if err != nil {
		return store.ChartState{}, err
	}

	if e.tracker != nil {
		if hidden {
			e.tracker.Hide()
		} else {
			e.tracker.Show()
		}
	}
	e.spec.Hidden = hidden
	e.chart.SetHidden(hidden)

	state, ok := b.store.Get(name)
	if !ok {
		// not drawn yet
		state = store.ChartState{Name: name, Reference: e.spec.Reference}
	}
	state.Hidden = hidden
	return state, nil
}

// Options implements [server.Controller].
func (b *Board) Options(_ context.Context, name string) (syncboard.ChartOptions, error) {
	b.loop.Lock()
	defer b.loop.Unlock()

	e, err := b.lookup(name)
	if err != nil {
		return syncboard.ChartOptions{}, err
	}
	return e.chart.Options(), nil
}

func (b *Board) lookup(name string) (*entry, error) {
	e, ok := b.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", server.ErrUnknownChart, name)
	}
	return e, nil
}

// Dashboard returns the board's dashboard.
func (b *Board) Dashboard() *syncboard.Dashboard {
	return b.dash
}

// Store returns the chart-state store.
func (b *Board) Store() store.Store {
	return b.store
}

// Charts returns the chart names in configuration order.
func (b *Board) Charts() []string {
	cp := make([]string, len(b.order))
	copy(cp, b.order)
	return cp
}

// Port returns the configured HTTP port.
func (b *Board) Port() int {
	return b.port
}

// Addr returns the HTTP listening address, or nil before the server starts.
func (b *Board) Addr() net.Addr {
	return b.server.Addr()
}

func (b *Board) listenPort() int {
	if tcp, ok := b.server.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return b.port
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
