package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/internal/board"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	opts := []board.Option{
		board.WithTitle("SyncBoard Demo"),
		board.WithPort(8080),
		board.WithLogger(logger),
		board.WithDashboardOptions(
			syncboard.WithDateWindow(syncboard.Range{
				Start: time.Now().Add(-6 * time.Hour),
				End:   time.Now(),
			}),
			syncboard.WithDateFormatter(syncboard.GranularFormatter()),
			syncboard.WithBroadcastCallback(func(b syncboard.Broadcast) {
				if b.Err != nil {
					logger.Warn("broadcast incomplete", "error", b.Err)
				}
			}),
		),

		// the overview follows every pan, even while hidden
		board.WithChart(board.ChartSpec{Name: "Overview", Reference: true}),
		board.WithChart(board.ChartSpec{Name: "Memory", Hidden: true}),

		// slide the whole dashboard to now every 10s
		board.WithFollow(10*time.Second, "Overview"),
	}

	// one chart per service and region
	for _, svc := range []string{"users", "orders"} {
		for _, region := range []string{"us", "eu"} {
			opts = append(opts, board.WithChart(board.ChartSpec{
				Name:   fmt.Sprintf("Latency %s %s", svc, region),
				Labels: map[string]string{"svc": svc, "region": region},
				Options: syncboard.ChartOptions{
					Legend:              syncboard.Ptr(syncboard.LegendAlways),
					HighlightSeriesOpts: &syncboard.HighlightSeriesOptions{StrokeWidth: 2},
				},
			}))
		}
	}

	sb, err := board.New(opts...)
	if err != nil {
		slog.Error("failed to create syncboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   SyncBoard Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Charts:                                             ║")
	fmt.Println("  ║   • Overview (reference, follows live edge)           ║")
	fmt.Println("  ║   • 4 latency charts (2 services × 2 regions)         ║")
	fmt.Println("  ║   • Memory (hidden, skipped until shown)              ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sb.Start(ctx); err != nil {
		slog.Error("syncboard error", "error", err)
		os.Exit(1)
	}
}
