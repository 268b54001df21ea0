package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rigbyspace/operation-goldenrod/internal/config"
)

// loadRunConfig resolves the configuration a run-style command
// executes: the built-in defaults, overlaid by the optional document,
// overlaid by the tick override when it is non-zero.
func loadRunConfig(path string, ticks uint64) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if ticks > 0 {
		cfg.TickCount = ticks
	}
	return cfg, nil
}

// signalContext derives a context that is cancelled by SIGINT or
// SIGTERM, so long runs stop at a microtick boundary instead of dying
// mid-write. The returned cancel releases the signal handler.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
