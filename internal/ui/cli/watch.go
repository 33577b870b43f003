package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	coreapp "reqcheck/internal/core/app"
	"reqcheck/internal/core/config"
	"reqcheck/internal/core/ports"
	"reqcheck/internal/core/watcher"
	"reqcheck/internal/data/queue"
	"reqcheck/internal/shared/observability"
)

// One pending batch is enough: every rescan reads the whole directory.
const changeQueueCapacity = 1

// runWatch rescans on every debounced batch of changes until ctx ends or,
// in UI mode, the user quits.
func runWatch(ctx context.Context, analysis *coreapp.App, cfg *config.Config, opts cliOptions, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Observability.MetricsAddr != "" {
		server := observability.NewServer(cfg.Observability.MetricsAddr, analysis.Health)
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := server.Stop(stopCtx); err != nil {
				slog.Warn("observability server shutdown failed", "error", err)
			}
		}()
	}

	if !opts.ui {
		analysis.SetUpdateHandler(func(result ports.ScanResult) {
			if err := printReport(stdout, cfg, result, opts.show); err != nil {
				slog.Error("failed to print report", "error", err)
			}
		})
	}

	changes := queue.NewMemoryQueue(changeQueueCapacity)
	defer changes.Close()

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, analysis.Loader.Matches, func(paths []string) {
		if changes.Enqueue(ports.ChangeBatch{Paths: paths, ReceivedAt: time.Now()}) == ports.EnqueueDropped {
			slog.Debug("rescan already pending", "paths", len(paths))
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(cfg.Scan.Dir); err != nil {
		return err
	}
	slog.Info("watching for changes", "dir", cfg.Scan.Dir, "debounce", cfg.Watch.Debounce)

	done := make(chan error, 1)
	go func() {
		done <- analysis.ProcessChanges(ctx, changes)
	}()

	if opts.ui {
		uiErr := runUI(ctx, analysis)
		cancel()
		if err := <-done; err != nil && uiErr == nil {
			return err
		}
		return uiErr
	}

	return <-done
}
