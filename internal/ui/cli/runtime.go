package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	coreapp "reqcheck/internal/core/app"
	"reqcheck/internal/core/config"
	"reqcheck/internal/core/ports"
	"reqcheck/internal/data/history"
	"reqcheck/internal/shared/observability"
	"reqcheck/internal/ui/report"
)

var errUsage = errors.New("usage error")

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "reqcheck v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(stderr, opts.ui, opts.verbose)
	defer cleanupLogs()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "path", opts.configPath, "error", err)
		return 1
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		return 1
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	analysis, err := coreapp.NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}

	historyStore, err := openHistoryStoreIfEnabled(cfg)
	if err != nil {
		slog.Error("history setup failed", "path", cfg.History.Path, "error", err)
		return 1
	}
	if historyStore != nil {
		defer historyStore.Close()
		analysis.SetHistory(historyStore)
	}

	result, err := analysis.Scan(ctx, ports.ScanRequest{})
	if err != nil {
		slog.Error("initial scan failed", "dir", cfg.Scan.Dir, "error", err)
		return 1
	}

	if !opts.ui {
		if err := printReport(stdout, cfg, result, opts.show); err != nil {
			slog.Error("failed to print report", "error", err)
			return 1
		}
	}

	if !opts.watch {
		return 0
	}

	if err := runWatch(ctx, analysis, cfg, opts, stdout); err != nil {
		slog.Error("watch mode failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == config.DefaultConfigPath {
		return config.LoadOptional(path)
	}
	return config.Load(path)
}

// applyModeOptions folds command line flags and the positional directory
// into cfg.
func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if len(opts.args) > 1 {
		return fmt.Errorf("%w: expected at most one directory argument, got %d", errUsage, len(opts.args))
	}
	if len(opts.args) == 1 {
		cfg.Scan.Dir = opts.args[0]
	}

	if opts.format != "" {
		format := strings.ToLower(strings.TrimSpace(opts.format))
		if !config.IsValidFormat(format) {
			return fmt.Errorf("%w: --format must be one of %s", errUsage, strings.Join(config.Formats(), ", "))
		}
		cfg.Output.Format = format
	}

	if opts.history {
		cfg.History.Enabled = true
	}
	if opts.ui {
		opts.watch = true
	}
	return nil
}

func openHistoryStoreIfEnabled(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

func printReport(w io.Writer, cfg *config.Config, result ports.ScanResult, show bool) error {
	in := coreapp.ReportInput(result)

	if show {
		if err := report.Show(w, in); err != nil {
			return err
		}
	}

	renderer, err := report.ForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	if _, ok := renderer.(report.TreeRenderer); ok {
		if _, err := result.Dependents.Root(); err != nil {
			slog.Warn("cannot print include tree", "dir", result.Dir, "error", err)
		}
	}
	if err := renderer.Render(w, in); err != nil {
		return err
	}

	if result.Delta != nil {
		if _, err := fmt.Fprintln(w, formatDelta(*result.Delta)); err != nil {
			return err
		}
	}
	return nil
}

func formatDelta(d ports.Delta) string {
	if d.Previous == nil {
		return fmt.Sprintf("history: first recorded scan (%d conflicts in %d files)",
			d.Current.ConflictCount(), d.Current.FileCount)
	}
	return fmt.Sprintf("history: conflicts %+d (now %d), files %+d since %s",
		d.Conflicts, d.Current.ConflictCount(), d.Files, d.Previous.Timestamp.Format("2006-01-02 15:04:05"))
}

func configureLogging(stderr io.Writer, uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := stderr
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "reqcheck", "reqcheck.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "reqcheck", "reqcheck.log")
	}

	return "reqcheck.log"
}
