package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"reqcheck/internal/core/config"
	"reqcheck/internal/core/errors"
	"reqcheck/internal/core/ports"
	"reqcheck/internal/engine/checker"
	"reqcheck/internal/engine/loader"
	"reqcheck/internal/engine/parser"
	"reqcheck/internal/shared/observability"
	"reqcheck/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type App struct {
	Config  *config.Config
	Loader  *loader.Loader
	Parser  *parser.Parser
	history ports.HistoryStore
	limiter *util.Limiter

	// Scans are serialized; watch-mode callbacks and the initial scan share one App.
	scanMu sync.Mutex

	stateMu  sync.RWMutex
	last     *ports.ScanResult
	lastErr  error
	onUpdate func(ports.ScanResult)
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}

	l, err := loader.New(cfg.Scan.Include, cfg.Scan.Exclude)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Loader:  l,
		Parser:  parser.NewParser(cfg.Parser.ReferenceMarkers...),
		limiter: util.NewIntervalLimiter(cfg.Watch.MinInterval),
	}, nil
}

// SetHistory enables snapshot persistence after every scan.
func (a *App) SetHistory(store ports.HistoryStore) {
	a.history = store
}

func (a *App) SetUpdateHandler(handler func(ports.ScanResult)) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.onUpdate = handler
}

// Scan lists, parses and checks one directory.
func (a *App) Scan(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Scan")
	defer span.End()

	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	result, err := a.scan(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.ScansTotal.WithLabelValues("error").Inc()
	} else {
		span.SetAttributes(
			attribute.String("reqcheck.dir", result.Dir),
			attribute.Int("reqcheck.files", len(result.Files)),
			attribute.Int("reqcheck.conflicts", len(result.Check.Conflicts)),
		)
		observability.ScansTotal.WithLabelValues("ok").Inc()
	}

	a.record(result, err)
	return result, err
}

func (a *App) scan(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ScanResult{}, err
	}
	start := time.Now()
	defer func() {
		observability.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	dir := req.Dir
	if dir == "" {
		dir = a.Config.Scan.Dir
	}

	files, err := a.Loader.List(dir)
	if err != nil {
		return ports.ScanResult{}, errors.AddContext(err, errors.CtxOperation, "list")
	}

	parseStart := time.Now()
	tree, dependents, err := a.Parser.Parse(files)
	if err != nil {
		return ports.ScanResult{}, errors.AddContext(err, errors.CtxOperation, "parse")
	}
	observability.ParsingDuration.Observe(time.Since(parseStart).Seconds())

	result := ports.ScanResult{
		Dir:        dir,
		Files:      files,
		Tree:       tree,
		Dependents: dependents,
		Check:      checker.Check(tree),
		ScannedAt:  time.Now().UTC(),
	}

	observability.DeclarationFiles.Set(float64(len(tree)))
	observability.IncludeEdges.Set(float64(dependents.EdgeCount()))
	observability.Conflicts.WithLabelValues(string(checker.KindSelf)).Set(float64(result.Check.Count(checker.KindSelf)))
	observability.Conflicts.WithLabelValues(string(checker.KindAncestor)).Set(float64(result.Check.Count(checker.KindAncestor)))

	slog.Debug("scan complete",
		"dir", dir,
		"files", len(tree),
		"edges", dependents.EdgeCount(),
		"conflicts", len(result.Check.Conflicts),
		"duration", time.Since(start))

	if err := a.WriteOutputs(result); err != nil {
		return result, err
	}

	if a.history != nil {
		delta, err := a.saveSnapshot(result)
		if err != nil {
			// History is advisory; a failed write never hides the report.
			slog.Warn("failed to record history snapshot", "error", err)
		} else {
			result.Delta = delta
		}
	}

	return result, nil
}

func (a *App) saveSnapshot(result ports.ScanResult) (*ports.Delta, error) {
	key, err := filepath.Abs(result.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve history key for %q: %w", result.Dir, err)
	}

	previous, err := a.history.Latest(key)
	if err != nil {
		return nil, err
	}
	current, err := a.history.SaveSnapshot(ports.Snapshot{
		Dir:              key,
		Timestamp:        result.ScannedAt,
		FileCount:        len(result.Tree),
		ModuleCount:      result.Tree.ModuleCount(),
		SelfDupCount:     result.Check.Count(checker.KindSelf),
		AncestorDupCount: result.Check.Count(checker.KindAncestor),
	})
	if err != nil {
		return nil, err
	}

	delta := ports.CompareSnapshots(previous, current)
	return &delta, nil
}

func (a *App) record(result ports.ScanResult, err error) {
	a.stateMu.Lock()
	if err == nil {
		a.last = &result
	}
	a.lastErr = err
	handler := a.onUpdate
	a.stateMu.Unlock()

	if err == nil && handler != nil {
		handler(result)
	}
}

// HandleChanges rescans after the watcher reports changed files. Rescans
// are rate limited; ctx cancellation abandons a pending rescan.
func (a *App) HandleChanges(ctx context.Context, paths []string) (ports.ScanResult, error) {
	slog.Info("detected changes", "count", len(paths))
	if err := a.limiter.Wait(ctx, 1); err != nil {
		return ports.ScanResult{}, err
	}
	return a.Scan(ctx, ports.ScanRequest{})
}

const (
	changeBatchLimit = 16
	changeWait       = time.Second
)

// ProcessChanges drains q until ctx ends or q is closed. Batches that are
// ready together are merged into a single rescan; results reach the update
// handler.
func (a *App) ProcessChanges(ctx context.Context, q ports.ChangeQueue) error {
	for {
		batches, err := q.DequeueBatch(ctx, changeBatchLimit, changeWait)
		if len(batches) > 0 {
			if _, scanErr := a.HandleChanges(ctx, mergePaths(batches)); scanErr != nil && ctx.Err() == nil {
				slog.Error("rescan failed", "error", scanErr)
			}
		}
		if err == io.EOF || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func mergePaths(batches []ports.ChangeBatch) []string {
	seen := make(map[string]struct{})
	for _, b := range batches {
		for _, p := range b.Paths {
			seen[p] = struct{}{}
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Last returns the most recent successful scan, if any.
func (a *App) Last() (ports.ScanResult, bool) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	if a.last == nil {
		return ports.ScanResult{}, false
	}
	return *a.last, true
}

// Health summarizes the last scan for the observability server.
func (a *App) Health() observability.HealthStatus {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	status := observability.HealthStatus{Status: "up"}
	if a.last != nil {
		status.LastScan = a.last.ScannedAt
		status.Files = len(a.last.Tree)
		status.Conflicts = len(a.last.Check.Conflicts)
	}
	if a.lastErr != nil {
		status.Status = "degraded"
		status.Error = a.lastErr.Error()
	}
	return status
}
