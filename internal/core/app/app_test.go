package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reqcheck/internal/core/config"
	"reqcheck/internal/core/errors"
	"reqcheck/internal/core/ports"
	"reqcheck/internal/data/history"
	"reqcheck/internal/engine/checker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestApp(t *testing.T, dir string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Scan.Dir = dir
	cfg.Watch.MinInterval = 0
	a, err := NewApp(cfg)
	require.NoError(t, err)
	return a
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "base.txt", "requests==2.31.0\nsix>=1.16\n")
	writeFixture(t, dir, "dev.txt", "-r base.txt\npytest==8.0.0\nrequests==2.31.0\npytest==8.0.0\n")
	writeFixture(t, dir, "notes.md", "requests==1.0\n")
	return dir
}

type memoryHistory struct {
	snapshots []ports.Snapshot
	failSave  error
}

func (m *memoryHistory) SaveSnapshot(s ports.Snapshot) (ports.Snapshot, error) {
	if m.failSave != nil {
		return ports.Snapshot{}, m.failSave
	}
	s.RunID = "run"
	m.snapshots = append(m.snapshots, s)
	return s, nil
}

func (m *memoryHistory) Latest(dir string) (*ports.Snapshot, error) {
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].Dir == dir {
			s := m.snapshots[i]
			return &s, nil
		}
	}
	return nil, nil
}

func TestNewApp_RequiresConfig(t *testing.T) {
	_, err := NewApp(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestNewApp_RejectsBadExclude(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.Exclude = []string{"["}
	_, err := NewApp(cfg)
	require.Error(t, err)
}

func TestScan_FindsConflicts(t *testing.T) {
	dir := fixtureDir(t)
	a := newTestApp(t, dir)

	result, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)

	assert.Equal(t, dir, result.Dir)
	assert.Len(t, result.Files, 2)
	assert.Len(t, result.Tree, 2)
	assert.Equal(t, []string{"dev.txt"}, result.Dependents.Children("base.txt"))
	assert.Empty(t, result.Check.Report["base.txt"])
	assert.Equal(t, []string{
		"pytest is duplicated in same file.",
		"requests is duplicated in (>> base.txt)",
	}, result.Check.Report["dev.txt"])
	assert.Equal(t, 1, result.Check.Count(checker.KindSelf))
	assert.Equal(t, 1, result.Check.Count(checker.KindAncestor))
	assert.Nil(t, result.Delta)

	last, ok := a.Last()
	require.True(t, ok)
	assert.Equal(t, result.ScannedAt, last.ScannedAt)
}

func TestScan_RequestDirOverridesConfig(t *testing.T) {
	a := newTestApp(t, t.TempDir())
	dir := fixtureDir(t)

	result, err := a.Scan(context.Background(), ports.ScanRequest{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, result.Dir)
	assert.Len(t, result.Tree, 2)
}

func TestScan_MissingDirectory(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "missing"))

	_, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	_, ok := a.Last()
	assert.False(t, ok)

	health := a.Health()
	assert.Equal(t, "degraded", health.Status)
	assert.NotEmpty(t, health.Error)
}

func TestScan_CancelledContext(t *testing.T) {
	a := newTestApp(t, fixtureDir(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Scan(ctx, ports.ScanRequest{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_WritesConfiguredOutputs(t *testing.T) {
	dir := fixtureDir(t)
	out := t.TempDir()
	a := newTestApp(t, dir)
	a.Config.Output.TSV = filepath.Join(out, "reports", "conflicts.tsv")
	a.Config.Output.Mermaid = filepath.Join(out, "tree.mmd")

	_, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)

	tsv, err := os.ReadFile(a.Config.Output.TSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tsv), "File\tKind\tModule\tAncestor\tTrail\n"))
	assert.Contains(t, string(tsv), "dev.txt\tancestor\trequests\tbase.txt")

	mermaid, err := os.ReadFile(a.Config.Output.Mermaid)
	require.NoError(t, err)
	assert.Contains(t, string(mermaid), "flowchart TD")
}

func TestScan_RecordsHistoryDelta(t *testing.T) {
	dir := fixtureDir(t)
	a := newTestApp(t, dir)
	store := &memoryHistory{}
	a.SetHistory(store)

	first, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	require.NotNil(t, first.Delta)
	assert.Nil(t, first.Delta.Previous)
	assert.Equal(t, 2, first.Delta.Current.ConflictCount())

	writeFixture(t, dir, "dev.txt", "-r base.txt\npytest==8.0.0\n")
	second, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	require.NotNil(t, second.Delta)
	require.NotNil(t, second.Delta.Previous)
	assert.Equal(t, -2, second.Delta.Conflicts)
	assert.Equal(t, 0, second.Delta.Files)
	assert.Len(t, store.snapshots, 2)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, store.snapshots[0].Dir)
}

func TestScan_HistoryFailureKeepsResult(t *testing.T) {
	a := newTestApp(t, fixtureDir(t))
	a.SetHistory(&memoryHistory{failSave: os.ErrPermission})

	result, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	assert.Nil(t, result.Delta)
	assert.Len(t, result.Check.Conflicts, 2)
}

func TestScan_SQLiteHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	a := newTestApp(t, fixtureDir(t))
	a.SetHistory(store)

	_, err = a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	result, err := a.Scan(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	require.NotNil(t, result.Delta)
	require.NotNil(t, result.Delta.Previous)
	assert.Equal(t, 0, result.Delta.Conflicts)
}

func TestHandleChanges_RescansAndNotifies(t *testing.T) {
	dir := fixtureDir(t)
	a := newTestApp(t, dir)

	var updates []ports.ScanResult
	a.SetUpdateHandler(func(r ports.ScanResult) { updates = append(updates, r) })

	writeFixture(t, dir, "extra.txt", "-r dev.txt\nsix==1.16\n")
	result, err := a.HandleChanges(context.Background(), []string{filepath.Join(dir, "extra.txt")})
	require.NoError(t, err)

	assert.Len(t, result.Tree, 3)
	assert.Equal(t, []string{"six is duplicated in (>> dev.txt >> base.txt)"}, result.Check.Report["extra.txt"])
	require.Len(t, updates, 1)

	health := a.Health()
	assert.Equal(t, "up", health.Status)
	assert.Equal(t, 3, health.Files)
	assert.Equal(t, 3, health.Conflicts)
}

type scriptedQueue struct {
	batches [][]ports.ChangeBatch
}

func (q *scriptedQueue) Enqueue(ports.ChangeBatch) ports.EnqueueResult { return ports.EnqueueDropped }
func (q *scriptedQueue) Close() error                                  { return nil }

func (q *scriptedQueue) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]ports.ChangeBatch, error) {
	if len(q.batches) == 0 {
		return nil, io.EOF
	}
	next := q.batches[0]
	q.batches = q.batches[1:]
	return next, nil
}

func TestProcessChanges_CoalescesReadyBatches(t *testing.T) {
	dir := fixtureDir(t)
	a := newTestApp(t, dir)

	var updates int
	a.SetUpdateHandler(func(ports.ScanResult) { updates++ })

	q := &scriptedQueue{batches: [][]ports.ChangeBatch{
		{{Paths: []string{"dev.txt"}}, {Paths: []string{"base.txt", "dev.txt"}}},
		nil,
		{{Paths: []string{"base.txt"}}},
	}}

	require.NoError(t, a.ProcessChanges(context.Background(), q))
	assert.Equal(t, 2, updates)
}

func TestProcessChanges_StopsOnCancel(t *testing.T) {
	a := newTestApp(t, fixtureDir(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &scriptedQueue{batches: [][]ports.ChangeBatch{{{Paths: []string{"dev.txt"}}}}}
	require.NoError(t, a.ProcessChanges(ctx, q))
}

func TestMergePaths(t *testing.T) {
	got := mergePaths([]ports.ChangeBatch{
		{Paths: []string{"b.txt", "a.txt"}},
		{Paths: []string{"a.txt", "c.txt"}},
	})
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, got)
}
