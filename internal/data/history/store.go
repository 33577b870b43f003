package history

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"reqcheck/internal/core/ports"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5

	// Fixed width so ts_utc sorts chronologically as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var _ ports.HistoryStore = (*Store)(nil)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveSnapshot stores the snapshot, filling in a run ID and timestamp when
// missing, and returns what was written.
func (s *Store) SaveSnapshot(snapshot ports.Snapshot) (ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(snapshot.Dir) == "" {
		return snapshot, fmt.Errorf("snapshot dir must not be empty")
	}
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return snapshot, fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO snapshots (
  run_id, dir, schema_version, ts_utc, file_count, module_count, self_dup_count, ancestor_dup_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`
	err := s.withRetry("save snapshot", func() error {
		_, err := s.db.Exec(
			query,
			snapshot.RunID,
			snapshot.Dir,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(timestampLayout),
			snapshot.FileCount,
			snapshot.ModuleCount,
			snapshot.SelfDupCount,
			snapshot.AncestorDupCount,
		)
		return err
	})
	return snapshot, err
}

// LoadSnapshots returns the snapshots of dir at or after since, oldest first.
func (s *Store) LoadSnapshots(dir string, since time.Time) ([]ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := `
SELECT run_id, dir, schema_version, ts_utc, file_count, module_count, self_dup_count, ancestor_dup_count
FROM snapshots
WHERE dir = ?`
	args := []any{dir}
	if !since.IsZero() {
		base += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(timestampLayout))
	}
	base += " ORDER BY ts_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.Query(base, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]ports.Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

// Latest returns the most recent snapshot of dir, or nil when none exists.
func (s *Store) Latest(dir string) (*ports.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT run_id, dir, schema_version, ts_utc, file_count, module_count, self_dup_count, ancestor_dup_count
FROM snapshots
WHERE dir = ?
ORDER BY ts_utc DESC, run_id DESC
LIMIT 1`

	var (
		snapshot ports.Snapshot
		found    bool
	)
	err := s.withRetry("load latest snapshot", func() error {
		var scanErr error
		snapshot, scanErr = scanSnapshot(s.db.QueryRow(query, dir))
		found = scanErr == nil
		if stderrors.Is(scanErr, sql.ErrNoRows) {
			return nil
		}
		return scanErr
	})
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (ports.Snapshot, error) {
	var (
		tsRaw    string
		snapshot ports.Snapshot
	)
	if err := row.Scan(
		&snapshot.RunID,
		&snapshot.Dir,
		&snapshot.SchemaVersion,
		&tsRaw,
		&snapshot.FileCount,
		&snapshot.ModuleCount,
		&snapshot.SelfDupCount,
		&snapshot.AncestorDupCount,
	); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return ports.Snapshot{}, err
		}
		return ports.Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
	}

	ts, err := time.Parse(timestampLayout, tsRaw)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
	}
	snapshot.Timestamp = ts.UTC()
	return snapshot, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
