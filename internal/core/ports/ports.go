package ports

import (
	"context"
	"time"

	"reqcheck/internal/engine/checker"
	"reqcheck/internal/engine/graph"
)

// HistoryStore abstracts snapshot persistence for scan-to-scan deltas.
type HistoryStore interface {
	SaveSnapshot(snapshot Snapshot) (Snapshot, error)
	Latest(dir string) (*Snapshot, error)
}

// Snapshot is the summary of one scan of one directory.
type Snapshot struct {
	SchemaVersion    int       `json:"schema_version"`
	RunID            string    `json:"run_id"`
	Dir              string    `json:"dir"`
	Timestamp        time.Time `json:"timestamp"`
	FileCount        int       `json:"file_count"`
	ModuleCount      int       `json:"module_count"`
	SelfDupCount     int       `json:"self_dup_count"`
	AncestorDupCount int       `json:"ancestor_dup_count"`
}

func (s Snapshot) ConflictCount() int {
	return s.SelfDupCount + s.AncestorDupCount
}

// Delta compares a snapshot with the one recorded before it.
type Delta struct {
	Previous  *Snapshot
	Current   Snapshot
	Conflicts int
	Files     int
}

func CompareSnapshots(previous *Snapshot, current Snapshot) Delta {
	d := Delta{Previous: previous, Current: current}
	if previous == nil {
		return d
	}
	d.Conflicts = current.ConflictCount() - previous.ConflictCount()
	d.Files = current.FileCount - previous.FileCount
	return d
}

// ScanRequest defines a scan operation request for driving adapters.
// An empty Dir scans the configured directory.
type ScanRequest struct {
	Dir string
}

// ScanResult is everything one scan produced.
type ScanResult struct {
	Dir        string
	Files      []string
	Tree       graph.Tree
	Dependents graph.Dependents
	Check      checker.Result
	Delta      *Delta
	ScannedAt  time.Time
}

// ChangeBatch is one debounced group of changed declaration files.
type ChangeBatch struct {
	Paths      []string
	ReceivedAt time.Time
}

type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	// EnqueueDropped means the queue is full or closed. A full queue
	// already holds a pending rescan, so the batch is not lost work.
	EnqueueDropped EnqueueResult = "dropped"
)

// ChangeQueue decouples the file watcher from rescans.
type ChangeQueue interface {
	Enqueue(batch ChangeBatch) EnqueueResult
	DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]ChangeBatch, error)
	Close() error
}
