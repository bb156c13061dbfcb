package ports

import "context"

// LayerSnapshot is one persisted per-layer, per-source pipeline output,
// serialized as JSON so intermediate representations stay inspectable after
// a run ends.
type LayerSnapshot struct {
	RunID   string
	Layer   string
	Source  string
	Payload string
}

// SnapshotStore persists layer snapshots. Adapters may be backed by
// SQLite or other stores.
type SnapshotStore interface {
	Save(ctx context.Context, snap LayerSnapshot) error
	Get(ctx context.Context, runID string, layer string, source string) (payload string, found bool, err error)
	List(ctx context.Context, runID string, layer string) ([]LayerSnapshot, error)
}
