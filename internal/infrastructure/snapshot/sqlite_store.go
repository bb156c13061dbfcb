package snapshot

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"datenwerk/internal/errs"
	"datenwerk/internal/infrastructure/persistence/sqlite/model"
	"datenwerk/internal/ports"
)

// SQLiteStore persists per-layer pipeline snapshots so intermediate
// representations survive the process. Rerunning a pipeline over the same
// run id overwrites its snapshots.
type SQLiteStore struct {
	db *gorm.DB
}

var _ ports.SnapshotStore = (*SQLiteStore)(nil)

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, snap ports.LayerSnapshot) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if strings.TrimSpace(snap.RunID) == "" || strings.TrimSpace(snap.Layer) == "" || strings.TrimSpace(snap.Source) == "" {
		return errors.New("run id, layer and source are required")
	}

	row := model.LayerSnapshot{
		RunID:       snap.RunID,
		Layer:       snap.Layer,
		Source:      snap.Source,
		PayloadJSON: snap.Payload,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}, {Name: "layer"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload_json", "created_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert layer snapshot")
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, runID string, layer string, source string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	var row model.LayerSnapshot
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND layer = ? AND source = ?", runID, layer, source).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query layer snapshot")
	}
	return row.PayloadJSON, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, runID string, layer string) ([]ports.LayerSnapshot, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	query := s.db.WithContext(ctx).Where("run_id = ?", runID)
	if strings.TrimSpace(layer) != "" {
		query = query.Where("layer = ?", layer)
	}

	var rows []model.LayerSnapshot
	if err := query.Order("layer asc, source asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query layer snapshots")
	}

	out := make([]ports.LayerSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.LayerSnapshot{
			RunID:   row.RunID,
			Layer:   row.Layer,
			Source:  row.Source,
			Payload: row.PayloadJSON,
		})
	}
	return out, nil
}
