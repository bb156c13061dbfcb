package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"datenwerk/internal/errs"
	"datenwerk/internal/infrastructure/persistence/sqlite/model"
	"datenwerk/internal/ports"
)

type RunRepository struct {
	db *gorm.DB
}

var _ ports.RunRepository = (*RunRepository)(nil)

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *RunRepository) CreateGenerationRun(ctx context.Context, run ports.GenerationRun) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.GenerationRun{
		RunID:                 run.RunID,
		Seed:                  run.Seed,
		ErrorRate:             run.ErrorRate,
		StartDate:             run.StartDate,
		EndDate:               run.EndDate,
		OutputDir:             run.OutputDir,
		Products:              run.Products,
		Customers:             run.Customers,
		SalesOrders:           run.SalesOrders,
		OrderItems:            run.OrderItems,
		InventoryTransactions: run.InventoryTransactions,
		FinancialTransactions: run.FinancialTransactions,
		CreatedAt:             run.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert generation run")
	}
	return nil
}

func (r *RunRepository) ListGenerationRuns(ctx context.Context, limit int) ([]ports.GenerationRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []model.GenerationRun
	if err := db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query generation runs")
	}

	out := make([]ports.GenerationRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.GenerationRun{
			RunID:                 row.RunID,
			Seed:                  row.Seed,
			ErrorRate:             row.ErrorRate,
			StartDate:             row.StartDate,
			EndDate:               row.EndDate,
			OutputDir:             row.OutputDir,
			Products:              row.Products,
			Customers:             row.Customers,
			SalesOrders:           row.SalesOrders,
			OrderItems:            row.OrderItems,
			InventoryTransactions: row.InventoryTransactions,
			FinancialTransactions: row.FinancialTransactions,
			CreatedAt:             row.CreatedAt,
		})
	}
	return out, nil
}

func (r *RunRepository) CreatePipelineRun(ctx context.Context, run ports.PipelineRun) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.PipelineRun{
		RunID:         run.RunID,
		State:         run.State,
		StartedAt:     run.StartedAt,
		TotalRecords:  run.TotalRecords,
		FailureReason: run.FailureReason,
	}
	if run.FinishedAt != "" {
		row.FinishedAt = &run.FinishedAt
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert pipeline run")
	}
	return nil
}

func (r *RunRepository) FinishPipelineRun(ctx context.Context, runID string, state string, finishedAt string, failureReason *string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	res := db.Model(&model.PipelineRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"state":          state,
			"finished_at":    finishedAt,
			"failure_reason": failureReason,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update pipeline run")
	}
	if res.RowsAffected == 0 {
		return ports.ErrPipelineRunNotFound
	}
	return nil
}

func (r *RunRepository) GetPipelineRun(ctx context.Context, runID string) (ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.PipelineRun{}, err
	}

	var row model.PipelineRun
	if err := db.Where("run_id = ?", runID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PipelineRun{}, ports.ErrPipelineRunNotFound
		}
		return ports.PipelineRun{}, errs.Wrap(err, "query pipeline run")
	}
	return mapPipelineRun(row), nil
}

func (r *RunRepository) ListPipelineRuns(ctx context.Context, limit int) ([]ports.PipelineRun, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	var rows []model.PipelineRun
	if err := db.Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query pipeline runs")
	}

	out := make([]ports.PipelineRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapPipelineRun(row))
	}
	return out, nil
}

func (r *RunRepository) AppendStepMetrics(ctx context.Context, metrics []ports.PipelineStepMetric) error {
	if len(metrics) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.PipelineStepMetric, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, model.PipelineStepMetric{
			RunID:          m.RunID,
			Layer:          m.Layer,
			Source:         m.Source,
			Records:        m.Records,
			ValidRecords:   m.ValidRecords,
			InvalidRecords: m.InvalidRecords,
			DurationMicros: m.DurationMicros,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert step metrics")
	}
	return nil
}

func (r *RunRepository) ListStepMetrics(ctx context.Context, runID string) ([]ports.PipelineStepMetric, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.PipelineStepMetric
	if err := db.Where("run_id = ?", runID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query step metrics")
	}

	out := make([]ports.PipelineStepMetric, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.PipelineStepMetric{
			RunID:          row.RunID,
			Layer:          row.Layer,
			Source:         row.Source,
			Records:        row.Records,
			ValidRecords:   row.ValidRecords,
			InvalidRecords: row.InvalidRecords,
			DurationMicros: row.DurationMicros,
		})
	}
	return out, nil
}

func mapPipelineRun(row model.PipelineRun) ports.PipelineRun {
	out := ports.PipelineRun{
		RunID:         row.RunID,
		State:         row.State,
		StartedAt:     row.StartedAt,
		TotalRecords:  row.TotalRecords,
		FailureReason: row.FailureReason,
	}
	if row.FinishedAt != nil {
		out.FinishedAt = *row.FinishedAt
	}
	return out
}
