package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"datenwerk/internal/infrastructure/persistence/sqlite/model"
	"datenwerk/internal/ports"
)

func setupRunRepository(t *testing.T) *RunRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "datenwerk.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.GenerationRun{}, &model.PipelineRun{}, &model.PipelineStepMetric{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewRunRepository(db)
}

func TestGenerationRunRoundTrip(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	run := ports.GenerationRun{
		RunID:                 "gen-1",
		Seed:                  42,
		ErrorRate:             0.15,
		StartDate:             "2023-01-01",
		EndDate:               "2024-12-31",
		OutputDir:             "data",
		Products:              100,
		Customers:             200,
		SalesOrders:           1000,
		OrderItems:            2900,
		InventoryTransactions: 2000,
		FinancialTransactions: 860,
		CreatedAt:             now,
	}
	if err := repo.CreateGenerationRun(ctx, run); err != nil {
		t.Fatalf("CreateGenerationRun() error = %v", err)
	}

	runs, err := repo.ListGenerationRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListGenerationRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListGenerationRuns() len = %d", len(runs))
	}
	if runs[0] != run {
		t.Fatalf("ListGenerationRuns() = %+v, want %+v", runs[0], run)
	}
}

func TestListGenerationRunsNewestFirstWithLimit(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		run := ports.GenerationRun{
			RunID:     fmt.Sprintf("gen-%d", i),
			StartDate: "2023-01-01",
			EndDate:   "2024-12-31",
			OutputDir: "data",
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := repo.CreateGenerationRun(ctx, run); err != nil {
			t.Fatalf("CreateGenerationRun() error = %v", err)
		}
	}

	runs, err := repo.ListGenerationRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListGenerationRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListGenerationRuns() len = %d", len(runs))
	}
	if runs[0].RunID != "gen-4" || runs[1].RunID != "gen-3" {
		t.Fatalf("ListGenerationRuns() order = %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestPipelineRunLifecycle(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()
	startedAt := time.Now().UTC().Format(time.RFC3339Nano)

	if err := repo.CreatePipelineRun(ctx, ports.PipelineRun{
		RunID:        "run-1",
		State:        "idle",
		StartedAt:    startedAt,
		TotalRecords: 6020,
	}); err != nil {
		t.Fatalf("CreatePipelineRun() error = %v", err)
	}

	got, err := repo.GetPipelineRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetPipelineRun() error = %v", err)
	}
	if got.State != "idle" || got.FinishedAt != "" || got.FailureReason != nil {
		t.Fatalf("GetPipelineRun() = %+v", got)
	}

	finishedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if err := repo.FinishPipelineRun(ctx, "run-1", "complete", finishedAt, nil); err != nil {
		t.Fatalf("FinishPipelineRun() error = %v", err)
	}

	got, err = repo.GetPipelineRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetPipelineRun() error = %v", err)
	}
	if got.State != "complete" || got.FinishedAt != finishedAt {
		t.Fatalf("GetPipelineRun() after finish = %+v", got)
	}
}

func TestFinishPipelineRunRecordsFailureReason(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	if err := repo.CreatePipelineRun(ctx, ports.PipelineRun{
		RunID:     "run-2",
		State:     "idle",
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		t.Fatalf("CreatePipelineRun() error = %v", err)
	}

	reason := "persist gold snapshots (stage gold): snapshot store unavailable"
	if err := repo.FinishPipelineRun(ctx, "run-2", "failed", time.Now().UTC().Format(time.RFC3339Nano), &reason); err != nil {
		t.Fatalf("FinishPipelineRun() error = %v", err)
	}

	got, err := repo.GetPipelineRun(ctx, "run-2")
	if err != nil {
		t.Fatalf("GetPipelineRun() error = %v", err)
	}
	if got.State != "failed" || got.FailureReason == nil || *got.FailureReason != reason {
		t.Fatalf("GetPipelineRun() = %+v", got)
	}
}

func TestPipelineRunNotFound(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	if _, err := repo.GetPipelineRun(ctx, "missing"); !errors.Is(err, ports.ErrPipelineRunNotFound) {
		t.Fatalf("GetPipelineRun() error = %v", err)
	}
	if err := repo.FinishPipelineRun(ctx, "missing", "complete", time.Now().UTC().Format(time.RFC3339Nano), nil); !errors.Is(err, ports.ErrPipelineRunNotFound) {
		t.Fatalf("FinishPipelineRun() error = %v", err)
	}
}

func TestStepMetricsRoundTrip(t *testing.T) {
	repo := setupRunRepository(t)
	ctx := context.Background()

	metrics := []ports.PipelineStepMetric{
		{RunID: "run-3", Layer: "bronze", Source: "products", Records: 100, DurationMicros: 120},
		{RunID: "run-3", Layer: "silver", Source: "sales_orders", Records: 1000, ValidRecords: 870, InvalidRecords: 130, DurationMicros: 950},
		{RunID: "other", Layer: "bronze", Source: "products", Records: 5, DurationMicros: 10},
	}
	if err := repo.AppendStepMetrics(ctx, metrics); err != nil {
		t.Fatalf("AppendStepMetrics() error = %v", err)
	}

	got, err := repo.ListStepMetrics(ctx, "run-3")
	if err != nil {
		t.Fatalf("ListStepMetrics() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListStepMetrics() len = %d", len(got))
	}
	if got[0].Layer != "bronze" || got[1].Layer != "silver" {
		t.Fatalf("ListStepMetrics() order: %s, %s", got[0].Layer, got[1].Layer)
	}
	if got[1].ValidRecords != 870 || got[1].InvalidRecords != 130 {
		t.Fatalf("ListStepMetrics() silver row = %+v", got[1])
	}

	if err := repo.AppendStepMetrics(ctx, nil); err != nil {
		t.Fatalf("AppendStepMetrics() with no rows error = %v", err)
	}
}
