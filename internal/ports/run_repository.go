package ports

import (
	"context"
	"errors"
)

var ErrPipelineRunNotFound = errors.New("pipeline run not found")

// GenerationRun records one synthetic-dataset generation.
type GenerationRun struct {
	RunID                 string
	Seed                  int64
	ErrorRate             float64
	StartDate             string
	EndDate               string
	OutputDir             string
	Products              int
	Customers             int
	SalesOrders           int
	OrderItems            int
	InventoryTransactions int
	FinancialTransactions int
	CreatedAt             string
}

// PipelineRun records one bronze/silver/gold execution.
type PipelineRun struct {
	RunID         string
	State         string
	StartedAt     string
	FinishedAt    string
	TotalRecords  int
	FailureReason *string
}

// PipelineStepMetric is one per-layer, per-source timing/count sample.
type PipelineStepMetric struct {
	RunID          string
	Layer          string
	Source         string
	Records        int
	ValidRecords   int
	InvalidRecords int
	DurationMicros int64
}

type RunRepository interface {
	CreateGenerationRun(ctx context.Context, run GenerationRun) error
	ListGenerationRuns(ctx context.Context, limit int) ([]GenerationRun, error)

	CreatePipelineRun(ctx context.Context, run PipelineRun) error
	FinishPipelineRun(ctx context.Context, runID string, state string, finishedAt string, failureReason *string) error
	GetPipelineRun(ctx context.Context, runID string) (PipelineRun, error)
	ListPipelineRuns(ctx context.Context, limit int) ([]PipelineRun, error)

	AppendStepMetrics(ctx context.Context, metrics []PipelineStepMetric) error
	ListStepMetrics(ctx context.Context, runID string) ([]PipelineStepMetric, error)
}
