package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/dataset"
	"datenwerk/internal/errs"
	"datenwerk/internal/ports"
)

// Service orchestrates one bronze -> silver -> gold run. Stage functions are
// pure; the service holds the only mutable state (the accumulated metrics
// log) and persists runs, metrics, and layer snapshots.
type Service struct {
	repo      ports.RunRepository
	uow       ports.UnitOfWork
	snapshots ports.SnapshotStore
}

func NewService(repo ports.RunRepository, uow ports.UnitOfWork, snapshots ports.SnapshotStore) *Service {
	return &Service{repo: repo, uow: uow, snapshots: snapshots}
}

type RunInput struct {
	Data dataset.Dataset
	// StageDelay paces the run for presentation; zero disables it.
	StageDelay time.Duration
}

// RunResult keeps every completed stage's output inspectable, also for runs
// that failed partway.
type RunResult struct {
	RunID      string
	State      RunState
	Bronze     *BronzeResult
	Silver     *SilverResult
	Gold       *GoldResult
	Metrics    []StepMetric
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run executes the strictly sequential state machine
// idle -> bronze -> silver -> gold -> complete. A failing stage aborts the
// remaining stages, marks the run failed, and surfaces the error; there are
// no retries and no resume.
func (s *Service) Run(ctx context.Context, in RunInput) (RunResult, error) {
	if ctx == nil {
		return RunResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil || s.uow == nil || s.snapshots == nil {
		return RunResult{}, errors.New("run repository, unit of work and snapshot store are required")
	}
	if len(in.Data.Sources) == 0 {
		return RunResult{}, errors.New("input dataset has no sources")
	}

	result := RunResult{
		RunID:     uuid.NewString(),
		State:     StateIdle,
		StartedAt: time.Now().UTC(),
	}
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.pipeline"),
		slog.String("run_id", result.RunID),
	)

	if err := s.repo.CreatePipelineRun(ctx, ports.PipelineRun{
		RunID:        result.RunID,
		State:        string(StateIdle),
		StartedAt:    result.StartedAt.Format(time.RFC3339Nano),
		TotalRecords: in.Data.TotalRecords(),
	}); err != nil {
		return RunResult{}, errs.Wrap(err, "create pipeline run")
	}

	// Bronze
	s.transition(logCtx, &result, StateBronze)
	bronze, bronzeMetrics := Ingest(logCtx, in.Data)
	result.Bronze = &bronze
	result.Metrics = append(result.Metrics, bronzeMetrics...)
	if err := s.snapshotBronze(ctx, result.RunID, bronze); err != nil {
		return s.fail(ctx, logCtx, result, "persist bronze snapshots", err)
	}

	if err := s.pace(ctx, in.StageDelay); err != nil {
		return s.fail(ctx, logCtx, result, "pace before silver", err)
	}

	// Silver
	s.transition(logCtx, &result, StateSilver)
	silver, silverMetrics := Validate(logCtx, bronze, time.Now().UTC())
	result.Silver = &silver
	result.Metrics = append(result.Metrics, silverMetrics...)
	if err := s.snapshotSilver(ctx, result.RunID, silver); err != nil {
		return s.fail(ctx, logCtx, result, "persist silver snapshots", err)
	}

	if err := s.pace(ctx, in.StageDelay); err != nil {
		return s.fail(ctx, logCtx, result, "pace before gold", err)
	}

	// Gold
	s.transition(logCtx, &result, StateGold)
	gold, goldMetrics := Aggregate(logCtx, silver)
	result.Gold = &gold
	result.Metrics = append(result.Metrics, goldMetrics...)
	if err := s.snapshotGold(ctx, result.RunID, gold); err != nil {
		return s.fail(ctx, logCtx, result, "persist gold snapshots", err)
	}

	result.State = StateComplete
	result.FinishedAt = time.Now().UTC()

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AppendStepMetrics(txCtx, s.stepMetricRows(result)); err != nil {
			return errs.Wrap(err, "append step metrics")
		}
		return s.repo.FinishPipelineRun(txCtx, result.RunID, string(StateComplete), result.FinishedAt.Format(time.RFC3339Nano), nil)
	}); err != nil {
		return result, errs.Wrap(err, "persist pipeline run")
	}

	logging.Info(logCtx, "pipeline complete",
		slog.Int("steps", len(result.Metrics)),
		slog.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (s *Service) transition(ctx context.Context, result *RunResult, next RunState) {
	logging.Info(ctx, "stage started",
		slog.String("from", string(result.State)),
		slog.String("to", string(next)),
	)
	result.State = next
}

// fail marks the run failed, keeping completed-stage outputs on the result.
func (s *Service) fail(ctx context.Context, logCtx context.Context, result RunResult, msg string, err error) (RunResult, error) {
	wrapped := errs.Wrapf(err, "%s (stage %s)", msg, result.State)
	result.FinishedAt = time.Now().UTC()
	result.State = StateFailed

	logging.Error(logCtx, "pipeline run failed", slog.Any("err", errs.Loggable(wrapped)))

	reason := wrapped.Error()
	finishErr := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AppendStepMetrics(txCtx, s.stepMetricRows(result)); err != nil {
			return err
		}
		return s.repo.FinishPipelineRun(txCtx, result.RunID, string(StateFailed), result.FinishedAt.Format(time.RFC3339Nano), &reason)
	})
	if finishErr != nil {
		logging.Error(logCtx, "marking run failed also failed", slog.Any("err", errs.Loggable(finishErr)))
	}

	return result, wrapped
}

// pace sleeps the configured inter-stage delay. Presentation pacing only; no
// correctness semantics.
func (s *Service) pace(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (s *Service) stepMetricRows(result RunResult) []ports.PipelineStepMetric {
	rows := make([]ports.PipelineStepMetric, 0, len(result.Metrics))
	for _, m := range result.Metrics {
		rows = append(rows, ports.PipelineStepMetric{
			RunID:          result.RunID,
			Layer:          m.Layer,
			Source:         m.Source,
			Records:        m.Records,
			ValidRecords:   m.ValidRecords,
			InvalidRecords: m.InvalidRecords,
			DurationMicros: m.Duration.Microseconds(),
		})
	}
	return rows
}

func (s *Service) snapshotBronze(ctx context.Context, runID string, bronze BronzeResult) error {
	for _, source := range bronze.Data.Sources {
		if err := s.saveSnapshot(ctx, runID, LayerBronze, source, bronze.Meta[source]); err != nil {
			return err
		}
	}
	return nil
}

// snapshotSilver persists the data-quality findings: per-source stats plus
// the invalid rows themselves.
func (s *Service) snapshotSilver(ctx context.Context, runID string, silver SilverResult) error {
	for _, source := range silver.Valid.Sources {
		payload := struct {
			Stats       ValidationStats `json:"stats"`
			InvalidRows any             `json:"invalid_rows"`
		}{
			Stats:       silver.Stats[source],
			InvalidRows: sourceRows(silver.Invalid, source),
		}
		if err := s.saveSnapshot(ctx, runID, LayerSilver, source, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) snapshotGold(ctx context.Context, runID string, gold GoldResult) error {
	for _, view := range gold.Views {
		var payload any
		switch view {
		case ViewSalesMetrics:
			payload = gold.SalesMetrics
		case ViewInventoryStatus:
			payload = gold.InventoryStatus
		}
		if err := s.saveSnapshot(ctx, runID, LayerGold, view, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) saveSnapshot(ctx context.Context, runID string, layer string, source string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrapf(err, "encode %s snapshot for %q", layer, source)
	}
	return s.snapshots.Save(ctx, ports.LayerSnapshot{
		RunID:   runID,
		Layer:   layer,
		Source:  source,
		Payload: string(raw),
	})
}

func sourceRows(d dataset.Dataset, source string) any {
	switch source {
	case dataset.SourceProducts:
		return d.Products
	case dataset.SourceCustomers:
		return d.Customers
	case dataset.SourceSalesOrders:
		return d.SalesOrders
	case dataset.SourceOrderItems:
		return d.OrderItems
	case dataset.SourceInventoryTransactions:
		return d.InventoryTransactions
	case dataset.SourceFinancialTransactions:
		return d.FinancialTransactions
	default:
		return nil
	}
}
