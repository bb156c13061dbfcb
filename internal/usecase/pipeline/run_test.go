package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"datenwerk/internal/ports"
)

type fakeRunRepo struct {
	created  []ports.PipelineRun
	finished map[string]ports.PipelineRun
	metrics  []ports.PipelineStepMetric
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{finished: make(map[string]ports.PipelineRun)}
}

func (r *fakeRunRepo) CreateGenerationRun(context.Context, ports.GenerationRun) error {
	return errors.New("not implemented")
}

func (r *fakeRunRepo) ListGenerationRuns(context.Context, int) ([]ports.GenerationRun, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRunRepo) CreatePipelineRun(_ context.Context, run ports.PipelineRun) error {
	r.created = append(r.created, run)
	return nil
}

func (r *fakeRunRepo) FinishPipelineRun(_ context.Context, runID string, state string, finishedAt string, failureReason *string) error {
	r.finished[runID] = ports.PipelineRun{
		RunID:         runID,
		State:         state,
		FinishedAt:    finishedAt,
		FailureReason: failureReason,
	}
	return nil
}

func (r *fakeRunRepo) GetPipelineRun(_ context.Context, runID string) (ports.PipelineRun, error) {
	if run, ok := r.finished[runID]; ok {
		return run, nil
	}
	return ports.PipelineRun{}, ports.ErrPipelineRunNotFound
}

func (r *fakeRunRepo) ListPipelineRuns(context.Context, int) ([]ports.PipelineRun, error) {
	return nil, nil
}

func (r *fakeRunRepo) AppendStepMetrics(_ context.Context, metrics []ports.PipelineStepMetric) error {
	r.metrics = append(r.metrics, metrics...)
	return nil
}

func (r *fakeRunRepo) ListStepMetrics(_ context.Context, runID string) ([]ports.PipelineStepMetric, error) {
	var out []ports.PipelineStepMetric
	for _, m := range r.metrics {
		if m.RunID == runID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSnapshotStore struct {
	saved  map[string]string
	failOn string
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{saved: make(map[string]string)}
}

func snapshotKey(layer, source string) string {
	return fmt.Sprintf("%s/%s", layer, source)
}

func (s *fakeSnapshotStore) Save(_ context.Context, snap ports.LayerSnapshot) error {
	key := snapshotKey(snap.Layer, snap.Source)
	if s.failOn != "" && key == s.failOn {
		return errors.New("snapshot store unavailable")
	}
	s.saved[key] = snap.Payload
	return nil
}

func (s *fakeSnapshotStore) Get(_ context.Context, _ string, layer string, source string) (string, bool, error) {
	payload, ok := s.saved[snapshotKey(layer, source)]
	return payload, ok, nil
}

func (s *fakeSnapshotStore) List(context.Context, string, string) ([]ports.LayerSnapshot, error) {
	return nil, nil
}

func TestRunCompletes(t *testing.T) {
	repo := newFakeRunRepo()
	snaps := newFakeSnapshotStore()
	svc := NewService(repo, fakeUnitOfWork{}, snaps)

	ds := pipelineFixture(time.Now().UTC())
	result, err := svc.Run(context.Background(), RunInput{Data: ds})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.State != StateComplete {
		t.Fatalf("Run() state = %s", result.State)
	}
	if result.Bronze == nil || result.Silver == nil || result.Gold == nil {
		t.Fatal("Run() dropped a stage result")
	}
	if result.FinishedAt.Before(result.StartedAt) {
		t.Fatalf("Run() finished %v before started %v", result.FinishedAt, result.StartedAt)
	}

	// Six bronze steps, six silver steps, two gold views.
	if len(result.Metrics) != 14 {
		t.Fatalf("Run() metrics = %d", len(result.Metrics))
	}
	if len(repo.metrics) != 14 {
		t.Fatalf("persisted metrics = %d", len(repo.metrics))
	}

	if len(repo.created) != 1 || repo.created[0].State != string(StateIdle) {
		t.Fatalf("created runs = %+v", repo.created)
	}
	finished, ok := repo.finished[result.RunID]
	if !ok || finished.State != string(StateComplete) {
		t.Fatalf("finished run = %+v", finished)
	}
	if finished.FailureReason != nil {
		t.Fatalf("completed run carries failure reason %q", *finished.FailureReason)
	}

	// Every layer snapshot is persisted: 6 bronze + 6 silver + 2 gold.
	if len(snaps.saved) != 14 {
		t.Fatalf("snapshots = %d", len(snaps.saved))
	}
	if _, ok := snaps.saved[snapshotKey(LayerGold, ViewSalesMetrics)]; !ok {
		t.Fatal("missing gold sales_metrics snapshot")
	}
}

func TestRunRejectsEmptyDataset(t *testing.T) {
	svc := NewService(newFakeRunRepo(), fakeUnitOfWork{}, newFakeSnapshotStore())

	if _, err := svc.Run(context.Background(), RunInput{}); err == nil {
		t.Fatal("Run() expected error for empty dataset")
	}
}

func TestRunMarksFailureAndKeepsPartialResult(t *testing.T) {
	repo := newFakeRunRepo()
	snaps := newFakeSnapshotStore()
	snaps.failOn = snapshotKey(LayerGold, ViewSalesMetrics)
	svc := NewService(repo, fakeUnitOfWork{}, snaps)

	ds := pipelineFixture(time.Now().UTC())
	result, err := svc.Run(context.Background(), RunInput{Data: ds})
	if err == nil {
		t.Fatal("Run() expected error from failing snapshot store")
	}

	if result.State != StateFailed {
		t.Fatalf("Run() state = %s", result.State)
	}
	// Stages that completed before the failure stay inspectable.
	if result.Bronze == nil || result.Silver == nil {
		t.Fatal("Run() dropped completed stage results on failure")
	}

	finished, ok := repo.finished[result.RunID]
	if !ok || finished.State != string(StateFailed) {
		t.Fatalf("finished run = %+v", finished)
	}
	if finished.FailureReason == nil || *finished.FailureReason == "" {
		t.Fatal("failed run has no failure reason")
	}
}

func TestRunHonorsContextCancelDuringPacing(t *testing.T) {
	repo := newFakeRunRepo()
	svc := NewService(repo, fakeUnitOfWork{}, newFakeSnapshotStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The canceled context trips the guard before any stage runs.
	if _, err := svc.Run(ctx, RunInput{Data: pipelineFixture(time.Now().UTC()), StageDelay: time.Hour}); err == nil {
		t.Fatal("Run() expected error for canceled context")
	}
}
