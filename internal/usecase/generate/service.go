package generate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/dataset"
	"datenwerk/internal/errs"
	"datenwerk/internal/ports"
)

// Service owns synthetic dataset generation.
type Service struct {
	repo ports.RunRepository
}

func NewService(repo ports.RunRepository) *Service {
	return &Service{repo: repo}
}

// GenerateDataset builds the complete six-table dataset in the fixed
// generation order: master data first, then sales orders, order items,
// inventory transactions, and last the financial transactions, which need
// the finalized order items to compute real per-order totals.
func (s *Service) GenerateDataset(ctx context.Context, scn Scenario) (dataset.Dataset, error) {
	if ctx == nil {
		return dataset.Dataset{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, errs.Wrap(err, "check context")
	}
	if err := scn.Validate(); err != nil {
		return dataset.Dataset{}, errs.Wrap(err, "validate scenario")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.generate"))
	logging.Info(logCtx, "generating dataset",
		slog.Int64("seed", scn.Seed),
		slog.Float64("error_rate", scn.ErrorRate),
		slog.String("start_date", scn.StartDate.Format(dataset.DateLayout)),
		slog.String("end_date", scn.EndDate.Format(dataset.DateLayout)),
	)

	g := newGenContext(scn, time.Now().UTC())

	g.products = g.generateProducts(scn.Products)
	g.customers = g.generateCustomers(scn.Customers)

	orders, err := g.generateSalesOrders(scn.SalesOrders)
	if err != nil {
		return dataset.Dataset{}, errs.Wrap(err, "generate sales orders")
	}

	items, err := g.generateOrderItems(orders, scn.MinItemsPerOrder, scn.MaxItemsPerOrder)
	if err != nil {
		return dataset.Dataset{}, errs.Wrap(err, "generate order items")
	}

	inventory, err := g.generateInventoryTransactions(scn.InventoryTransactions)
	if err != nil {
		return dataset.Dataset{}, errs.Wrap(err, "generate inventory transactions")
	}

	financial, err := g.generateFinancialTransactions(orders, items)
	if err != nil {
		return dataset.Dataset{}, errs.Wrap(err, "generate financial transactions")
	}

	ds := dataset.Dataset{
		Products:              g.products,
		Customers:             g.customers,
		SalesOrders:           orders,
		OrderItems:            items,
		InventoryTransactions: inventory,
		FinancialTransactions: financial,
		Sources:               append([]string(nil), dataset.SourceNames...),
	}

	for _, source := range ds.Sources {
		logging.Info(logCtx, "table generated",
			slog.String("source", source),
			slog.Int("records", ds.RecordCount(source)),
		)
	}

	return ds, nil
}

type GenerateInput struct {
	Scenario Scenario
	OutDir   string
}

type GenerateResult struct {
	RunID   string
	OutDir  string
	Dataset dataset.Dataset
}

// Generate runs GenerateDataset, writes the CSV artifact, and records the
// generation run.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	if in.OutDir == "" {
		return GenerateResult{}, errors.New("output directory is required")
	}
	if s.repo == nil {
		return GenerateResult{}, errors.New("run repository is required")
	}

	ds, err := s.GenerateDataset(ctx, in.Scenario)
	if err != nil {
		return GenerateResult{}, err
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.generate"))

	if err := dataset.WriteDir(in.OutDir, ds); err != nil {
		return GenerateResult{}, errs.Wrap(err, "write dataset")
	}
	logging.Info(logCtx, "dataset written", slog.String("out_dir", in.OutDir), slog.Int("total_records", ds.TotalRecords()))

	runID := uuid.NewString()
	run := ports.GenerationRun{
		RunID:                 runID,
		Seed:                  in.Scenario.Seed,
		ErrorRate:             in.Scenario.ErrorRate,
		StartDate:             in.Scenario.StartDate.Format(dataset.DateLayout),
		EndDate:               in.Scenario.EndDate.Format(dataset.DateLayout),
		OutputDir:             in.OutDir,
		Products:              len(ds.Products),
		Customers:             len(ds.Customers),
		SalesOrders:           len(ds.SalesOrders),
		OrderItems:            len(ds.OrderItems),
		InventoryTransactions: len(ds.InventoryTransactions),
		FinancialTransactions: len(ds.FinancialTransactions),
		CreatedAt:             time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.repo.CreateGenerationRun(ctx, run); err != nil {
		return GenerateResult{}, errs.Wrap(err, "record generation run")
	}

	return GenerateResult{RunID: runID, OutDir: in.OutDir, Dataset: ds}, nil
}
