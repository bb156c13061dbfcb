package pipeline

import (
	"context"
	"log/slog"
	"time"

	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/dataset"
)

// ValidationStats quantifies one source's silver partition. Rows failing a
// predicate are expected data-quality findings, not errors.
type ValidationStats struct {
	ValidRecords   int     `json:"valid_records"`
	InvalidRecords int     `json:"invalid_records"`
	ValidationRate float64 `json:"validation_rate"`
}

// SilverResult partitions every bronze source into valid and invalid rows.
type SilverResult struct {
	Valid   dataset.Dataset
	Invalid dataset.Dataset
	Stats   map[string]ValidationStats
}

// Validate applies the per-source predicates: sales orders need an order
// date that is not in the future relative to now and a customer reference;
// financial transactions need a positive, present amount and a payment date
// not before the invoice date. Sources without a predicate pass through
// entirely valid.
func Validate(ctx context.Context, bronze BronzeResult, now time.Time) (SilverResult, []StepMetric) {
	logCtx := logging.WithAttrs(ctx, slog.String("layer", LayerSilver))

	out := SilverResult{
		Stats: make(map[string]ValidationStats, len(bronze.Data.Sources)),
	}
	out.Valid.Sources = append([]string(nil), bronze.Data.Sources...)
	out.Invalid.Sources = append([]string(nil), bronze.Data.Sources...)

	metrics := make([]StepMetric, 0, len(bronze.Data.Sources))

	for _, source := range bronze.Data.Sources {
		started := time.Now()

		switch source {
		case dataset.SourceSalesOrders:
			for _, o := range bronze.Data.SalesOrders {
				if validSalesOrder(o, now) {
					out.Valid.SalesOrders = append(out.Valid.SalesOrders, o)
				} else {
					out.Invalid.SalesOrders = append(out.Invalid.SalesOrders, o)
				}
			}
		case dataset.SourceFinancialTransactions:
			for _, t := range bronze.Data.FinancialTransactions {
				if validFinancialTransaction(t) {
					out.Valid.FinancialTransactions = append(out.Valid.FinancialTransactions, t)
				} else {
					out.Invalid.FinancialTransactions = append(out.Invalid.FinancialTransactions, t)
				}
			}
		case dataset.SourceProducts:
			out.Valid.Products = bronze.Data.Products
		case dataset.SourceCustomers:
			out.Valid.Customers = bronze.Data.Customers
		case dataset.SourceOrderItems:
			out.Valid.OrderItems = bronze.Data.OrderItems
		case dataset.SourceInventoryTransactions:
			out.Valid.InventoryTransactions = bronze.Data.InventoryTransactions
		}

		stats := ValidationStats{
			ValidRecords:   out.Valid.RecordCount(source),
			InvalidRecords: out.Invalid.RecordCount(source),
		}
		if total := bronze.Data.RecordCount(source); total > 0 {
			stats.ValidationRate = float64(stats.ValidRecords) / float64(total) * 100
		}
		out.Stats[source] = stats

		elapsed := time.Since(started)
		logging.Info(logCtx, "source validated",
			slog.String("source", source),
			slog.Int("valid_records", stats.ValidRecords),
			slog.Int("invalid_records", stats.InvalidRecords),
			slog.Duration("elapsed", elapsed),
		)
		metrics = append(metrics, StepMetric{
			Layer:          LayerSilver,
			Source:         source,
			Records:        bronze.Data.RecordCount(source),
			ValidRecords:   stats.ValidRecords,
			InvalidRecords: stats.InvalidRecords,
			Duration:       elapsed,
		})
	}

	return out, metrics
}

func validSalesOrder(o dataset.SalesOrder, now time.Time) bool {
	if o.OrderDate.IsZero() {
		return false
	}
	if o.CustomerID == nil || *o.CustomerID == "" {
		return false
	}
	return !o.OrderDate.After(now)
}

func validFinancialTransaction(t dataset.FinancialTransaction) bool {
	if t.Amount == nil || *t.Amount <= 0 {
		return false
	}
	return !t.PaymentDate.Before(t.InvoiceDate)
}
