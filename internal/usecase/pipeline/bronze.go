package pipeline

import (
	"context"
	"log/slog"
	"time"

	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/dataset"
)

// IngestionMeta is the per-source metadata the bronze layer wraps around raw
// tables. Rows pass through untouched.
type IngestionMeta struct {
	IngestionTime time.Time `json:"ingestion_time"`
	RecordCount   int       `json:"record_count"`
	Columns       []string  `json:"columns"`
	SourceSystem  string    `json:"source_system"`
}

// BronzeResult carries the unmodified raw dataset plus ingestion metadata
// per source.
type BronzeResult struct {
	Data dataset.Dataset
	Meta map[string]IngestionMeta
}

// Ingest wraps every present source with ingestion metadata. It never fails
// on well-formed input; one log line is emitted per table.
func Ingest(ctx context.Context, ds dataset.Dataset) (BronzeResult, []StepMetric) {
	logCtx := logging.WithAttrs(ctx, slog.String("layer", LayerBronze))

	out := BronzeResult{
		Data: ds,
		Meta: make(map[string]IngestionMeta, len(ds.Sources)),
	}
	metrics := make([]StepMetric, 0, len(ds.Sources))

	for _, source := range ds.Sources {
		started := time.Now()
		count := ds.RecordCount(source)

		out.Meta[source] = IngestionMeta{
			IngestionTime: time.Now().UTC(),
			RecordCount:   count,
			Columns:       dataset.Columns(source),
			SourceSystem:  source,
		}

		elapsed := time.Since(started)
		logging.Info(logCtx, "source ingested",
			slog.String("source", source),
			slog.Int("records", count),
			slog.Duration("elapsed", elapsed),
		)
		metrics = append(metrics, StepMetric{
			Layer:    LayerBronze,
			Source:   source,
			Records:  count,
			Duration: elapsed,
		})
	}

	return out, metrics
}
