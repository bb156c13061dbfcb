package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"datenwerk/internal/bootstrap"
	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/errs"
	"datenwerk/internal/ports"
	"datenwerk/internal/usecase/pipeline"
)

var pipelineExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted layer snapshots of a pipeline run",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		runID, _ := cmd.Flags().GetString("run")
		layer, _ := cmd.Flags().GetString("layer")
		source, _ := cmd.Flags().GetString("source")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		layer = strings.ToLower(strings.TrimSpace(layer))
		if layer != "" && layer != pipeline.LayerBronze && layer != pipeline.LayerSilver && layer != pipeline.LayerGold {
			return fmt.Errorf("unsupported layer %q (expected: bronze, silver or gold)", layer)
		}

		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "jsonl" {
			return fmt.Errorf("unsupported format %q (expected: json or jsonl)", format)
		}

		source = strings.TrimSpace(source)
		if source != "" && layer == "" {
			return errors.New("--source requires --layer")
		}

		snapshots, err := collectSnapshots(cmd, svcs.Snapshots, runID, layer, source)
		if err != nil {
			logging.Error(ctx, "collect snapshots failed", slog.Any("err", errs.Loggable(err)))
			return err
		}

		payload, err := marshalSnapshotPayload(snapshots, format)
		if err != nil {
			return err
		}

		writer, closeFn, err := resolveExportWriter(cmd, outPath)
		if err != nil {
			return err
		}

		if _, err := writer.Write(payload); err != nil {
			_ = closeFn()
			return errs.Wrap(err, "write snapshot export output")
		}
		if err := closeFn(); err != nil {
			return errs.Wrap(err, "close snapshot export output")
		}
		return nil
	}),
}

type snapshotExportItem struct {
	RunID   string          `json:"run_id"`
	Layer   string          `json:"layer"`
	Source  string          `json:"source"`
	Payload json.RawMessage `json:"payload"`
}

func collectSnapshots(cmd *cobra.Command, store ports.SnapshotStore, runID string, layer string, source string) ([]snapshotExportItem, error) {
	ctx := cmd.Context()

	if source != "" {
		payload, found, err := store.Get(ctx, runID, layer, source)
		if err != nil {
			return nil, errs.Wrapf(err, "get %s snapshot for %q", layer, source)
		}
		if !found {
			return nil, fmt.Errorf("no %s snapshot for source %q in run %q", layer, source, runID)
		}
		return []snapshotExportItem{{
			RunID:   runID,
			Layer:   layer,
			Source:  source,
			Payload: json.RawMessage(payload),
		}}, nil
	}

	snaps, err := store.List(ctx, runID, layer)
	if err != nil {
		return nil, errs.Wrapf(err, "list snapshots for run %q", runID)
	}
	if len(snaps) == 0 {
		return nil, fmt.Errorf("no snapshots found for run %q", runID)
	}

	items := make([]snapshotExportItem, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, snapshotExportItem{
			RunID:   snap.RunID,
			Layer:   snap.Layer,
			Source:  snap.Source,
			Payload: json.RawMessage(snap.Payload),
		})
	}
	return items, nil
}

func marshalSnapshotPayload(items []snapshotExportItem, format string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	switch format {
	case "json":
		if err := encoder.Encode(items); err != nil {
			return nil, errs.Wrap(err, "encode snapshots as json")
		}
	case "jsonl":
		for _, item := range items {
			if err := encoder.Encode(item); err != nil {
				return nil, errs.Wrap(err, "encode snapshots as jsonl")
			}
		}
	default:
		return nil, errors.New("unsupported format")
	}

	return buf.Bytes(), nil
}

func resolveExportWriter(cmd *cobra.Command, outPath string) (io.Writer, func() error, error) {
	trimmed := strings.TrimSpace(outPath)
	if trimmed == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(trimmed)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "open output file %q", trimmed)
	}
	return f, f.Close, nil
}

func init() {
	pipelineCmd.AddCommand(pipelineExportCmd)

	pipelineExportCmd.Flags().String("run", "", "Pipeline run id")
	pipelineExportCmd.Flags().String("layer", "", "Layer filter: bronze|silver|gold (default: all layers)")
	pipelineExportCmd.Flags().String("source", "", "Source filter, requires --layer")
	pipelineExportCmd.Flags().String("format", "json", "Output format: json|jsonl")
	pipelineExportCmd.Flags().String("out", "", "Output file path (default: stdout)")
	_ = pipelineExportCmd.MarkFlagRequired("run")
}
