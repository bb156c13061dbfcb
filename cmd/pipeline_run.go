package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"datenwerk/internal/bootstrap"
	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/dataset"
	"datenwerk/internal/errs"
	"datenwerk/internal/usecase/pipeline"
)

var pipelineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bronze/silver/gold pipeline over a CSV dataset directory",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		dataDir, _ := cmd.Flags().GetString("data")
		if strings.TrimSpace(dataDir) == "" {
			dataDir = app.Config.Data.Dir
		}

		delayMs, _ := cmd.Flags().GetInt("delay")
		if !cmd.Flags().Changed("delay") {
			delayMs = app.Config.Pipeline.StageDelayMs
		}
		if delayMs < 0 {
			return fmt.Errorf("invalid --delay value %d: must not be negative", delayMs)
		}

		ds, err := dataset.ReadDir(dataDir)
		if err != nil {
			logging.Error(ctx, "read dataset failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrapf(err, "read dataset from %q", dataDir)
		}
		logging.Info(ctx, "dataset loaded",
			slog.String("data_dir", dataDir),
			slog.Int("sources", len(ds.Sources)),
			slog.Int("total_records", ds.TotalRecords()),
		)

		result, err := svcs.Pipeline.Run(ctx, pipeline.RunInput{
			Data:       ds,
			StageDelay: time.Duration(delayMs) * time.Millisecond,
		})
		if err != nil {
			logging.Error(ctx, "pipeline run failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run pipeline")
		}

		if err := writePipelineRunReport(cmd, result); err != nil {
			return err
		}
		return nil
	}),
}

func writePipelineRunReport(cmd *cobra.Command, result pipeline.RunResult) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "layer\tsource\trecords\tvalid\tinvalid\tduration"); err != nil {
		return errs.Wrap(err, "write pipeline report header")
	}
	for _, m := range result.Metrics {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			m.Layer, m.Source, m.Records, m.ValidRecords, m.InvalidRecords, m.Duration,
		); err != nil {
			return errs.Wrap(err, "write pipeline report row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush pipeline report")
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "run %s finished in state %s after %s\n",
		result.RunID, result.State, result.FinishedAt.Sub(result.StartedAt),
	); err != nil {
		return errs.Wrap(err, "write pipeline summary")
	}
	return nil
}

func init() {
	pipelineCmd.AddCommand(pipelineRunCmd)

	pipelineRunCmd.Flags().String("data", "", "Dataset directory with CSV files (default: data.dir from config)")
	pipelineRunCmd.Flags().Int("delay", 0, "Inter-stage delay in milliseconds (default: pipeline.stage_delay_ms from config)")
}
