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
	"datenwerk/internal/errs"
	"datenwerk/internal/ports"
)

var pipelineStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded pipeline runs or one run's step metrics",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		runID, _ := cmd.Flags().GetString("run")
		limit, _ := cmd.Flags().GetInt("limit")

		if strings.TrimSpace(runID) == "" {
			runs, err := svcs.Runs.ListPipelineRuns(ctx, limit)
			if err != nil {
				logging.Error(ctx, "list pipeline runs failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "list pipeline runs")
			}
			return writePipelineRunsTable(cmd, runs)
		}

		run, err := svcs.Runs.GetPipelineRun(ctx, runID)
		if err != nil {
			logging.Error(ctx, "get pipeline run failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrapf(err, "get pipeline run %q", runID)
		}
		metrics, err := svcs.Runs.ListStepMetrics(ctx, runID)
		if err != nil {
			logging.Error(ctx, "list step metrics failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrapf(err, "list step metrics for %q", runID)
		}
		return writePipelineStepTable(cmd, run, metrics)
	}),
}

func writePipelineRunsTable(cmd *cobra.Command, runs []ports.PipelineRun) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "run_id\tstate\tstarted_at\tfinished_at\trecords\tfailure"); err != nil {
		return errs.Wrap(err, "write pipeline runs header")
	}
	for _, run := range runs {
		finishedAt := run.FinishedAt
		if finishedAt == "" {
			finishedAt = "-"
		}
		failure := "-"
		if run.FailureReason != nil && strings.TrimSpace(*run.FailureReason) != "" {
			failure = *run.FailureReason
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.RunID, run.State, run.StartedAt, finishedAt, run.TotalRecords, failure,
		); err != nil {
			return errs.Wrap(err, "write pipeline runs row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush pipeline runs table")
	}
	return nil
}

func writePipelineStepTable(cmd *cobra.Command, run ports.PipelineRun, metrics []ports.PipelineStepMetric) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "run %s state %s started %s\n", run.RunID, run.State, run.StartedAt); err != nil {
		return errs.Wrap(err, "write pipeline run summary")
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "layer\tsource\trecords\tvalid\tinvalid\tduration"); err != nil {
		return errs.Wrap(err, "write step metrics header")
	}
	for _, m := range metrics {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			m.Layer, m.Source, m.Records, m.ValidRecords, m.InvalidRecords,
			time.Duration(m.DurationMicros)*time.Microsecond,
		); err != nil {
			return errs.Wrap(err, "write step metrics row")
		}
	}
	if err := w.Flush(); err != nil {
		return errs.Wrap(err, "flush step metrics table")
	}
	return nil
}

func init() {
	pipelineCmd.AddCommand(pipelineStatsCmd)

	pipelineStatsCmd.Flags().String("run", "", "Pipeline run id (default: list recent runs)")
	pipelineStatsCmd.Flags().Int("limit", 20, "Max runs to list")
}
