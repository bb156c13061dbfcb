package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"datenwerk/internal/bootstrap"
	"datenwerk/internal/bootstrap/logging"
	"datenwerk/internal/errs"
)

var generateStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded dataset generation runs",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := svcs.Runs.ListGenerationRuns(ctx, limit)
		if err != nil {
			logging.Error(ctx, "list generation runs failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list generation runs")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "run_id\tseed\terror_rate\trange\torders\titems\tinvoices\tout_dir\tcreated_at"); err != nil {
			return errs.Wrap(err, "write generation runs header")
		}
		for _, run := range runs {
			if _, err := fmt.Fprintf(w, "%s\t%d\t%.2f\t%s..%s\t%d\t%d\t%d\t%s\t%s\n",
				run.RunID, run.Seed, run.ErrorRate, run.StartDate, run.EndDate,
				run.SalesOrders, run.OrderItems, run.FinancialTransactions,
				run.OutputDir, run.CreatedAt,
			); err != nil {
				return errs.Wrap(err, "write generation runs row")
			}
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush generation runs table")
		}
		return nil
	}),
}

func init() {
	generateCmd.AddCommand(generateStatsCmd)

	generateStatsCmd.Flags().Int("limit", 20, "Max runs to list")
}
