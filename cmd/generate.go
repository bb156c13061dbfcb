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
	"datenwerk/internal/usecase/generate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic six-table business dataset as CSV files",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		scn, err := resolveScenario(cmd)
		if err != nil {
			return err
		}

		outDir, _ := cmd.Flags().GetString("out")
		if strings.TrimSpace(outDir) == "" {
			outDir = app.Config.Data.Dir
		}

		result, err := svcs.Generate.Generate(ctx, generate.GenerateInput{
			Scenario: scn,
			OutDir:   outDir,
		})
		if err != nil {
			logging.Error(ctx, "dataset generation failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate dataset")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "table\trecords"); err != nil {
			return errs.Wrap(err, "write generate report header")
		}
		for _, source := range result.Dataset.Sources {
			if _, err := fmt.Fprintf(w, "%s\t%d\n", source, result.Dataset.RecordCount(source)); err != nil {
				return errs.Wrap(err, "write generate report row")
			}
		}
		if _, err := fmt.Fprintf(w, "total\t%d\n", result.Dataset.TotalRecords()); err != nil {
			return errs.Wrap(err, "write generate report total")
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "flush generate report")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "run %s written to %s\n", result.RunID, result.OutDir); err != nil {
			return errs.Wrap(err, "write generate summary")
		}
		return nil
	}),
}

// resolveScenario layers flag overrides over the scenario profile (or the
// defaults when no profile is given).
func resolveScenario(cmd *cobra.Command) (generate.Scenario, error) {
	scenarioPath, _ := cmd.Flags().GetString("scenario")

	scn := generate.DefaultScenario()
	if strings.TrimSpace(scenarioPath) != "" {
		loaded, err := generate.LoadScenario(scenarioPath)
		if err != nil {
			return generate.Scenario{}, errs.Wrap(err, "load scenario")
		}
		scn = loaded
	}

	if cmd.Flags().Changed("seed") {
		scn.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("error-rate") {
		scn.ErrorRate, _ = cmd.Flags().GetFloat64("error-rate")
	}
	if cmd.Flags().Changed("products") {
		scn.Products, _ = cmd.Flags().GetInt("products")
	}
	if cmd.Flags().Changed("customers") {
		scn.Customers, _ = cmd.Flags().GetInt("customers")
	}
	if cmd.Flags().Changed("orders") {
		scn.SalesOrders, _ = cmd.Flags().GetInt("orders")
	}
	if cmd.Flags().Changed("inventory") {
		scn.InventoryTransactions, _ = cmd.Flags().GetInt("inventory")
	}
	if cmd.Flags().Changed("start") {
		raw, _ := cmd.Flags().GetString("start")
		parsed, err := time.Parse(dataset.DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return generate.Scenario{}, fmt.Errorf("invalid --start value %q: expected %s", raw, dataset.DateLayout)
		}
		scn.StartDate = parsed
	}
	if cmd.Flags().Changed("end") {
		raw, _ := cmd.Flags().GetString("end")
		parsed, err := time.Parse(dataset.DateLayout, strings.TrimSpace(raw))
		if err != nil {
			return generate.Scenario{}, fmt.Errorf("invalid --end value %q: expected %s", raw, dataset.DateLayout)
		}
		scn.EndDate = parsed
	}

	return scn, nil
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("scenario", "", "Scenario profile path (TOML)")
	generateCmd.Flags().String("out", "", "Output directory for CSV files (default: data.dir from config)")
	generateCmd.Flags().Int64("seed", 0, "Random seed (0: time-based)")
	generateCmd.Flags().Float64("error-rate", 0.15, "Fault injection rate in [0,1]")
	generateCmd.Flags().Int("products", 100, "Number of products")
	generateCmd.Flags().Int("customers", 200, "Number of customers")
	generateCmd.Flags().Int("orders", 1000, "Number of sales orders")
	generateCmd.Flags().Int("inventory", 2000, "Number of inventory transactions")
	generateCmd.Flags().String("start", "2023-01-01", "Earliest business date (YYYY-MM-DD)")
	generateCmd.Flags().String("end", "2024-12-31", "Latest business date (YYYY-MM-DD)")
}
