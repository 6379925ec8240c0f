package main

import (
	"fmt"
	"os"
	"path/filepath"

	"goimpact/adapters/excel"
	"goimpact/adapters/postgres"
	"goimpact/app"
	"goimpact/domain/core"
	"goimpact/domain/expenditure"
	"goimpact/internal/config"
	"goimpact/internal/logging"
	"goimpact/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	e := &env{}
	var configPath, logLevel string

	rootCmd := &cobra.Command{
		Use:   "goimpact",
		Short: "Social return on investment attribution for discounted memberships",
		Long: `goimpact projects how many non-customers a discount would convert, how many of
them become active, and what that activity is worth in avoided disease and cost.

Configuration is read from the YAML file given by --config, then from the environment
(a .env file in the working directory is loaded first).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			e.cfg = cfg
			e.log = logging.New(cfg.Logging.Level, cfg.Logging.Format)
			e.rec = newRecorder()
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		newRunCmd(e),
		newScenariosCmd(e),
		newCostsCmd(e),
		newPredictExpenditureCmd(e),
		newReportCmd(e),
		newMigrateCmd(e),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd(e *env) *cobra.Command {
	var noStore bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write the workbook and report",
		Long: `Run loads every input table, projects scenarios for each configured dimension,
normalizes costs, computes health outcomes and writes all tables to one workbook
plus an HTML summary. With DATABASE_URL set the run is stored; with NATS_URL set a
completion event is published.

Example: goimpact run --config goimpact.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := e.loader()
			var in app.Inputs
			for _, load := range []func(*app.Inputs) error{l.demand, l.costs, l.health} {
				if err := load(&in); err != nil {
					return err
				}
			}

			svc, cleanup, err := e.pipeline(ctx, !noStore)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Run(ctx, in)
			if err != nil {
				return err
			}
			return writeResult(e, res)
		},
	}

	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip persistence and event publishing")

	return cmd
}

func newScenariosCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Project scenarios and business outcomes only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in app.Inputs
			if err := e.loader().demand(&in); err != nil {
				return err
			}
			svc, cleanup, err := e.pipeline(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Scenarios(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeResult(e, res)
		},
	}
}

func newCostsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "costs",
		Short: "Normalize cost-per-case figures to the report year",
		Long: `Costs converts every cost-per-case record to the base currency of the report
year: exchange rate on the configured day, CPI inflation, then the income or
expenditure adjustment of the target geography.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in app.Inputs
			if err := e.loader().costs(&in); err != nil {
				return err
			}
			// markets to normalize for come from the survey when it is available
			if err := e.loader().demand(&in); err != nil {
				e.log.Warn().Err(err).Msg("survey unavailable, normalizing for every market")
				in.Respondents = nil
			}
			svc, cleanup, err := e.pipeline(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Costs(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeResult(e, res)
		},
	}
}

func newPredictExpenditureCmd(e *env) *cobra.Command {
	opts := expenditure.DefaultOptions()
	var mode, out string

	cmd := &cobra.Command{
		Use:   "predict-expenditure",
		Short: "Extrapolate per-capita healthcare expenditure to the report years",
		Long: `Fit a linear trend to each country's expenditure history and extend it over
the prediction window. In weighted mode the most recent years count more.

Example: goimpact predict-expenditure --predict-to 2025 --mode normal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = expenditure.Mode(mode)
			data, err := e.loader().read("expenditure_history", e.cfg.Inputs.ExpenditureHistory, excel.DefaultSheet)
			if err != nil {
				return err
			}
			history, err := excel.LoadExpenditure(data)
			if err != nil {
				return err
			}

			predicted, trends, errs := expenditure.Predict(history, opts)
			for _, err := range errs {
				e.log.Warn().Err(err).Msg("country skipped")
			}
			if out == "" {
				out = e.cfg.Inputs.Expenditure
			}
			tables := []report.Table{
				report.YearTable("expenditure", "Country Name", predicted),
				report.TrendTable(trends),
			}
			if err := excel.NewWriter(e.log).WriteWorkbook(out, tables); err != nil {
				return err
			}
			e.log.Info().Str("path", out).Int("countries", len(trends)).Msg("expenditure predicted")
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.FitFrom, "fit-from", opts.FitFrom, "First year of the fit window")
	cmd.Flags().IntVar(&opts.FitTo, "fit-to", opts.FitTo, "Last year of the fit window")
	cmd.Flags().IntVar(&opts.PredictFrom, "predict-from", opts.PredictFrom, "First predicted year")
	cmd.Flags().IntVar(&opts.PredictTo, "predict-to", opts.PredictTo, "Last predicted year")
	cmd.Flags().StringVar(&mode, "mode", string(opts.Mode), "Fit mode: normal or weighted")
	cmd.Flags().IntVar(&opts.RecentYears, "recent-years", opts.RecentYears, "Years weighted in weighted mode")
	cmd.Flags().Float64Var(&opts.RecentWeight, "recent-weight", opts.RecentWeight, "Weight of recent years")
	cmd.Flags().StringSliceVar(&opts.ExcludeCountries, "exclude", opts.ExcludeCountries, "Countries to leave out")
	cmd.Flags().StringVar(&out, "out", "", "Output workbook (default: the configured expenditure input)")

	return cmd
}

func newReportCmd(e *env) *cobra.Command {
	var runID, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the HTML summary of a stored run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseRunID(runID)
			if err != nil {
				return err
			}
			repo, db, err := e.store(cmd.Context())
			if err != nil {
				return err
			}
			if repo == nil {
				return fmt.Errorf("report needs a database: set DATABASE_URL")
			}
			defer db.Close()

			summary, err := app.NewReportService(repo).Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(e.cfg.Outputs.Dir, id.String()+".html")
			}
			if err := writeFile(out, summary.HTML()); err != nil {
				return err
			}
			e.log.Info().Str("run_id", id.String()).Str("path", out).Msg("report written")
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "Run to report on")
	cmd.Flags().StringVar(&out, "out", "", "Output HTML file")
	_ = cmd.MarkFlagRequired("run-id")

	return cmd
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the results schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Database.URL == "" {
				return fmt.Errorf("migrate needs a database: set DATABASE_URL")
			}
			db, err := postgres.Connect(cmd.Context(), e.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			e.log.Info().Msg("migrations applied")
			return nil
		},
	}
}

// writeResult writes every non-empty table to the configured workbook and the summary to HTML.
func writeResult(e *env, res *app.RunResult) error {
	dir := e.cfg.Outputs.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	workbook := filepath.Join(dir, e.cfg.Outputs.Workbook)
	if err := excel.NewWriter(e.log).WriteWorkbook(workbook, res.Tables()); err != nil {
		return err
	}
	htmlPath := filepath.Join(dir, e.cfg.Outputs.Report)
	if err := writeFile(htmlPath, res.Summary().HTML()); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		e.log.Warn().Str("run_id", res.RunID.String()).Msg(w)
	}
	e.log.Info().
		Str("run_id", res.RunID.String()).
		Str("workbook", workbook).
		Str("report", htmlPath).
		Msg("outputs written")
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
