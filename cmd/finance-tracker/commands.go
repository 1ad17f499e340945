package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/finance-tracker/internal/config"
	"github.com/iwvelando/finance-tracker/internal/server"
	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/output"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func (c *cli) mortgage(ctx context.Context) (*tracker.Tracker, string, error) {
	state, err := c.loadState(ctx)
	if err != nil {
		return nil, "", err
	}
	mortgage, ok := state.Mortgage()
	if !ok {
		return nil, "", tracker.ErrNoMortgage
	}
	return state, mortgage.Name, nil
}

func (c *cli) scheduleCmd() *cobra.Command {
	var extra float64

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the mortgage amortization schedule",
	}
	cmd.Flags().Float64Var(&extra, "extra", 0, "extra monthly principal (defaults to the mortgage's configured extra payment)")
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		state, name, err := c.mortgage(cmd.Context())
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("extra") {
			mortgage, _ := state.Mortgage()
			extra = mortgage.ExtraPaymentAmount
		}
		if err := validation.ValidateNonNegative("extra payment", extra); err != nil {
			return err
		}

		schedule, err := state.Schedule(extra)
		if err != nil {
			return err
		}
		if schedule.Capped {
			c.logger.Warn("payment never amortizes the loan",
				zap.String("op", "main.schedule"),
				zap.Int("payments", schedule.Len()),
			)
		}

		switch c.outputFormat {
		case constants.OutputFormatCSV:
			output.CsvSchedule(c.out, schedule)
		default:
			output.PrettySchedule(c.out, name, schedule)
		}
		return nil
	})
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Summarize the mortgage",
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			state, name, err := c.mortgage(cmd.Context())
			if err != nil {
				return err
			}
			output.PrettyMortgageSummary(c.out, name, state.MortgageSummary())
			return nil
		}),
	}
}

func (c *cli) impactCmd() *cobra.Command {
	var extra float64

	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Compare the mortgage with and without an extra monthly payment",
	}
	cmd.Flags().Float64Var(&extra, "extra", 0, "extra monthly principal to evaluate")
	_ = cmd.MarkFlagRequired("extra")
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		if err := validation.ValidateNonNegative("extra payment", extra); err != nil {
			return err
		}
		state, name, err := c.mortgage(cmd.Context())
		if err != nil {
			return err
		}
		output.PrettyImpact(c.out, name, state.ExtraPaymentImpact(extra))
		return nil
	})
	return cmd
}

func (c *cli) projectCmd() *cobra.Command {
	var (
		account string
		years   int
	)

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project retirement balances year by year",
		Long:  "Project one account, or every active account combined when --account is not given.",
	}
	cmd.Flags().StringVar(&account, "account", "", "account ID or name (default: all active accounts combined)")
	cmd.Flags().IntVar(&years, "years", 0, "years to project (default: until retirement)")
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		if !cmd.Flags().Changed("years") {
			years = c.conf.Profile.ProjectionYears()
		}
		if err := validation.ValidateProjectionYears(years); err != nil {
			return err
		}

		state, err := c.loadState(cmd.Context())
		if err != nil {
			return err
		}

		name := "All accounts"
		var projections []retirement.Projection
		if account == "" {
			projections = state.CombinedProjections(years, c.conf.Profile.CurrentAge)
		} else {
			found, ok := state.FindAccount(account)
			if !ok {
				return fmt.Errorf("%w: %s", tracker.ErrUnknownAccount, account)
			}
			name = found.Name
			projections, err = state.Projections(found.ID, years, c.conf.Profile.CurrentAge)
			if err != nil {
				return err
			}
		}

		switch c.outputFormat {
		case constants.OutputFormatCSV:
			output.CsvProjections(c.out, projections)
		default:
			output.PrettyProjections(c.out, name, projections)
		}
		return nil
	})
	return cmd
}

func (c *cli) retirementCmd() *cobra.Command {
	var retirementAge int

	cmd := &cobra.Command{
		Use:   "retirement",
		Short: "Summarize retirement accounts and project them to retirement",
	}
	cmd.Flags().IntVar(&retirementAge, "retirement-age", 0, "retirement age override")
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		profile := c.conf.Profile
		if cmd.Flags().Changed("retirement-age") {
			profile.RetirementAge = &retirementAge
		}
		if err := profile.Validate(); err != nil {
			return err
		}
		if warning := validation.RetirementAgeWarning(profile.CurrentAge, profile.RetirementAge); warning != "" {
			c.logger.Warn(warning, zap.String("op", "main.retirement"))
		}

		state, err := c.loadState(cmd.Context())
		if err != nil {
			return err
		}
		output.PrettyRetirementSummary(c.out, state.RetirementSummary(profile.RetirementAge, profile.CurrentAge))
		return nil
	})
	return cmd
}

func (c *cli) spendingCmd() *cobra.Command {
	var (
		month  string
		months int
	)

	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Report income, expenses and category spending for a month",
	}
	cmd.Flags().StringVar(&month, "month", "", "calendar month as YYYY-MM (default: the current month)")
	cmd.Flags().IntVar(&months, "months", constants.DefaultTrendMonths, "months of trend history ending at --month")
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		through := time.Now().UTC()
		if month != "" {
			parsed, err := datetime.ParseMonth(month)
			if err != nil {
				return err
			}
			through = parsed
		}
		if err := validation.ValidateTrendMonths(months); err != nil {
			return err
		}

		state, err := c.loadState(cmd.Context())
		if err != nil {
			return err
		}
		report := state.SpendingReport(through, months)

		switch c.outputFormat {
		case constants.OutputFormatCSV:
			output.CsvSpendingTrend(c.out, report.Trend)
		default:
			output.PrettySpendingReport(c.out, report)
		}
		return nil
	})
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace the records in the store with those in the configuration file",
		RunE: c.run(func(cmd *cobra.Command, _ []string) error {
			snapshot, err := c.conf.ToSnapshot()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			s, err := c.openStore()
			if err != nil {
				return err
			}
			if err := tracker.New(s, c.logger).ReplaceSnapshot(cmd.Context(), snapshot); err != nil {
				return err
			}

			c.logger.Info("imported configuration",
				zap.String("op", "main.import"),
				zap.String("store", c.storePath()),
				zap.Bool("mortgage", snapshot.Mortgage != nil),
				zap.Int("accounts", len(snapshot.Accounts)),
				zap.Int("contributions", len(snapshot.Contributions)),
				zap.Int("categories", len(snapshot.Categories)),
				zap.Int("transactions", len(snapshot.Transactions)),
			)
			_, _ = fmt.Fprintf(c.out, "Imported %d accounts and %d contributions, %d transactions in %d categories into %s\n",
				len(snapshot.Accounts), len(snapshot.Contributions),
				len(snapshot.Transactions), len(snapshot.Categories), c.storePath())
			return nil
		}),
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current records as a YAML configuration",
	}
	cmd.Flags().StringVar(&file, "file", "", "write to this file instead of stdout")
	cmd.RunE = c.run(func(cmd *cobra.Command, _ []string) error {
		state, err := c.loadState(cmd.Context())
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(config.FromSnapshot(state.Snapshot(), c.conf.Profile))
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}

		if file == "" {
			_, err = c.out.Write(data)
			return err
		}
		if err := os.WriteFile(file, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		return nil
	})
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	var serverConfigPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculation API over HTTP",
	}
	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.RunE = c.run(func(_ *cobra.Command, _ []string) error {
		serverConf, err := server.LoadConfig(serverConfigPath)
		if err != nil {
			return err
		}
		if serverConf.Logging != (config.LoggingConfig{}) {
			logger, err := initializeLogger(serverConf.Logging, c.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			_ = c.logger.Sync()
			c.logger = logger
		}

		if c.dbPath == "" {
			c.dbPath = serverConf.StorePath
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		s, err := c.openStore()
		if err != nil {
			return err
		}
		state := tracker.New(s, c.logger)
		if err := state.Load(ctx); err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr: serverConf.Address,
			Handler: server.NewHandler(c.logger, serverConf.UploadSizeBytes(), version,
				server.WithTracker(state, c.conf.Profile),
				server.WithRateLimit(serverConf.RateLimit, serverConf.RateBurst),
			),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		c.logger.Info("serving API",
			zap.String("op", "main.serve"),
			zap.String("address", serverConf.Address),
			zap.String("store", c.storePath()),
			zap.Float64("rate_limit", serverConf.RateLimit),
		)

		select {
		case <-ctx.Done():
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), serverConf.ShutdownGrace())
			defer cancelShutdown()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	})
	return cmd
}
