package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"smtbudget/internal/budget"
	"smtbudget/internal/config"
	"smtbudget/internal/healthcheck"
	"smtbudget/internal/log"
	"smtbudget/internal/publisher"
	"smtbudget/internal/usage"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full scheduled workflow",
	Long: `Runs the complete monthly workflow: pings the healthcheck start endpoint,
fetches billing history from Smart Meter Texas, computes the trailing 12-month
average usage, updates the YNAB category goal target, optionally publishes the
figures over MQTT, and pings the healthcheck success or fail endpoint.

Intended to be invoked from cron. Output is structured for log collection.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Compute but skip the YNAB update and MQTT publish")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := log.New(slog.LevelInfo).WithComponent("run")
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	pinger := healthcheck.New(cfg.HealthcheckURL)
	if err := pinger.Start(ctx); err != nil {
		logger.Warn("healthcheck start ping failed", "error", err)
	}

	if err := executeRun(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		if pingErr := pinger.Fail(ctx); pingErr != nil {
			logger.Warn("healthcheck fail ping failed", "error", pingErr)
		}
		return err
	}

	if err := pinger.Success(ctx); err != nil {
		logger.Warn("healthcheck success ping failed", "error", err)
	}

	return nil
}

func executeRun(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	esiid, records, err := fetchBillingRecords(ctx, cfg)
	if err != nil {
		return fmt.Errorf("fetching billing data: %w", err)
	}
	logger.Info("fetched billing data", "esiid", esiid, "records", len(records))

	// Archive the raw records for inspection; the computation below always
	// uses the freshly fetched set, so a failed archive is not fatal.
	if err := archiveRecords(cfg, esiid, records); err != nil {
		logger.Warn("archiving records failed", "error", err)
	}

	average := usage.TrailingTwelveMonthAverage(records)
	if average == 0 {
		logger.Info("fewer than 12 months of history, skipping target update")
		return nil
	}
	logger.Info("computed trailing 12-month average", "avg_kwh", fmt.Sprintf("%.2f", average))

	target := budget.ComputeTarget(average, cfg.KWhRate, time.Now())
	logger.Info("computed budget target",
		"amount", fmt.Sprintf("%.2f", target.Amount),
		"milliunits", target.Milliunits,
		"rate", cfg.KWhRate)

	if runDryRun {
		logger.Info("dry run, skipping YNAB update and MQTT publish")
		return nil
	}

	ynab := budget.NewYNABClient(cfg.YNAB.AccessToken, cfg.YNAB.BudgetID, cfg.YNAB.CategoryID)
	if err := ynab.UpdateCategoryTarget(ctx, target); err != nil {
		return fmt.Errorf("updating YNAB category: %w", err)
	}
	logger.Info("updated YNAB category goal target", "category", cfg.YNAB.CategoryID)

	if cfg.MQTT.Enabled {
		if err := publishAverage(cfg, average, target.Amount); err != nil {
			// Publishing is a best-effort side channel for Home Assistant
			logger.Warn("MQTT publish failed", "error", err)
		} else {
			logger.Info("published figures over MQTT")
		}
	}

	return nil
}

func publishAverage(cfg *config.Config, average, targetAmount float64) error {
	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	return pub.PublishAverage(average, targetAmount, time.Now())
}
