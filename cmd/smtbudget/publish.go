package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"smtbudget/internal/budget"
	"smtbudget/internal/publisher"
	"smtbudget/internal/usage"
)

var publishESIID string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish computed figures to Home Assistant via MQTT",
	Long: `Computes the trailing 12-month average and budget target from archived
billing records and publishes them to the configured MQTT broker as a retained
message for a Home Assistant sensor.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishESIID, "esiid", "", "Meter to publish for (default: only meter in archive)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}
	if err := cfg.ValidateMQTT(); err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	esiid, err := resolveArchiveESIID(db, publishESIID)
	if err != nil {
		return err
	}

	records, err := db.ListBilling(esiid)
	if err != nil {
		return fmt.Errorf("listing billing records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No archived billing data found (run 'smtbudget fetch' first)")
		return nil
	}

	average := usage.TrailingTwelveMonthAverage(records)
	if average == 0 {
		return fmt.Errorf("fewer than 12 months of history archived, nothing to publish")
	}

	target := budget.ComputeTarget(average, cfg.KWhRate, time.Now())

	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Printf("Publishing trailing average %.2f kWh (target $%.2f)... ", average, target.Amount)
	if err := pub.PublishAverage(average, target.Amount, time.Now()); err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("publishing: %w", err)
	}
	fmt.Println("✓")

	return nil
}
