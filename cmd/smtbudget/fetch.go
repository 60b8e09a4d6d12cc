package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"smtbudget/internal/config"
	"smtbudget/internal/smt"
	"smtbudget/pkg/models"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch billing data from Smart Meter Texas",
	Long: `Fetches monthly billing records from the Smart Meter Texas API and stores
them in the local SQLite archive. Duplicate months are skipped automatically.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Fetch started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateFetch(); err != nil {
		return err
	}

	ctx := context.Background()
	esiid, records, err := fetchBillingRecords(ctx, cfg)
	if err != nil {
		return fmt.Errorf("fetching billing data: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No billing data found")
		return nil
	}

	if err := archiveRecords(cfg, esiid, records); err != nil {
		return fmt.Errorf("archiving records: %w", err)
	}

	fmt.Printf("✓ Processed %d records for meter %s (duplicates automatically skipped by database)\n", len(records), esiid)
	return nil
}

// fetchBillingRecords authenticates against the SMT API, resolves the meter,
// and fetches billing records over the configured window
func fetchBillingRecords(ctx context.Context, cfg *config.Config) (string, []models.BillingRecord, error) {
	client := smt.NewClient(cfg.SMT.Username, cfg.SMT.Password)

	esiid := cfg.SMT.ESIID
	if esiid == "" {
		meters, err := client.FetchMeters(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("fetching meters: %w", err)
		}
		if len(meters) == 0 {
			return "", nil, fmt.Errorf("no meters found for account")
		}
		esiid = meters[0].ESIID
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -cfg.GetDaysToFetch())

	report, err := client.MonthlyBilling(ctx, esiid, startDate, endDate)
	if err != nil {
		return "", nil, err
	}

	return esiid, report.Data.BillingData, nil
}

// archiveRecords stores fetched records in the local SQLite archive
func archiveRecords(cfg *config.Config, esiid string, records []models.BillingRecord) error {
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for i := range records {
		if err := db.InsertBilling(esiid, &records[i]); err != nil {
			return fmt.Errorf("inserting billing record: %w", err)
		}
	}

	return nil
}
