package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"smtbudget/internal/budget"
	"smtbudget/internal/database"
	"smtbudget/internal/usage"
)

var averageESIID string

var averageCmd = &cobra.Command{
	Use:   "average",
	Short: "Compute the trailing 12-month average from archived data",
	Long: `Computes monthly usage totals and the trailing 12-month average from the
billing records stored in the local archive, without contacting any API.`,
	RunE: runAverage,
}

func init() {
	averageCmd.Flags().StringVar(&averageESIID, "esiid", "", "Meter to compute for (default: only meter in archive)")
	rootCmd.AddCommand(averageCmd)
}

func runAverage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	esiid, err := resolveArchiveESIID(db, averageESIID)
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

	totals := usage.MonthlyTotals(records)
	series := usage.TrailingAverages(totals)

	fmt.Printf("\nMonthly trailing averages for meter %s:\n", esiid)
	fmt.Println("----------------------------------------")
	fmt.Printf("%-8s  %14s\n", "Month", "Trailing kWh")
	fmt.Println("----------------------------------------")
	for _, entry := range series {
		fmt.Printf("%-8s  %14s\n", entry.Month, humanize.CommafWithDigits(entry.Average, 2))
	}
	fmt.Println("----------------------------------------")

	average := usage.TrailingTwelveMonthAverage(records)
	if average == 0 {
		fmt.Printf("Fewer than 12 months of history (%d months archived), no trailing average yet\n", len(totals))
		return nil
	}

	fmt.Printf("Current trailing 12-month average: %s kWh\n", humanize.CommafWithDigits(average, 2))

	if cfg.KWhRate > 0 {
		target := budget.ComputeTarget(average, cfg.KWhRate, time.Now())
		fmt.Printf("Budget target at $%v/kWh: $%.2f (%d milliunits)\n", cfg.KWhRate, target.Amount, target.Milliunits)
	}

	return nil
}

// resolveArchiveESIID picks the meter to operate on: an explicit flag value,
// or the archive's only meter when unambiguous
func resolveArchiveESIID(db *database.DB, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	esiids, err := db.ListESIIDs()
	if err != nil {
		return "", fmt.Errorf("listing meters: %w", err)
	}

	switch len(esiids) {
	case 0:
		// Let callers print their own "no data" message on the empty list
		return "", nil
	case 1:
		return esiids[0], nil
	default:
		return "", fmt.Errorf("multiple meters in archive (%v), specify one with --esiid", esiids)
	}
}
