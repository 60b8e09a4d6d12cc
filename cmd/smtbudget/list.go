package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listESIID string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived billing records",
	Long:  `Displays the monthly billing records stored in the local archive.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listESIID, "esiid", "", "Filter by meter")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	records, err := db.ListBilling(listESIID)
	if err != nil {
		return fmt.Errorf("listing billing records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No archived billing data found")
		return nil
	}

	fmt.Println("\nArchived Billing Data:")
	fmt.Println("--------------------------------------------------")
	fmt.Printf("%-12s  %-12s  %12s\n", "Start", "End", "kWh")
	fmt.Println("--------------------------------------------------")

	var total float64
	for _, record := range records {
		endStr := ""
		if !record.EndDate.IsZero() {
			endStr = record.EndDate.Format("2006-01-02")
		}
		fmt.Printf("%-12s  %-12s  %12.2f\n", record.StartDate.Format("2006-01-02"), endStr, record.ActualKWh)
		total += record.ActualKWh
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total: %s kWh (%d records)\n", humanize.CommafWithDigits(total, 2), len(records))

	return nil
}
