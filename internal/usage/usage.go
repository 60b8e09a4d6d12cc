// Package usage computes monthly aggregates and trailing averages over
// billing records. Everything here is a pure function of its input.
package usage

import (
	"sort"
	"time"

	"smtbudget/pkg/models"
)

// windowSize is the number of monthly data points in a trailing window
const windowSize = 12

// MonthKey identifies a calendar month for grouping
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthKeyOf truncates a date to its calendar month
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Before reports whether k is chronologically before other
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String formats the key as YYYY-MM
func (k MonthKey) String() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthlyAverage pairs a month with its trailing average
type MonthlyAverage struct {
	Month   MonthKey
	Average float64
}

// MonthlyTotals groups billing records into per-month usage totals.
// Multiple records in the same month are summed, never overwritten.
func MonthlyTotals(records []models.BillingRecord) map[MonthKey]float64 {
	totals := make(map[MonthKey]float64, len(records))
	for _, r := range records {
		totals[MonthKeyOf(r.StartDate)] += r.ActualKWh
	}
	return totals
}

// sortedMonths returns the months of a totals map in chronological order
func sortedMonths(totals map[MonthKey]float64) []MonthKey {
	months := make([]MonthKey, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})
	return months
}

// TrailingAverages computes the trailing 12-month average for each month that
// has at least 12 data points in its window. The window for position i covers
// entries [max(0, i-11), i] of the chronologically sorted series; months
// missing from the input are not zero-filled, they simply contribute nothing.
func TrailingAverages(totals map[MonthKey]float64) []MonthlyAverage {
	months := sortedMonths(totals)

	var series []MonthlyAverage
	for i := range months {
		start := i - (windowSize - 1)
		if start < 0 {
			start = 0
		}
		if i-start+1 < windowSize {
			continue
		}

		var sum float64
		for _, m := range months[start : i+1] {
			sum += totals[m]
		}
		series = append(series, MonthlyAverage{
			Month:   months[i],
			Average: sum / windowSize,
		})
	}
	return series
}

// TrailingTwelveMonthAverage computes the trailing 12-month average usage for
// the most recent month in the record set. It returns 0 when fewer than 12
// distinct months of history are available; that sentinel is a defined result,
// not an error. Zero-usage months are valid data points.
func TrailingTwelveMonthAverage(records []models.BillingRecord) float64 {
	totals := MonthlyTotals(records)
	if len(totals) < windowSize {
		return 0
	}

	series := TrailingAverages(totals)
	if len(series) == 0 {
		return 0
	}

	// The last series entry is always the most recent month: with >= 12
	// distinct months the final position's window is full.
	return series[len(series)-1].Average
}
