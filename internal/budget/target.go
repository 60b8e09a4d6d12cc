package budget

import (
	"fmt"
	"time"
)

// Target is a computed budget goal derived from trailing average usage
type Target struct {
	Amount     float64 // currency units
	Milliunits int64   // YNAB stores goals in thousandths of a unit
	Note       string
}

// ComputeTarget converts a trailing average usage figure into a budget target
// at the given $/kWh rate. Milliunits are truncated toward zero, matching how
// YNAB goal amounts are stored. A zero or negative average passes through
// without special-casing.
func ComputeTarget(avgKWh, rate float64, now time.Time) Target {
	amount := avgKWh * rate
	return Target{
		Amount:     amount,
		Milliunits: int64(amount * 1000),
		Note: fmt.Sprintf("Updated on %s to $%.2f based on %.2f kWh usage.",
			now.Format("2006-01-02"), amount, avgKWh),
	}
}
