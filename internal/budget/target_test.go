package budget

import (
	"math"
	"testing"
	"time"
)

func TestComputeTarget(t *testing.T) {
	now := time.Date(2025, time.January, 15, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		avgKWh         float64
		rate           float64
		wantAmount     float64
		wantMilliunits int64
		wantNote       string
	}{
		{
			name:           "typical rate",
			avgKWh:         1065.0,
			rate:           0.17754,
			wantAmount:     189.0801,
			wantMilliunits: 189080,
			wantNote:       "Updated on 2025-01-15 to $189.08 based on 1065.00 kWh usage.",
		},
		{
			name:           "sub-milliunit amounts truncate to zero",
			avgKWh:         1,
			rate:           0.0005,
			wantAmount:     0.0005,
			wantMilliunits: 0,
			wantNote:       "Updated on 2025-01-15 to $0.00 based on 1.00 kWh usage.",
		},
		{
			name:           "zero average passes through",
			avgKWh:         0,
			rate:           0.17754,
			wantAmount:     0,
			wantMilliunits: 0,
			wantNote:       "Updated on 2025-01-15 to $0.00 based on 0.00 kWh usage.",
		},
		{
			name:           "negative average is not special-cased",
			avgKWh:         -100,
			rate:           0.1,
			wantAmount:     -10,
			wantMilliunits: -10000,
			wantNote:       "Updated on 2025-01-15 to $-10.00 based on -100.00 kWh usage.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTarget(tt.avgKWh, tt.rate, now)

			if math.Abs(got.Amount-tt.wantAmount) > 1e-9 {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.Milliunits != tt.wantMilliunits {
				t.Errorf("Milliunits = %d, want %d", got.Milliunits, tt.wantMilliunits)
			}
			if got.Note != tt.wantNote {
				t.Errorf("Note = %q, want %q", got.Note, tt.wantNote)
			}
		})
	}
}
