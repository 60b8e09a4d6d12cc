package usage

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"smtbudget/pkg/models"
)

func record(t *testing.T, date string, kwh float64) models.BillingRecord {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("parsing test date %q: %v", date, err)
	}
	return models.BillingRecord{StartDate: d, EndDate: d, ActualKWh: kwh}
}

// monthsOf builds one record per month starting at the given month
func monthsOf(t *testing.T, start string, usages ...float64) []models.BillingRecord {
	t.Helper()
	first, err := time.Parse("2006-01", start)
	if err != nil {
		t.Fatalf("parsing test month %q: %v", start, err)
	}
	var records []models.BillingRecord
	for i, kwh := range usages {
		records = append(records, models.BillingRecord{
			StartDate: first.AddDate(0, i, 0),
			ActualKWh: kwh,
		})
	}
	return records
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMonthlyTotals(t *testing.T) {
	records := []models.BillingRecord{
		record(t, "2024-01-03", 100),
		record(t, "2024-01-20", 150),
		record(t, "2024-02-01", 200),
		record(t, "2023-12-31", 50),
	}

	totals := MonthlyTotals(records)

	want := map[MonthKey]float64{
		{Year: 2023, Month: time.December}: 50,
		{Year: 2024, Month: time.January}:  250,
		{Year: 2024, Month: time.February}: 200,
	}

	if len(totals) != len(want) {
		t.Fatalf("got %d months, want %d", len(totals), len(want))
	}
	for month, total := range want {
		if !almostEqual(totals[month], total) {
			t.Errorf("month %s: got %v, want %v", month, totals[month], total)
		}
	}
}

func TestMonthlyTotalsEmpty(t *testing.T) {
	totals := MonthlyTotals(nil)
	if len(totals) != 0 {
		t.Errorf("got %d months for empty input, want 0", len(totals))
	}
}

func TestTrailingTwelveMonthAverage(t *testing.T) {
	tests := []struct {
		name    string
		records []models.BillingRecord
		want    float64
	}{
		{
			name:    "empty input",
			records: nil,
			want:    0,
		},
		{
			name:    "six months is insufficient",
			records: monthsOf(t, "2024-01", 1000, 1000, 1000, 1000, 1000, 1000),
			want:    0,
		},
		{
			name: "eleven months is insufficient",
			records: monthsOf(t, "2024-01",
				1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000),
			want: 0,
		},
		{
			name: "exactly twelve months",
			records: monthsOf(t, "2024-01",
				100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 1100, 1200),
			want: 650,
		},
		{
			name: "thirteen months ignores the oldest",
			records: monthsOf(t, "2023-12",
				1000, 1010, 1020, 1030, 1040, 1050, 1060, 1070, 1080, 1090, 1100, 1110, 1120),
			want: 1065,
		},
		{
			name: "zero-usage month is a data point",
			records: monthsOf(t, "2024-01",
				1200, 1200, 1200, 1200, 1200, 1200, 1200, 1200, 1200, 1200, 1200, 0),
			want: 1100,
		},
		{
			name: "gap months are not zero-filled",
			// 12 data points spread over 24 calendar months still form a window
			records: func() []models.BillingRecord {
				first, _ := time.Parse("2006-01", "2023-01")
				var records []models.BillingRecord
				for i := 0; i < 12; i++ {
					records = append(records, models.BillingRecord{
						StartDate: first.AddDate(0, 2*i, 0),
						ActualKWh: 600,
					})
				}
				return records
			}(),
			want: 600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrailingTwelveMonthAverage(tt.records)
			if !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrailingAverageSumsWithinMonth(t *testing.T) {
	// Two 500 kWh records per month must sum to 1000, not average to 500
	var records []models.BillingRecord
	for month := 1; month <= 12; month++ {
		day1 := time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		day15 := time.Date(2024, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
		records = append(records,
			models.BillingRecord{StartDate: day1, ActualKWh: 500},
			models.BillingRecord{StartDate: day15, ActualKWh: 500},
		)
	}

	got := TrailingTwelveMonthAverage(records)
	if !almostEqual(got, 1000) {
		t.Errorf("got %v, want 1000", got)
	}
}

func TestTrailingAverageOrderIndependent(t *testing.T) {
	records := monthsOf(t, "2023-12",
		1000, 1010, 1020, 1030, 1040, 1050, 1060, 1070, 1080, 1090, 1100, 1110, 1120)

	want := TrailingTwelveMonthAverage(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.BillingRecord, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := TrailingTwelveMonthAverage(shuffled)
		if !almostEqual(got, want) {
			t.Fatalf("shuffle %d: got %v, want %v", i, got, want)
		}
	}
}

func TestTrailingAveragesSeries(t *testing.T) {
	// 14 months of history produce trailing averages for the last 3 months
	records := monthsOf(t, "2023-11",
		100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 220, 340)

	series := TrailingAverages(MonthlyTotals(records))

	if len(series) != 3 {
		t.Fatalf("got %d series entries, want 3", len(series))
	}

	wantMonths := []MonthKey{
		{Year: 2024, Month: time.October},
		{Year: 2024, Month: time.November},
		{Year: 2024, Month: time.December},
	}
	wantAverages := []float64{100, 110, 130}

	for i, entry := range series {
		if entry.Month != wantMonths[i] {
			t.Errorf("entry %d: got month %s, want %s", i, entry.Month, wantMonths[i])
		}
		if !almostEqual(entry.Average, wantAverages[i]) {
			t.Errorf("entry %d: got average %v, want %v", i, entry.Average, wantAverages[i])
		}
	}
}

func TestTrailingAveragesInsufficientHistory(t *testing.T) {
	series := TrailingAverages(MonthlyTotals(monthsOf(t, "2024-01", 100, 200, 300)))
	if len(series) != 0 {
		t.Errorf("got %d series entries for 3 months of data, want 0", len(series))
	}
}

func TestMonthKeyOrdering(t *testing.T) {
	tests := []struct {
		a, b MonthKey
		want bool
	}{
		{MonthKey{2023, time.December}, MonthKey{2024, time.January}, true},
		{MonthKey{2024, time.January}, MonthKey{2024, time.February}, true},
		{MonthKey{2024, time.February}, MonthKey{2024, time.January}, false},
		{MonthKey{2024, time.January}, MonthKey{2024, time.January}, false},
	}

	for _, tt := range tests {
		if got := tt.a.Before(tt.b); got != tt.want {
			t.Errorf("%s.Before(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
