package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBillingRecordUnmarshal(t *testing.T) {
	data := []byte(`{
		"startDate": "01/05/2024",
		"endDate": "02/04/2024",
		"revisionDate": "02/05/2024 09:30:00",
		"actualkWh": 1010.5,
		"meteredKW": 4.2,
		"billedKW": 4.0
	}`)

	var record BillingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if want := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC); !record.StartDate.Equal(want) {
		t.Errorf("StartDate = %v, want %v", record.StartDate, want)
	}
	if want := time.Date(2024, time.February, 5, 9, 30, 0, 0, time.UTC); !record.RevisionDate.Equal(want) {
		t.Errorf("RevisionDate = %v, want %v", record.RevisionDate, want)
	}
	if record.ActualKWh != 1010.5 {
		t.Errorf("ActualKWh = %v, want 1010.5", record.ActualKWh)
	}
}

func TestBillingRecordUnmarshalDateOnlyRevision(t *testing.T) {
	data := []byte(`{"startDate": "01/05/2024", "endDate": "02/04/2024", "revisionDate": "02/05/2024", "actualkWh": 100}`)

	var record BillingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if want := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC); !record.RevisionDate.Equal(want) {
		t.Errorf("RevisionDate = %v, want %v", record.RevisionDate, want)
	}
}

func TestBillingRecordUnmarshalBadDate(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad start date", `{"startDate": "2024-01-05", "endDate": "02/04/2024", "actualkWh": 100}`},
		{"bad end date", `{"startDate": "01/05/2024", "endDate": "garbage", "actualkWh": 100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var record BillingRecord
			if err := json.Unmarshal([]byte(tt.data), &record); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
