package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date formats used by the Smart Meter Texas API
const (
	SMTDateFormat      = "01/02/2006"
	SMTTimestampFormat = "01/02/2006 15:04:05"
)

// BillingRecord represents a single monthly billing entry for a meter
type BillingRecord struct {
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	RevisionDate time.Time `json:"revisionDate"`
	ActualKWh    float64   `json:"actualkWh"`
	MeteredKW    float64   `json:"meteredKW"`
	BilledKW     float64   `json:"billedKW"`
}

// billingRecordJSON mirrors the wire shape, with dates as strings
type billingRecordJSON struct {
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	RevisionDate string  `json:"revisionDate"`
	ActualKWh    float64 `json:"actualkWh"`
	MeteredKW    float64 `json:"meteredKW"`
	BilledKW     float64 `json:"billedKW"`
}

// UnmarshalJSON parses the API's MM/DD/YYYY date strings. A record with an
// unparseable date is a decode error, not a silently skipped row.
func (r *BillingRecord) UnmarshalJSON(data []byte) error {
	var raw billingRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	startDate, err := time.Parse(SMTDateFormat, raw.StartDate)
	if err != nil {
		return fmt.Errorf("parsing startDate %q: %w", raw.StartDate, err)
	}

	endDate, err := time.Parse(SMTDateFormat, raw.EndDate)
	if err != nil {
		return fmt.Errorf("parsing endDate %q: %w", raw.EndDate, err)
	}

	// Revision date carries a time component, but some responses truncate it
	var revisionDate time.Time
	if raw.RevisionDate != "" {
		revisionDate, err = time.Parse(SMTTimestampFormat, raw.RevisionDate)
		if err != nil {
			revisionDate, err = time.Parse(SMTDateFormat, raw.RevisionDate)
			if err != nil {
				return fmt.Errorf("parsing revisionDate %q: %w", raw.RevisionDate, err)
			}
		}
	}

	r.StartDate = startDate
	r.EndDate = endDate
	r.RevisionDate = revisionDate
	r.ActualKWh = raw.ActualKWh
	r.MeteredKW = raw.MeteredKW
	r.BilledKW = raw.BilledKW
	return nil
}

// MarshalJSON writes dates back in the API's string formats
func (r BillingRecord) MarshalJSON() ([]byte, error) {
	raw := billingRecordJSON{
		StartDate: r.StartDate.Format(SMTDateFormat),
		EndDate:   r.EndDate.Format(SMTDateFormat),
		ActualKWh: r.ActualKWh,
		MeteredKW: r.MeteredKW,
		BilledKW:  r.BilledKW,
	}
	if !r.RevisionDate.IsZero() {
		raw.RevisionDate = r.RevisionDate.Format(SMTTimestampFormat)
	}
	return json.Marshal(raw)
}

// MonthlyBillingData is the payload of a monthly billing sync response
type MonthlyBillingData struct {
	TransID     string          `json:"trans_id"`
	ESIID       string          `json:"esiid"`
	BillingData []BillingRecord `json:"billingData"`
}

// MonthlyBillingResponse is the top-level monthly billing sync response
type MonthlyBillingResponse struct {
	Data MonthlyBillingData `json:"data"`
}

// Meter describes a meter attached to the account
type Meter struct {
	ESIID   string `json:"esiid"`
	Address string `json:"address"`
}
