package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"smtbudget/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS billing_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		esiid TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		revision_date TEXT,
		actual_kwh REAL NOT NULL,
		metered_kw REAL,
		billed_kw REAL,
		created_at TEXT NOT NULL,
		UNIQUE(esiid, start_date)
	);
	CREATE INDEX IF NOT EXISTS idx_billing_esiid ON billing_records(esiid);
	CREATE INDEX IF NOT EXISTS idx_billing_start_date ON billing_records(start_date);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertBilling inserts a billing record, ignoring duplicates. A refetched
// month with the same start date is skipped by the UNIQUE constraint.
func (db *DB) InsertBilling(esiid string, record *models.BillingRecord) error {
	query := `
	INSERT OR IGNORE INTO billing_records
		(esiid, start_date, end_date, revision_date, actual_kwh, metered_kw, billed_kw, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var endDateStr, revisionDateStr string
	if !record.EndDate.IsZero() {
		endDateStr = record.EndDate.Format("2006-01-02")
	}
	if !record.RevisionDate.IsZero() {
		revisionDateStr = record.RevisionDate.Format("2006-01-02 15:04:05")
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := db.conn.Exec(query,
		esiid,
		record.StartDate.Format("2006-01-02"),
		endDateStr,
		revisionDateStr,
		record.ActualKWh,
		record.MeteredKW,
		record.BilledKW,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting billing record: %w", err)
	}

	return nil
}

// ListBilling retrieves all archived billing records for a meter, ordered by
// start date ascending. An empty esiid returns records for all meters.
func (db *DB) ListBilling(esiid string) ([]models.BillingRecord, error) {
	query := `
	SELECT start_date, end_date, revision_date, actual_kwh, metered_kw, billed_kw
	FROM billing_records
	`
	args := []interface{}{}
	if esiid != "" {
		query += ` WHERE esiid = ?`
		args = append(args, esiid)
	}
	query += ` ORDER BY start_date ASC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying billing records: %w", err)
	}
	defer rows.Close()

	var results []models.BillingRecord
	for rows.Next() {
		var record models.BillingRecord
		var startDateStr string
		var endDateStr, revisionDateStr sql.NullString
		var meteredKW, billedKW sql.NullFloat64

		if err := rows.Scan(&startDateStr, &endDateStr, &revisionDateStr, &record.ActualKWh, &meteredKW, &billedKW); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		record.StartDate, err = time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date: %w", err)
		}

		if endDateStr.Valid && endDateStr.String != "" {
			record.EndDate, err = time.Parse("2006-01-02", endDateStr.String)
			if err != nil {
				return nil, fmt.Errorf("parsing end_date: %w", err)
			}
		}

		if revisionDateStr.Valid && revisionDateStr.String != "" {
			record.RevisionDate, err = time.Parse("2006-01-02 15:04:05", revisionDateStr.String)
			if err != nil {
				return nil, fmt.Errorf("parsing revision_date: %w", err)
			}
		}

		record.MeteredKW = meteredKW.Float64
		record.BilledKW = billedKW.Float64

		results = append(results, record)
	}

	return results, rows.Err()
}

// ListESIIDs returns the distinct meter IDs present in the archive
func (db *DB) ListESIIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT esiid FROM billing_records ORDER BY esiid`)
	if err != nil {
		return nil, fmt.Errorf("querying meter IDs: %w", err)
	}
	defer rows.Close()

	var esiids []string
	for rows.Next() {
		var esiid string
		if err := rows.Scan(&esiid); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		esiids = append(esiids, esiid)
	}

	return esiids, rows.Err()
}
