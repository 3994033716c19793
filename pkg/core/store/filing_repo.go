package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"insider_filings/pkg/models"
)

// FilingRepo persists FilingRecords and their alerts.
type FilingRepo struct{}

// NewFilingRepo creates a new repository instance.
func NewFilingRepo() *FilingRepo {
	return &FilingRepo{}
}

// InsertRecord upserts one record keyed by its UID, so re-running a batch over
// the same documents never duplicates rows.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS insider_filings (
//   uid TEXT PRIMARY KEY,
//   symbol TEXT,
//   holder_name TEXT,
//   transaction_type TEXT,
//   filing_json JSONB,
//   needs_review BOOLEAN,
//   updated_at TIMESTAMPTZ
// );
func (r *FilingRepo) InsertRecord(ctx context.Context, rec *models.FilingRecord) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal filing record: %w", err)
	}

	query := `
		INSERT INTO insider_filings (uid, symbol, holder_name, transaction_type, filing_json, needs_review, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (uid)
		DO UPDATE SET
			symbol = EXCLUDED.symbol,
			holder_name = EXCLUDED.holder_name,
			transaction_type = EXCLUDED.transaction_type,
			filing_json = EXCLUDED.filing_json,
			needs_review = EXCLUDED.needs_review,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query,
		rec.UID, rec.Symbol, rec.HolderName, string(rec.TransactionType),
		jsonData, rec.NeedsReview, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save filing record: %w", err)
	}
	return nil
}

// InsertRecords saves a batch, continuing past per-record failures. It
// returns the number inserted and the first error encountered.
func (r *FilingRepo) InsertRecords(ctx context.Context, recs []*models.FilingRecord) (int, error) {
	var firstErr error
	inserted := 0
	for _, rec := range recs {
		if err := r.InsertRecord(ctx, rec); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		inserted++
	}
	return inserted, firstErr
}

// InsertAlerts appends a batch of alerts.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS filing_alerts (
//   id BIGSERIAL PRIMARY KEY,
//   stage TEXT,
//   code TEXT,
//   severity TEXT,
//   error_filename TEXT,
//   alert_json JSONB,
//   logged_at TEXT
// );
func (r *FilingRepo) InsertAlerts(ctx context.Context, alerts []models.Alert) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO filing_alerts (stage, code, severity, error_filename, alert_json, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, a := range alerts {
		jsonData, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		if _, err := pool.Exec(ctx, query,
			a.Stage, a.Code, string(a.Severity), a.Filename, jsonData, a.LoggedAt); err != nil {
			return fmt.Errorf("failed to save alert: %w", err)
		}
	}
	return nil
}
