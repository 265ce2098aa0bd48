package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spentify/internal/core"
)

const recordColumns = `id, user_id, description, amount, category, date, created_at`

// CreateRecord implements ports.RecordWriter. Missing id and created_at are filled in.
func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Description, rec.Amount, string(rec.Category),
		rec.Date.String(), formatTimestamp(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	slog.DebugContext(ctx, "Record saved to SQLite", "record_id", rec.ID, "user_id", rec.UserID)
	return nil
}

// DeleteRecord implements ports.RecordWriter
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, userID, recordID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE id = ? AND user_id = ?`, recordID, userID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListRecords implements ports.RecordReader
func (r *SQLiteRepository) ListRecords(ctx context.Context, userID string, limit int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE user_id = ?
		 ORDER BY date DESC, created_at DESC, id
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return scanRecords(rows)
}

// AllRecords implements ports.RecordReader
func (r *SQLiteRepository) AllRecords(ctx context.Context, userID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE user_id = ?
		 ORDER BY date DESC, created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all records: %w", err)
	}
	return scanRecords(rows)
}

// SumAndCount implements ports.RecordReader. Amounts are added as decimals
// in Go so the total matches the memory store to the cent.
func (r *SQLiteRepository) SumAndCount(ctx context.Context, userID string) (float64, int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT amount FROM records WHERE user_id = ?`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("sum records: %w", err)
	}
	defer rows.Close()

	var amounts []core.Record
	for rows.Next() {
		var rec core.Record
		if err := rows.Scan(&rec.Amount); err != nil {
			return 0, 0, fmt.Errorf("sum records: %w", err)
		}
		amounts = append(amounts, rec)
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("sum records: %w", err)
	}
	return core.Sum(amounts), core.CountPositive(amounts), nil
}

// MinMax implements ports.RecordReader
func (r *SQLiteRepository) MinMax(ctx context.Context, userID string) (float64, float64, error) {
	var min, max float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(amount), 0), COALESCE(MAX(amount), 0)
		 FROM records WHERE user_id = ?`, userID).Scan(&min, &max)
	if err != nil {
		return 0, 0, fmt.Errorf("min max records: %w", err)
	}
	return min, max, nil
}

func scanRecords(rows *sql.Rows) ([]core.Record, error) {
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			rec               core.Record
			category          string
			date, createdAtTS string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Description, &rec.Amount, &category, &date, &createdAtTS); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Category = core.Category(category)

		d, err := time.Parse(core.TimestampLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse record date %q: %w", date, err)
		}
		rec.Date = core.NormalizeDate(d)

		if rec.CreatedAt, err = parseTimestamp(createdAtTS); err != nil {
			return nil, fmt.Errorf("parse record created_at %q: %w", createdAtTS, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
