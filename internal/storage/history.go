package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
)

// DefaultHistoryLimit bounds ListHistory when no limit is given.
const DefaultHistoryLimit = 50

// AppendHistory inserts rec and sets its ID. A zero CreatedAt is stamped with
// the current time.
func (s *SQLiteStorage) AppendHistory(ctx context.Context, rec *model.HistoryRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	riskLevel := rec.RiskLevel
	if riskLevel == "" {
		riskLevel = "unknown"
	}

	var total sql.NullFloat64
	if rec.TotalHome != nil {
		total = sql.NullFloat64{Float64: *rec.TotalHome, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO history
			(created_at, user_id, session_id, mode, input_repr, total_home, home_currency, risk_level, note, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt, rec.UserID, rec.SessionID, rec.Mode, rec.InputRepr,
		total, rec.HomeCurrency, riskLevel, rec.Note, string(rec.RawResult),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read history id: %w", err)
	}
	rec.ID = id
	rec.RiskLevel = riskLevel
	return nil
}

// ListHistory returns the user's most recent records, newest first, without
// their raw result payloads.
func (s *SQLiteStorage) ListHistory(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, user_id, session_id, mode, input_repr, total_home, home_currency, risk_level, note
		FROM history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.HistoryRecord
	for rows.Next() {
		var (
			rec          model.HistoryRecord
			total        sql.NullFloat64
			homeCurrency sql.NullString
			riskLevel    sql.NullString
			note         sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.UserID, &rec.SessionID, &rec.Mode,
			&rec.InputRepr, &total, &homeCurrency, &riskLevel, &note); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if total.Valid {
			v := total.Float64
			rec.TotalHome = &v
		}
		rec.HomeCurrency = homeCurrency.String
		rec.RiskLevel = riskLevel.String
		rec.Note = note.String
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return records, nil
}

// GetHistoryRaw returns the stored result envelope for id.
func (s *SQLiteStorage) GetHistoryRaw(ctx context.Context, id int64) (json.RawMessage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT raw_json FROM history WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return json.RawMessage(raw), nil
}
