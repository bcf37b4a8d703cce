package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sentinel/internal/domain"
)

// ReportRepository. Reports are stored whole as JSONB with a few columns
// broken out for querying.

func (db *DB) Save(ctx context.Context, report domain.RiskReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO reports (id, character_id, character_name, status, tier, confidence, report, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			tier = EXCLUDED.tier,
			confidence = EXCLUDED.confidence,
			report = EXCLUDED.report,
			completed_at = EXCLUDED.completed_at
	`, report.ID, report.CharacterID, report.CharacterName, report.Status,
		report.Tier, report.Confidence, payload, report.CreatedAt, report.CompletedAt)
	return err
}

func (db *DB) GetByID(ctx context.Context, id string) (domain.RiskReport, bool, error) {
	return db.scanOne(ctx, `SELECT report FROM reports WHERE id = $1`, id)
}

func (db *DB) LatestByCharacter(ctx context.Context, characterID int64) (domain.RiskReport, bool, error) {
	return db.scanOne(ctx, `
		SELECT report FROM reports
		WHERE character_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, characterID)
}

func (db *DB) ListByCharacter(ctx context.Context, characterID int64, limit int) ([]domain.RiskReport, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT report FROM reports
		WHERE character_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, characterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RiskReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var report domain.RiskReport
		if err := json.Unmarshal(payload, &report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func (db *DB) scanOne(ctx context.Context, query string, args ...any) (domain.RiskReport, bool, error) {
	var payload []byte
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RiskReport{}, false, nil
	}
	if err != nil {
		return domain.RiskReport{}, false, err
	}
	var report domain.RiskReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return domain.RiskReport{}, false, fmt.Errorf("decode report: %w", err)
	}
	return report, true, nil
}
