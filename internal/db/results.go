package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/fitscore/internal/types"
)

// DefaultHistoryLimit bounds the calibration history read back from stored outcomes
const DefaultHistoryLimit = 500

// SaveMatchResult stores a scoring result
func (db *DB) SaveMatchResult(ctx context.Context, result *types.MatchResult) error {
	content, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO match_results
		   (id, candidate_id, opportunity_id, mode, overall_score, confidence, calibrated_score, content, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		result.ID, result.CandidateID, result.OpportunityID, string(result.Mode),
		result.OverallScore, result.Confidence, result.CalibratedScore, content, result.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save match result %s: %w", result.ID, err)
	}
	return nil
}

// GetMatchResult retrieves a stored result. It returns nil when no result exists.
func (db *DB) GetMatchResult(ctx context.Context, id uuid.UUID) (*types.MatchResult, error) {
	var content []byte
	err := db.pool.QueryRow(ctx, `SELECT content FROM match_results WHERE id = $1`, id).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match result %s: %w", id, err)
	}

	var result types.MatchResult
	if err := json.Unmarshal(content, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match result %s: %w", id, err)
	}
	return &result, nil
}

// RecordOutcome stores the observed success (0-100) of a past result. It reports false when
// the result does not exist.
func (db *DB) RecordOutcome(ctx context.Context, id uuid.UUID, actualSuccess float64) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`UPDATE match_results SET actual_success = $1, outcome_recorded_at = NOW() WHERE id = $2`,
		actualSuccess, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record outcome for %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// CalibrationHistory returns the most recent results with a recorded outcome
func (db *DB) CalibrationHistory(ctx context.Context, limit int) ([]types.HistoricalRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT overall_score, actual_success FROM match_results
		 WHERE actual_success IS NOT NULL
		 ORDER BY outcome_recorded_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query calibration history: %w", err)
	}

	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.HistoricalRecord, error) {
		var (
			overall int
			record  types.HistoricalRecord
		)
		if err := row.Scan(&overall, &record.ActualSuccess); err != nil {
			return record, err
		}
		record.OverallScore = float64(overall)
		return record, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan calibration history: %w", err)
	}
	return history, nil
}

// SaveLeadScore stores a lead qualification result
func (db *DB) SaveLeadScore(ctx context.Context, score *types.LeadScore) error {
	content, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("failed to marshal lead score: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO lead_scores (id, lead_id, overall_fit, content, computed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		score.ID, score.LeadID, score.OverallFit, content, score.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lead score %s: %w", score.ID, err)
	}
	return nil
}
