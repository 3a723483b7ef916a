package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresEdgeRepository implements EdgeRepository for PostgreSQL
type PostgresEdgeRepository struct {
	db *database.DB
}

// NewPostgresEdgeRepository creates a new edge repository
func NewPostgresEdgeRepository(db *database.DB) EdgeRepository {
	return &PostgresEdgeRepository{db: db}
}

// Upsert stores materialized edges keyed by event/book/market. Each run
// recomputes and replaces the slate's edges in full.
func (r *PostgresEdgeRepository) Upsert(ctx context.Context, edges []*models.EdgeRecord) error {
	query := `
		INSERT INTO edge_records (event_id, sportsbook, market_type, market_line, model_line,
		                          raw_edge, uncertainty, effective_edge, side, percentile,
		                          win_probability, expected_value, confidence_tier, likely_error,
		                          qualifies, reason, warnings, breakdown, config_hash, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (event_id, sportsbook, market_type) DO UPDATE SET
			market_line = EXCLUDED.market_line,
			model_line = EXCLUDED.model_line,
			raw_edge = EXCLUDED.raw_edge,
			uncertainty = EXCLUDED.uncertainty,
			effective_edge = EXCLUDED.effective_edge,
			side = EXCLUDED.side,
			percentile = EXCLUDED.percentile,
			win_probability = EXCLUDED.win_probability,
			expected_value = EXCLUDED.expected_value,
			confidence_tier = EXCLUDED.confidence_tier,
			likely_error = EXCLUDED.likely_error,
			qualifies = EXCLUDED.qualifies,
			reason = EXCLUDED.reason,
			warnings = EXCLUDED.warnings,
			breakdown = EXCLUDED.breakdown,
			config_hash = EXCLUDED.config_hash,
			computed_at = EXCLUDED.computed_at
	`

	for _, e := range edges {
		breakdown, err := json.Marshal(e.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal edge breakdown: %w", err)
		}

		_, err = r.db.GetPool().Exec(ctx, query,
			e.EventID, e.Sportsbook, e.MarketType, e.MarketLine, e.ModelLine,
			e.RawEdge, e.Uncertainty, e.EffectiveEdge, e.Side, e.Percentile,
			e.Calibration.WinProbability, e.Calibration.ExpectedValue, e.Calibration.Tier, e.Calibration.LikelyError,
			e.Qualifies, e.Reason, e.Warnings, breakdown, e.ConfigHash, e.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert edge for event %d: %w", e.EventID, err)
		}
	}

	return nil
}

// GetByWeek retrieves all materialized edges for a season/week
func (r *PostgresEdgeRepository) GetByWeek(ctx context.Context, season, week int) ([]*models.EdgeRecord, error) {
	query := `
		SELECT e.event_id, e.sportsbook, e.market_type, e.market_line, e.model_line,
		       e.raw_edge, e.uncertainty, e.effective_edge, e.side, e.percentile,
		       e.win_probability, e.expected_value, e.confidence_tier, e.likely_error,
		       e.qualifies, e.reason, e.warnings, e.breakdown, e.config_hash, e.computed_at
		FROM edge_records e
		JOIN games g ON g.id = e.event_id
		WHERE g.season = $1 AND g.week = $2
		ORDER BY e.percentile, e.event_id
	`

	rows, err := r.db.GetPool().Query(ctx, query, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*models.EdgeRecord
	for rows.Next() {
		e := &models.EdgeRecord{}
		var breakdown []byte
		err := rows.Scan(
			&e.EventID, &e.Sportsbook, &e.MarketType, &e.MarketLine, &e.ModelLine,
			&e.RawEdge, &e.Uncertainty, &e.EffectiveEdge, &e.Side, &e.Percentile,
			&e.Calibration.WinProbability, &e.Calibration.ExpectedValue, &e.Calibration.Tier, &e.Calibration.LikelyError,
			&e.Qualifies, &e.Reason, &e.Warnings, &breakdown, &e.ConfigHash, &e.ComputedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &e.Breakdown); err != nil {
				return nil, fmt.Errorf("failed to unmarshal edge breakdown: %w", err)
			}
		}
		edges = append(edges, e)
	}

	return edges, rows.Err()
}
