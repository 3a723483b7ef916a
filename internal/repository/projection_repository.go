package repository

import (
	"context"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresProjectionRepository implements ProjectionRepository for PostgreSQL
type PostgresProjectionRepository struct {
	db *database.DB
}

// NewPostgresProjectionRepository creates a new projection repository
func NewPostgresProjectionRepository(db *database.DB) ProjectionRepository {
	return &PostgresProjectionRepository{db: db}
}

// Upsert stores projections keyed by event id; each pipeline run replaces
// the previous run's projection wholesale.
func (r *PostgresProjectionRepository) Upsert(ctx context.Context, projections []models.ModelProjection) error {
	query := `
		INSERT INTO model_projections (event_id, season, week, spread_home, total_points,
		                               config_hash, model_version, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO UPDATE SET
			spread_home = EXCLUDED.spread_home,
			total_points = EXCLUDED.total_points,
			config_hash = EXCLUDED.config_hash,
			model_version = EXCLUDED.model_version,
			generated_at = EXCLUDED.generated_at
	`

	for _, p := range projections {
		_, err := r.db.GetPool().Exec(ctx, query,
			p.EventID, p.Season, p.Week, p.SpreadHome, p.TotalPoints,
			p.ConfigHash, p.ModelVersion, p.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert projection for event %d: %w", p.EventID, err)
		}
	}

	return nil
}

// GetByWeek retrieves all projections for a season/week
func (r *PostgresProjectionRepository) GetByWeek(ctx context.Context, season, week int) ([]*models.ModelProjection, error) {
	query := `
		SELECT event_id, season, week, spread_home, total_points, config_hash, model_version, generated_at
		FROM model_projections
		WHERE season = $1 AND week = $2
		ORDER BY event_id
	`

	rows, err := r.db.GetPool().Query(ctx, query, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to query projections: %w", err)
	}
	defer rows.Close()

	var projections []*models.ModelProjection
	for rows.Next() {
		p := &models.ModelProjection{}
		err := rows.Scan(
			&p.EventID, &p.Season, &p.Week, &p.SpreadHome, &p.TotalPoints,
			&p.ConfigHash, &p.ModelVersion, &p.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan projection: %w", err)
		}
		projections = append(projections, p)
	}

	return projections, rows.Err()
}
