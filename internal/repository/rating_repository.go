package repository

import (
	"context"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// UpsertSnapshots stores rating snapshots keyed by team/season/week
func (r *PostgresRatingRepository) UpsertSnapshots(ctx context.Context, snaps []models.TeamRatingSnapshot) error {
	query := `
		INSERT INTO team_ratings (team, season, week, rating, pace, games_played, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team, season, week) DO UPDATE SET
			rating = EXCLUDED.rating,
			pace = EXCLUDED.pace,
			games_played = EXCLUDED.games_played,
			captured_at = EXCLUDED.captured_at
	`

	for _, s := range snaps {
		_, err := r.db.GetPool().Exec(ctx, query,
			s.Team, s.Season, s.Week, s.Rating, s.Pace, s.GamesPlayed, s.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert rating snapshot for %s: %w", s.Team, err)
		}
	}

	return nil
}

// GetSnapshots retrieves all rating snapshots for a season/week
func (r *PostgresRatingRepository) GetSnapshots(ctx context.Context, season, week int) ([]models.TeamRatingSnapshot, error) {
	query := `
		SELECT team, season, week, rating, pace, games_played, captured_at
		FROM team_ratings
		WHERE season = $1 AND week = $2
		ORDER BY team
	`

	rows, err := r.db.GetPool().Query(ctx, query, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []models.TeamRatingSnapshot
	for rows.Next() {
		var s models.TeamRatingSnapshot
		if err := rows.Scan(&s.Team, &s.Season, &s.Week, &s.Rating, &s.Pace, &s.GamesPlayed, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}

	return snaps, rows.Err()
}
