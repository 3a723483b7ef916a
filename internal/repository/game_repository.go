package repository

import (
	"context"
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

const gameColumns = `id, season, week, home_team, away_team, home_conference, away_conference,
       neutral_site, kickoff, home_score, away_score, created_at, updated_at`

// Upsert inserts or updates games keyed by their external event id.
func (r *PostgresGameRepository) Upsert(ctx context.Context, games []models.Game) error {
	query := `
		INSERT INTO games (id, season, week, home_team, away_team, home_conference, away_conference,
		                   neutral_site, kickoff, home_score, away_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			kickoff = EXCLUDED.kickoff,
			updated_at = NOW()
	`

	for _, g := range games {
		_, err := r.db.GetPool().Exec(ctx, query,
			g.ID, g.Season, g.Week, g.HomeTeam, g.AwayTeam, g.HomeConference, g.AwayConference,
			g.NeutralSite, g.Kickoff, g.HomeScore, g.AwayScore,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert game %d: %w", g.ID, err)
		}
	}

	return nil
}

// GetByWeek retrieves all games for a season/week
func (r *PostgresGameRepository) GetByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE season = $1 AND week = $2 ORDER BY kickoff, id`, gameColumns)
	return r.queryGames(ctx, query, season, week)
}

// GetCompletedByWeek retrieves games with final scores for a season/week
func (r *PostgresGameRepository) GetCompletedByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM games
		WHERE season = $1 AND week = $2 AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY kickoff, id`, gameColumns)
	return r.queryGames(ctx, query, season, week)
}

// GetSeason retrieves every game in a season ordered by kickoff
func (r *PostgresGameRepository) GetSeason(ctx context.Context, season int) ([]*models.Game, error) {
	query := fmt.Sprintf(`SELECT %s FROM games WHERE season = $1 ORDER BY kickoff, id`, gameColumns)
	return r.queryGames(ctx, query, season)
}

func (r *PostgresGameRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		err := rows.Scan(
			&g.ID, &g.Season, &g.Week, &g.HomeTeam, &g.AwayTeam, &g.HomeConference, &g.AwayConference,
			&g.NeutralSite, &g.Kickoff, &g.HomeScore, &g.AwayScore, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	return games, rows.Err()
}
