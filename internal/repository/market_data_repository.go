package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresMarketDataRepository implements MarketDataRepository for PostgreSQL
type PostgresMarketDataRepository struct {
	db *database.DB
}

// NewPostgresMarketDataRepository creates a new market data repository
func NewPostgresMarketDataRepository(db *database.DB) MarketDataRepository {
	return &PostgresMarketDataRepository{db: db}
}

// UpsertWeather stores weather records keyed by matchup
func (r *PostgresMarketDataRepository) UpsertWeather(ctx context.Context, records []models.WeatherRecord) error {
	query := `
		INSERT INTO weather_records (home_team, away_team, temperature, wind_speed, is_indoor, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (home_team, away_team) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			wind_speed = EXCLUDED.wind_speed,
			is_indoor = EXCLUDED.is_indoor,
			captured_at = EXCLUDED.captured_at
	`

	for _, w := range records {
		_, err := r.db.GetPool().Exec(ctx, query,
			w.HomeTeam, w.AwayTeam, w.Temperature, w.WindSpeed, w.IsIndoor, w.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert weather record: %w", err)
		}
	}

	return nil
}

// GetWeather retrieves the weather record for a matchup
func (r *PostgresMarketDataRepository) GetWeather(ctx context.Context, homeTeam, awayTeam string) (*models.WeatherRecord, error) {
	query := `
		SELECT home_team, away_team, temperature, wind_speed, is_indoor, captured_at
		FROM weather_records
		WHERE home_team = $1 AND away_team = $2
	`

	w := &models.WeatherRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, homeTeam, awayTeam).Scan(
		&w.HomeTeam, &w.AwayTeam, &w.Temperature, &w.WindSpeed, &w.IsIndoor, &w.CapturedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weather record: %w", err)
	}

	return w, nil
}

// UpsertInjuries stores injury records keyed by team/player
func (r *PostgresMarketDataRepository) UpsertInjuries(ctx context.Context, records []models.InjuryRecord) error {
	query := `
		INSERT INTO injury_records (team, player, position, status, captured_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team, player) DO UPDATE SET
			position = EXCLUDED.position,
			status = EXCLUDED.status,
			captured_at = EXCLUDED.captured_at
	`

	for _, rec := range records {
		_, err := r.db.GetPool().Exec(ctx, query,
			rec.Team, rec.Player, rec.Position, rec.Status, rec.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert injury record: %w", err)
		}
	}

	return nil
}

// GetInjuries retrieves current injury records for a team
func (r *PostgresMarketDataRepository) GetInjuries(ctx context.Context, team string) ([]models.InjuryRecord, error) {
	query := `
		SELECT team, player, position, status, captured_at
		FROM injury_records
		WHERE team = $1
		ORDER BY player
	`

	rows, err := r.db.GetPool().Query(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("failed to query injury records: %w", err)
	}
	defer rows.Close()

	var records []models.InjuryRecord
	for rows.Next() {
		var rec models.InjuryRecord
		if err := rows.Scan(&rec.Team, &rec.Player, &rec.Position, &rec.Status, &rec.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan injury record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// UpsertQBStatus stores a pre-kickoff QB status keyed by team/season/week.
// Later captures replace earlier ones; post-kickoff records are the
// caller's responsibility to exclude.
func (r *PostgresMarketDataRepository) UpsertQBStatus(ctx context.Context, status models.QBStatus) error {
	query := `
		INSERT INTO qb_statuses (team, season, week, status, as_of)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team, season, week) DO UPDATE SET
			status = EXCLUDED.status,
			as_of = EXCLUDED.as_of
		WHERE qb_statuses.as_of < EXCLUDED.as_of
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		status.Team, status.Season, status.Week, status.Status, status.AsOf,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert QB status: %w", err)
	}

	return nil
}

// GetQBStatus retrieves a team's QB status for a season/week
func (r *PostgresMarketDataRepository) GetQBStatus(ctx context.Context, team string, season, week int) (*models.QBStatus, error) {
	query := `
		SELECT team, season, week, status, as_of
		FROM qb_statuses
		WHERE team = $1 AND season = $2 AND week = $3
	`

	status := &models.QBStatus{}
	err := r.db.GetPool().QueryRow(ctx, query, team, season, week).Scan(
		&status.Team, &status.Season, &status.Week, &status.Status, &status.AsOf,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get QB status: %w", err)
	}

	return status, nil
}

// GetRosterContinuity retrieves a team's roster continuity for a season
func (r *PostgresMarketDataRepository) GetRosterContinuity(ctx context.Context, team string, season int) (*models.RosterContinuity, error) {
	query := `
		SELECT team, season, returning_production, transfers_in, transfers_out, new_head_coach
		FROM roster_continuity
		WHERE team = $1 AND season = $2
	`

	rc := &models.RosterContinuity{}
	err := r.db.GetPool().QueryRow(ctx, query, team, season).Scan(
		&rc.Team, &rc.Season, &rc.ReturningProduction, &rc.TransfersIn, &rc.TransfersOut, &rc.NewHeadCoach,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster continuity: %w", err)
	}

	return rc, nil
}
