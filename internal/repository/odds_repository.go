package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// InsertTicks stores captured odds ticks. The natural key includes the
// capture time, so re-polling the same window is idempotent.
func (r *PostgresOddsRepository) InsertTicks(ctx context.Context, ticks []models.OddsTick) error {
	query := `
		INSERT INTO odds_ticks (event_id, sportsbook, market_type, line, price_american, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, sportsbook, market_type, captured_at) DO NOTHING
	`

	for _, t := range ticks {
		_, err := r.db.GetPool().Exec(ctx, query,
			t.EventID, t.Sportsbook, t.MarketType, t.Line, t.PriceAmerican, t.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert odds tick: %w", err)
		}
	}

	return nil
}

// GetTicks retrieves all ticks for one event/book/market ordered by capture time
func (r *PostgresOddsRepository) GetTicks(ctx context.Context, eventID int64, sportsbook string, market models.MarketType) ([]models.OddsTick, error) {
	query := `
		SELECT event_id, sportsbook, market_type, line, price_american, captured_at
		FROM odds_ticks
		WHERE event_id = $1 AND sportsbook = $2 AND market_type = $3
		ORDER BY captured_at
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventID, sportsbook, market)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds ticks: %w", err)
	}
	defer rows.Close()

	var ticks []models.OddsTick
	for rows.Next() {
		var t models.OddsTick
		if err := rows.Scan(&t.EventID, &t.Sportsbook, &t.MarketType, &t.Line, &t.PriceAmerican, &t.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan odds tick: %w", err)
		}
		ticks = append(ticks, t)
	}

	return ticks, rows.Err()
}

// GetMarketLines condenses each event/book/market's ticks to its opening
// and latest quote.
func (r *PostgresOddsRepository) GetMarketLines(ctx context.Context, eventIDs []int64) ([]*models.MarketLine, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT ON (event_id, sportsbook, market_type)
		       event_id, sportsbook, market_type,
		       first_value(line) OVER w AS open_line,
		       last_value(line) OVER w AS current_line,
		       first_value(price_american) OVER w AS open_price,
		       last_value(price_american) OVER w AS current_price,
		       first_value(captured_at) OVER w AS opened_at,
		       last_value(captured_at) OVER w AS captured_at
		FROM odds_ticks
		WHERE event_id = ANY($1)
		WINDOW w AS (
			PARTITION BY event_id, sportsbook, market_type
			ORDER BY captured_at
			ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING
		)
	`

	rows, err := r.db.GetPool().Query(ctx, query, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query market lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.MarketLine
	for rows.Next() {
		line := &models.MarketLine{}
		err := rows.Scan(
			&line.EventID, &line.Sportsbook, &line.MarketType,
			&line.OpenLine, &line.CurrentLine, &line.OpenPrice, &line.CurrentPrice,
			&line.OpenedAt, &line.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// GetClosingLine returns the last line captured before kickoff, or
// models.ErrNotFound when no pre-kickoff tick exists.
func (r *PostgresOddsRepository) GetClosingLine(ctx context.Context, eventID int64, sportsbook string, market models.MarketType, kickoff time.Time) (*float64, error) {
	query := `
		SELECT line
		FROM odds_ticks
		WHERE event_id = $1 AND sportsbook = $2 AND market_type = $3 AND captured_at < $4
		ORDER BY captured_at DESC
		LIMIT 1
	`

	var line float64
	err := r.db.GetPool().QueryRow(ctx, query, eventID, sportsbook, market, kickoff).Scan(&line)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get closing line: %w", err)
	}

	return &line, nil
}
