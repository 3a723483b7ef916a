package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wheels195/cfb-market-edge-sub000/internal/database"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

const betColumns = `id, event_id, game_key, season, week, sportsbook, market_type, side,
       line_at_bet, price_american, effective_edge, uncertainty, percentile, confidence,
       warnings, config_hash, placed_at, result, home_score, away_score, closing_line,
       profit_loss, graded_at, created_at, updated_at`

// Create inserts a new bet record
func (r *PostgresBetRepository) Create(ctx context.Context, bet *models.BetRecord) error {
	query := `
		INSERT INTO bet_records (id, event_id, game_key, season, week, sportsbook, market_type, side,
		                         line_at_bet, price_american, effective_edge, uncertainty, percentile,
		                         confidence, warnings, config_hash, placed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.EventID, bet.GameKey, bet.Season, bet.Week, bet.Sportsbook, bet.MarketType, bet.Side,
		bet.LineAtBet, bet.PriceAmerican, bet.EffectiveEdge, bet.Uncertainty, bet.Percentile,
		bet.Confidence, bet.Warnings, bet.ConfigHash, bet.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet record: %w", err)
	}

	return nil
}

// GetByID retrieves a bet record by ID
func (r *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM bet_records WHERE id = $1`, betColumns)

	bet := &models.BetRecord{}
	err := r.scanBet(r.db.GetPool().QueryRow(ctx, query, id), bet)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet record: %w", err)
	}

	return bet, nil
}

// GetPending retrieves all bets awaiting grading
func (r *PostgresBetRepository) GetPending(ctx context.Context) ([]*models.BetRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM bet_records WHERE result IS NULL ORDER BY placed_at`, betColumns)
	return r.queryBets(ctx, query)
}

// GetGraded retrieves all graded bets for a season
func (r *PostgresBetRepository) GetGraded(ctx context.Context, season int) ([]*models.BetRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bet_records
		WHERE season = $1 AND result IS NOT NULL
		ORDER BY placed_at`, betColumns)
	return r.queryBets(ctx, query, season)
}

// Update persists grading fields onto an existing bet record
func (r *PostgresBetRepository) Update(ctx context.Context, bet *models.BetRecord) error {
	query := `
		UPDATE bet_records
		SET result = $2, home_score = $3, away_score = $4, closing_line = $5,
		    profit_loss = $6, graded_at = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Result, bet.HomeScore, bet.AwayScore, bet.ClosingLine,
		bet.ProfitLoss, bet.GradedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update bet record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresBetRepository) scanBet(row rowScanner, bet *models.BetRecord) error {
	return row.Scan(
		&bet.ID, &bet.EventID, &bet.GameKey, &bet.Season, &bet.Week, &bet.Sportsbook, &bet.MarketType, &bet.Side,
		&bet.LineAtBet, &bet.PriceAmerican, &bet.EffectiveEdge, &bet.Uncertainty, &bet.Percentile, &bet.Confidence,
		&bet.Warnings, &bet.ConfigHash, &bet.PlacedAt, &bet.Result, &bet.HomeScore, &bet.AwayScore, &bet.ClosingLine,
		&bet.ProfitLoss, &bet.GradedAt, &bet.CreatedAt, &bet.UpdatedAt,
	)
}

func (r *PostgresBetRepository) queryBets(ctx context.Context, query string, args ...interface{}) ([]*models.BetRecord, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet records: %w", err)
	}
	defer rows.Close()

	var bets []*models.BetRecord
	for rows.Next() {
		bet := &models.BetRecord{}
		if err := r.scanBet(rows, bet); err != nil {
			return nil, fmt.Errorf("failed to scan bet record: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
