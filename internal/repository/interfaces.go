// Package repository defines the persistence interfaces consumed by the
// engine and their PostgreSQL implementations. All writes are idempotent
// upserts keyed by natural keys, so re-running a pipeline for an
// overlapping window converges rather than duplicating rows.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// GameRepository provides access to the game schedule and results.
type GameRepository interface {
	Upsert(ctx context.Context, games []models.Game) error
	GetByWeek(ctx context.Context, season, week int) ([]*models.Game, error)
	GetCompletedByWeek(ctx context.Context, season, week int) ([]*models.Game, error)
	GetSeason(ctx context.Context, season int) ([]*models.Game, error)
}

// OddsRepository stores captured odds ticks and serves condensed lines.
type OddsRepository interface {
	InsertTicks(ctx context.Context, ticks []models.OddsTick) error
	GetTicks(ctx context.Context, eventID int64, sportsbook string, market models.MarketType) ([]models.OddsTick, error)
	GetMarketLines(ctx context.Context, eventIDs []int64) ([]*models.MarketLine, error)
	GetClosingLine(ctx context.Context, eventID int64, sportsbook string, market models.MarketType, kickoff time.Time) (*float64, error)
}

// RatingRepository persists team rating snapshots.
type RatingRepository interface {
	UpsertSnapshots(ctx context.Context, snaps []models.TeamRatingSnapshot) error
	GetSnapshots(ctx context.Context, season, week int) ([]models.TeamRatingSnapshot, error)
}

// MarketDataRepository stores the heterogeneous adjustment inputs.
type MarketDataRepository interface {
	UpsertWeather(ctx context.Context, records []models.WeatherRecord) error
	GetWeather(ctx context.Context, homeTeam, awayTeam string) (*models.WeatherRecord, error)
	UpsertInjuries(ctx context.Context, records []models.InjuryRecord) error
	GetInjuries(ctx context.Context, team string) ([]models.InjuryRecord, error)
	UpsertQBStatus(ctx context.Context, status models.QBStatus) error
	GetQBStatus(ctx context.Context, team string, season, week int) (*models.QBStatus, error)
	GetRosterContinuity(ctx context.Context, team string, season int) (*models.RosterContinuity, error)
}

// ProjectionRepository persists model projections per game.
type ProjectionRepository interface {
	Upsert(ctx context.Context, projections []models.ModelProjection) error
	GetByWeek(ctx context.Context, season, week int) ([]*models.ModelProjection, error)
}

// EdgeRepository persists materialized edges, keyed by event/book/market.
type EdgeRepository interface {
	Upsert(ctx context.Context, edges []*models.EdgeRecord) error
	GetByWeek(ctx context.Context, season, week int) ([]*models.EdgeRecord, error)
}

// BetRepository stores bet records from creation through grading.
type BetRepository interface {
	Create(ctx context.Context, bet *models.BetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error)
	GetPending(ctx context.Context) ([]*models.BetRecord, error)
	GetGraded(ctx context.Context, season int) ([]*models.BetRecord, error)
	Update(ctx context.Context, bet *models.BetRecord) error
}

// SlateLock is a held per-slate lock. Advisory locks are session-scoped,
// so Release must run on the same session that acquired the lock; the
// handle pins that session until released.
type SlateLock interface {
	Release(ctx context.Context) error
}

// LockRepository provides the per-slate advisory lock that keeps two
// pipeline runs from materializing the same slate concurrently.
// AcquireSlateLock returns models.ErrSlateLocked when another run already
// holds the slate.
type LockRepository interface {
	AcquireSlateLock(ctx context.Context, season, week int) (SlateLock, error)
}
