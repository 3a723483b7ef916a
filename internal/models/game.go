package models

import (
	"fmt"
	"time"
)

// EarlySeasonMaxWeek is the last week of the early-season regime.
// Weeks 0-4 are "early", weeks 5+ are "late".
const EarlySeasonMaxWeek = 4

// Game represents a single scheduled or completed game.
// Identity and kickoff are immutable once created; scores are set at grading.
type Game struct {
	ID             int64     `db:"id" json:"id" validate:"required"`
	Season         int       `db:"season" json:"season" validate:"required,gte=2000"`
	Week           int       `db:"week" json:"week" validate:"gte=0,lte=15"`
	HomeTeam       string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam       string    `db:"away_team" json:"away_team" validate:"required"`
	HomeConference string    `db:"home_conference" json:"home_conference"`
	AwayConference string    `db:"away_conference" json:"away_conference"`
	NeutralSite    bool      `db:"neutral_site" json:"neutral_site"`
	Kickoff        time.Time `db:"kickoff" json:"kickoff" validate:"required"`
	HomeScore      *int      `db:"home_score" json:"home_score"`
	AwayScore      *int      `db:"away_score" json:"away_score"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Key returns the natural game key used for bet records and upserts.
func (g *Game) Key() string {
	return fmt.Sprintf("%d-%d-%s-%s", g.Season, g.Week, g.AwayTeam, g.HomeTeam)
}

// IsCompleted checks whether both final scores are present.
func (g *Game) IsCompleted() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// IsEarlySeason reports whether the game falls in the early-season regime.
func (g *Game) IsEarlySeason() bool {
	return g.Week <= EarlySeasonMaxWeek
}

// Margin returns home score minus away score for a completed game.
func (g *Game) Margin() float64 {
	if !g.IsCompleted() {
		return 0
	}
	return float64(*g.HomeScore - *g.AwayScore)
}

// TotalPoints returns the combined final score for a completed game.
func (g *Game) TotalPoints() float64 {
	if !g.IsCompleted() {
		return 0
	}
	return float64(*g.HomeScore + *g.AwayScore)
}
