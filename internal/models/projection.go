package models

import (
	"time"
)

// Confidence represents a coarse confidence tier attached to factors,
// calibration buckets, and decisions.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceSkip   Confidence = "skip"
)

// FactorKind identifies the source of an adjustment factor.
type FactorKind string

const (
	FactorWeather      FactorKind = "weather"
	FactorInjury       FactorKind = "injury"
	FactorLineMovement FactorKind = "line_movement"
	FactorSituational  FactorKind = "situational"
	FactorPlayerFactor FactorKind = "player_factor"
)

// AdjustmentFactor is one signed point adjustment produced by a provider.
// Factors are additive and independently optional: a provider that has
// nothing to say simply produces no factor, never an error.
type AdjustmentFactor struct {
	Kind       FactorKind `json:"kind"`
	Points     float64    `json:"points"`
	Confidence Confidence `json:"confidence"`
	Detail     string     `json:"detail,omitempty"`
}

// ModelProjection holds the model's fair lines for one game. Either line
// may be absent when the model lacks the inputs to produce it.
type ModelProjection struct {
	EventID      int64     `db:"event_id" json:"event_id"`
	Season       int       `db:"season" json:"season"`
	Week         int       `db:"week" json:"week"`
	SpreadHome   *float64  `db:"spread_home" json:"spread_home"` // negative = home favored
	TotalPoints  *float64  `db:"total_points" json:"total_points"`
	ConfigHash   string    `db:"config_hash" json:"config_hash"`
	ModelVersion string    `db:"model_version" json:"model_version"`
	GeneratedAt  time.Time `db:"generated_at" json:"generated_at"`
}

// LineFor returns the model line for a market type, and whether it exists.
func (p *ModelProjection) LineFor(market MarketType) (float64, bool) {
	switch market {
	case MarketTypeSpread:
		if p.SpreadHome == nil {
			return 0, false
		}
		return *p.SpreadHome, true
	case MarketTypeTotal:
		if p.TotalPoints == nil {
			return 0, false
		}
		return *p.TotalPoints, true
	}
	return 0, false
}

// TeamRatingSnapshot is a point-in-time power rating for one team.
type TeamRatingSnapshot struct {
	Team        string    `db:"team" json:"team" validate:"required"`
	Season      int       `db:"season" json:"season" validate:"required"`
	Week        int       `db:"week" json:"week" validate:"gte=0,lte=15"`
	Rating      float64   `db:"rating" json:"rating"`
	Pace        float64   `db:"pace" json:"pace"` // expected points contributed to a game total
	GamesPlayed int       `db:"games_played" json:"games_played" validate:"gte=0"`
	CapturedAt  time.Time `db:"captured_at" json:"captured_at"`
}
