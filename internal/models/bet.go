package models

import (
	"time"

	"github.com/google/uuid"
)

// BetResult is the graded outcome of a bet.
type BetResult string

const (
	BetResultWin  BetResult = "win"
	BetResultLoss BetResult = "loss"
	BetResultPush BetResult = "push"
)

// BetSlip is the actionable summary handed to the bettor when the gate
// approves an edge.
type BetSlip struct {
	GameKey       string     `json:"game_key"`
	Side          BetSide    `json:"side"`
	Team          string     `json:"team,omitempty"` // empty for totals
	MarketType    MarketType `json:"market_type"`
	LineAtBet     float64    `json:"line_at_bet"`
	EffectiveEdge float64    `json:"effective_edge"`
	Uncertainty   float64    `json:"uncertainty"`
	Percentile    float64    `json:"percentile"`
	Confidence    Confidence `json:"confidence"`
	Warnings      []string   `json:"warnings,omitempty"`
}

// BetRecord is the persisted outcome of an approved decision. It is created
// at decision time and mutated exactly once, at grading time, when result,
// scores, and the closing line are filled in.
type BetRecord struct {
	ID            uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	EventID       int64      `db:"event_id" json:"event_id" validate:"required"`
	GameKey       string     `db:"game_key" json:"game_key" validate:"required"`
	Season        int        `db:"season" json:"season" validate:"required"`
	Week          int        `db:"week" json:"week" validate:"gte=0,lte=15"`
	Sportsbook    string     `db:"sportsbook" json:"sportsbook" validate:"required"`
	MarketType    MarketType `db:"market_type" json:"market_type" validate:"required,oneof=spread total"`
	Side          BetSide    `db:"side" json:"side" validate:"required,oneof=home away over under"`
	LineAtBet     float64    `db:"line_at_bet" json:"line_at_bet"`
	PriceAmerican int        `db:"price_american" json:"price_american"`
	EffectiveEdge float64    `db:"effective_edge" json:"effective_edge"`
	Uncertainty   float64    `db:"uncertainty" json:"uncertainty"`
	Percentile    float64    `db:"percentile" json:"percentile"`
	Confidence    Confidence `db:"confidence" json:"confidence"`
	Warnings      []string   `db:"warnings" json:"warnings"`
	ConfigHash    string     `db:"config_hash" json:"config_hash"`
	PlacedAt      time.Time  `db:"placed_at" json:"placed_at"`

	// Grading fields, nil until the game is final.
	Result      *BetResult `db:"result" json:"result"`
	HomeScore   *int       `db:"home_score" json:"home_score"`
	AwayScore   *int       `db:"away_score" json:"away_score"`
	ClosingLine *float64   `db:"closing_line" json:"closing_line"`
	ProfitLoss  *float64   `db:"profit_loss" json:"profit_loss"` // flat-stake units
	GradedAt    *time.Time `db:"graded_at" json:"graded_at"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsGraded reports whether the record has been settled against a final score.
func (b *BetRecord) IsGraded() bool {
	return b.Result != nil && b.GradedAt != nil
}

// HasClosingLine reports whether a closing line was captured for CLV.
func (b *BetRecord) HasClosingLine() bool {
	return b.ClosingLine != nil
}

// AlertCategory groups monitoring alerts by the metric family that fired.
type AlertCategory string

const (
	AlertCategoryCLV         AlertCategory = "clv"
	AlertCategoryWinRate     AlertCategory = "win_rate"
	AlertCategoryROI         AlertCategory = "roi"
	AlertCategoryPersistence AlertCategory = "edge_persistence"
)

// MonitoringAlert is raised when a performance metric crosses its threshold
// after the minimum sample gate.
type MonitoringAlert struct {
	Type      string        `json:"type"` // "warning" or "critical"
	Category  AlertCategory `json:"category"`
	Message   string        `json:"message"`
	Metric    string        `json:"metric"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	RaisedAt  time.Time     `json:"raised_at"`
}
