package models

import (
	"math"
	"time"
)

// Calibration is the historical lookup result for an edge: how often edges
// of this size have won, what they returned, and how much to trust them.
type Calibration struct {
	WinProbability float64    `json:"win_probability"`
	ExpectedValue  float64    `json:"expected_value"`
	Tier           Confidence `json:"tier"`
	LikelyError    bool       `json:"likely_error,omitempty"` // edge above all buckets
}

// CalibrationBucket maps a half-open interval [MinEdge, MaxEdge) over
// |effectiveEdge| to historical outcome frequencies. Buckets are curated
// from backtests and must be disjoint.
type CalibrationBucket struct {
	MinEdge        float64    `json:"min_edge"`
	MaxEdge        float64    `json:"max_edge"`
	WinProbability float64    `json:"win_probability"`
	ExpectedValue  float64    `json:"expected_value"`
	Tier           Confidence `json:"tier"`
}

// Contains reports whether |edge| falls inside the bucket (min inclusive,
// max exclusive).
func (b CalibrationBucket) Contains(absEdge float64) bool {
	return absEdge >= b.MinEdge && absEdge < b.MaxEdge
}

// EdgeResult is the engine's verdict on one game/book/market, recomputed
// from scratch on every pipeline run.
type EdgeResult struct {
	EventID       int64       `db:"event_id" json:"event_id"`
	Sportsbook    string      `db:"sportsbook" json:"sportsbook"`
	MarketType    MarketType  `db:"market_type" json:"market_type"`
	MarketLine    float64     `db:"market_line" json:"market_line"`
	ModelLine     float64     `db:"model_line" json:"model_line"`
	RawEdge       float64     `db:"raw_edge" json:"raw_edge"`             // market - model
	Uncertainty   float64     `db:"uncertainty" json:"uncertainty"`       // [0, cap]
	EffectiveEdge float64     `db:"effective_edge" json:"effective_edge"` // raw * (1 - uncertainty)
	Side          BetSide     `db:"side" json:"side"`
	Percentile    float64     `db:"percentile" json:"percentile"` // (0,1], smaller = stronger
	Calibration   Calibration `json:"calibration"`
	ConfigHash    string      `db:"config_hash" json:"config_hash"`
	ComputedAt    time.Time   `db:"computed_at" json:"computed_at"`
}

// AbsEffectiveEdge returns |effectiveEdge|.
func (e *EdgeResult) AbsEffectiveEdge() float64 {
	return math.Abs(e.EffectiveEdge)
}

// RejectionRule identifies which gate rule rejected a bet. The set is
// closed, so the values double as a bounded metrics label; the
// human-readable Reason carries the variable detail instead.
type RejectionRule string

const (
	RuleMissingMarketData RejectionRule = "missing_market_data"
	RuleEdgeFloor         RejectionRule = "edge_floor"
	RuleMissingWeather    RejectionRule = "missing_weather"
	RuleEarlySeasonQB     RejectionRule = "early_season_unknown_qb"
	RulePercentile        RejectionRule = "percentile"
	RuleUncertaintyCap    RejectionRule = "uncertainty_cap"
	RuleQBStatusRequired  RejectionRule = "qb_status_required"
)

// BetDecision is the pure output of the decision gate. Identical inputs
// always produce an identical decision. Rule is empty on approvals.
type BetDecision struct {
	ShouldBet  bool          `json:"should_bet"`
	Rule       RejectionRule `json:"rule,omitempty"`
	Reason     string        `json:"reason"`
	Confidence Confidence    `json:"confidence"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// ComponentBreakdown itemizes what moved the model line away from its base
// projection, for the explain payload on a materialized edge.
type ComponentBreakdown struct {
	BaseLine    float64            `json:"base_line"`
	Adjustments []AdjustmentFactor `json:"adjustments,omitempty"`
	FinalLine   float64            `json:"final_line"`
}

// EdgeRecord is the persisted, explainable form of an EdgeResult plus its
// decision, produced at materialization time.
type EdgeRecord struct {
	EdgeResult
	Qualifies bool               `db:"qualifies" json:"qualifies"`
	Reason    string             `db:"reason" json:"reason"`
	Warnings  []string           `db:"warnings" json:"warnings"`
	Breakdown ComponentBreakdown `json:"component_breakdown"`
}
