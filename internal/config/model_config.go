// Package config provides configuration management for the CFB market edge engine.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// ModelVersion selects one frozen coefficient and calibration table.
// Retired versions are simply absent from the known set; there are no
// disabled-but-present variants.
type ModelVersion string

const (
	// ModelVersionV2 is the current production model, promoted after the
	// 2023 full-season backtest.
	ModelVersionV2 ModelVersion = "cfb-v2"

	// DefaultModelVersion is used when no version is configured.
	DefaultModelVersion = ModelVersionV2
)

// RegimeName identifies one of the two week-keyed rule regimes.
type RegimeName string

const (
	RegimeEarlySeason RegimeName = "early_season" // weeks 0-4
	RegimeLateSeason  RegimeName = "late_season"  // weeks 5+
)

// Regime holds the decision-gate thresholds for one part of the season.
type Regime struct {
	Name            RegimeName `json:"name"`
	MaxPercentile   float64    `json:"max_percentile"`
	UncertaintyCap  float64    `json:"uncertainty_cap"`
	RequireQBStatus bool       `json:"require_qb_status"`
}

// UncertaintyTable holds the additive uncertainty components.
type UncertaintyTable struct {
	// Week components by tier: weeks 0-1, weeks 2-4, weeks 5+.
	WeekVeryEarly float64 `json:"week_very_early"`
	WeekEarly     float64 `json:"week_early"`
	WeekLate      float64 `json:"week_late"`

	QBQuestionable float64 `json:"qb_questionable"`
	QBOut          float64 `json:"qb_out"`
	QBUnknown      float64 `json:"qb_unknown"`

	RosterTurnoverMax float64 `json:"roster_turnover_max"` // scaled by (1 - returning production)
	NewCoach          float64 `json:"new_coach"`

	// Cap clamps the summed uncertainty. Must stay below 1 so discounting
	// can never flip the sign of an edge.
	Cap float64 `json:"cap"`
}

// MovementTable holds the sharp line-movement detector constants.
type MovementTable struct {
	SignificantPoints    float64       `json:"significant_points"`
	HighConfidencePoints float64       `json:"high_confidence_points"`
	SteamWindow          time.Duration `json:"steam_window"`
	Damping              float64       `json:"damping"`
}

// ModelConfig is one immutable, content-addressed coefficient table. A
// config's identity is its version plus the hash of its contents, so a
// materialized edge can cite exactly which table produced it.
type ModelConfig struct {
	Version    ModelVersion `json:"version"`
	PromotedAt time.Time    `json:"promoted_at"`

	SpreadWeights map[models.FactorKind]float64 `json:"spread_weights"`
	TotalWeights  map[models.FactorKind]float64 `json:"total_weights"`

	Uncertainty UncertaintyTable `json:"uncertainty"`
	Movement    MovementTable    `json:"movement"`

	// Raw-edge magnitude caps applied before calibration lookup.
	EdgeCaps map[models.MarketType]float64 `json:"edge_caps"`

	// Minimum |effectiveEdge| for the decision gate, per market.
	EdgeFloors map[models.MarketType]float64 `json:"edge_floors"`

	// Rule 4: early-season rejects need both a big raw edge and high
	// uncertainty along with an unknown QB.
	HighEdgeThreshold        float64 `json:"high_edge_threshold"`
	HighUncertaintyThreshold float64 `json:"high_uncertainty_threshold"`

	Regimes map[RegimeName]Regime `json:"regimes"`

	SpreadBuckets []models.CalibrationBucket `json:"spread_buckets"`
	TotalBuckets  []models.CalibrationBucket `json:"total_buckets"`
}

// modelConfigV2 is the frozen cfb-v2 table. Values come from the 2022-2023
// two-season backtest; do not edit in place, promote a new version instead.
var modelConfigV2 = ModelConfig{
	Version:    ModelVersionV2,
	PromotedAt: time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC),

	SpreadWeights: map[models.FactorKind]float64{
		models.FactorWeather:      0.30,
		models.FactorInjury:       1.00,
		models.FactorLineMovement: 1.00,
		models.FactorSituational:  0.80,
		models.FactorPlayerFactor: 0.60,
	},
	// Totals ignore side-oriented factors except via a damped cross-term.
	TotalWeights: map[models.FactorKind]float64{
		models.FactorWeather:      1.00,
		models.FactorInjury:       0.25,
		models.FactorLineMovement: 1.00,
		models.FactorSituational:  0.20,
		models.FactorPlayerFactor: 0.30,
	},

	Uncertainty: UncertaintyTable{
		WeekVeryEarly:     0.25,
		WeekEarly:         0.15,
		WeekLate:          0.05,
		QBQuestionable:    0.10,
		QBOut:             0.20,
		QBUnknown:         0.20,
		RosterTurnoverMax: 0.15,
		NewCoach:          0.05,
		Cap:               0.75,
	},

	Movement: MovementTable{
		SignificantPoints:    2.0,
		HighConfidencePoints: 3.5,
		SteamWindow:          4 * time.Hour,
		Damping:              0.30,
	},

	EdgeCaps: map[models.MarketType]float64{
		models.MarketTypeSpread: 6.0,
		models.MarketTypeTotal:  8.0,
	},
	EdgeFloors: map[models.MarketType]float64{
		models.MarketTypeSpread: 3.0,
		models.MarketTypeTotal:  2.5,
	},

	HighEdgeThreshold:        4.0,
	HighUncertaintyThreshold: 0.40,

	Regimes: map[RegimeName]Regime{
		RegimeEarlySeason: {
			Name:            RegimeEarlySeason,
			MaxPercentile:   0.05,
			UncertaintyCap:  0.45,
			RequireQBStatus: true,
		},
		RegimeLateSeason: {
			Name:            RegimeLateSeason,
			MaxPercentile:   0.05,
			UncertaintyCap:  0.60,
			RequireQBStatus: false,
		},
	},

	SpreadBuckets: []models.CalibrationBucket{
		{MinEdge: 3.0, MaxEdge: 4.0, WinProbability: 0.530, ExpectedValue: 0.012, Tier: models.ConfidenceLow},
		{MinEdge: 4.0, MaxEdge: 5.0, WinProbability: 0.551, ExpectedValue: 0.052, Tier: models.ConfidenceMedium},
		{MinEdge: 5.0, MaxEdge: 6.0, WinProbability: 0.568, ExpectedValue: 0.084, Tier: models.ConfidenceHigh},
	},
	TotalBuckets: []models.CalibrationBucket{
		{MinEdge: 2.5, MaxEdge: 3.5, WinProbability: 0.524, ExpectedValue: 0.001, Tier: models.ConfidenceLow},
		{MinEdge: 3.5, MaxEdge: 5.0, WinProbability: 0.547, ExpectedValue: 0.044, Tier: models.ConfidenceMedium},
		{MinEdge: 5.0, MaxEdge: 8.0, WinProbability: 0.561, ExpectedValue: 0.071, Tier: models.ConfidenceHigh},
	},
}

// knownConfigs indexes every promoted model config by version.
var knownConfigs = map[ModelVersion]*ModelConfig{
	ModelVersionV2: &modelConfigV2,
}

// ModelConfigFor returns the frozen config for a version.
func ModelConfigFor(version ModelVersion) (*ModelConfig, error) {
	cfg, ok := knownConfigs[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownModelVersion, version)
	}
	return cfg, nil
}

// WeightsFor returns the factor weight table for a market type.
func (m *ModelConfig) WeightsFor(market models.MarketType) map[models.FactorKind]float64 {
	if market == models.MarketTypeTotal {
		return m.TotalWeights
	}
	return m.SpreadWeights
}

// BucketsFor returns the calibration buckets for a market type.
func (m *ModelConfig) BucketsFor(market models.MarketType) []models.CalibrationBucket {
	if market == models.MarketTypeTotal {
		return m.TotalBuckets
	}
	return m.SpreadBuckets
}

// EdgeCapFor returns the raw-edge magnitude cap for a market type.
func (m *ModelConfig) EdgeCapFor(market models.MarketType) float64 {
	return m.EdgeCaps[market]
}

// EdgeFloorFor returns the minimum qualifying |effectiveEdge| for a market type.
func (m *ModelConfig) EdgeFloorFor(market models.MarketType) float64 {
	return m.EdgeFloors[market]
}

// RegimeForWeek returns the rule regime for a week number.
func (m *ModelConfig) RegimeForWeek(week int) Regime {
	if week <= models.EarlySeasonMaxWeek {
		return m.Regimes[RegimeEarlySeason]
	}
	return m.Regimes[RegimeLateSeason]
}

// Hash returns the sha256 of the canonical JSON encoding of the config.
// Edges and bet records cite this hash so historical output is traceable to
// the exact coefficients that produced it.
func (m *ModelConfig) Hash() string {
	data, err := json.Marshal(m)
	if err != nil {
		// A ModelConfig is plain data; marshalling cannot fail at runtime.
		panic(fmt.Sprintf("model config hash: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
