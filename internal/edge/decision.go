package edge

import (
	"fmt"
	"math"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// DecisionInput is everything the gate looks at. The gate is a pure
// function of this struct: identical inputs always yield an identical
// decision, which backtest reproducibility depends on.
type DecisionInput struct {
	Edge           models.EdgeResult
	HomeQB         models.QBStatusKind
	AwayQB         models.QBStatusKind
	HasMarketData  bool
	HasWeatherData bool
	Week           int
}

// DecideBet runs the ordered, short-circuiting rule sequence over one edge.
// Rules are evaluated strictly in order; the first failing rule rejects
// with its reason and no later rule runs.
func DecideBet(in DecisionInput, cfg *config.ModelConfig) models.BetDecision {
	regime := cfg.RegimeForWeek(in.Week)

	// Rule 1: no market data means nothing to bet into.
	if !in.HasMarketData {
		return reject(models.RuleMissingMarketData, "never bet: missing critical market data")
	}

	// Rule 2: market-specific effective-edge floor.
	absEdge := in.Edge.AbsEffectiveEdge()
	floor := cfg.EdgeFloorFor(in.Edge.MarketType)
	if absEdge < floor {
		return reject(models.RuleEdgeFloor, fmt.Sprintf("effective edge %.2f below %s floor %.2f",
			absEdge, in.Edge.MarketType, floor))
	}

	// Rule 3: totals are defined to require weather context, no matter how
	// large the edge looks without it.
	if in.Edge.MarketType == models.MarketTypeTotal && !in.HasWeatherData {
		return reject(models.RuleMissingWeather, "total market requires weather data")
	}

	// Rule 4: early season, a big raw edge under high uncertainty with an
	// unknown QB is a data problem, not a signal.
	if in.Week <= models.EarlySeasonMaxWeek &&
		isHighUncertainty(in.Edge, cfg) &&
		(in.HomeQB == models.QBUnknown || in.AwayQB == models.QBUnknown) {
		return reject(models.RuleEarlySeasonQB, "early-season high-uncertainty edge with unknown QB status")
	}

	// Rule 5: only the top slice of the slate qualifies.
	if in.Edge.Percentile > regime.MaxPercentile {
		return reject(models.RulePercentile, fmt.Sprintf("percentile %.2f outside top %.0f%%",
			in.Edge.Percentile, regime.MaxPercentile*100))
	}

	// Rule 6: regime uncertainty cap, stricter early in the season.
	if in.Edge.Uncertainty > regime.UncertaintyCap {
		return reject(models.RuleUncertaintyCap, fmt.Sprintf("uncertainty %.2f above %s cap %.2f",
			in.Edge.Uncertainty, regime.Name, regime.UncertaintyCap))
	}

	// Rule 7: some regimes refuse to bet without a known QB.
	if regime.RequireQBStatus &&
		(in.HomeQB == models.QBUnknown || in.AwayQB == models.QBUnknown) {
		return reject(models.RuleQBStatusRequired, fmt.Sprintf("%s regime requires known QB status", regime.Name))
	}

	// Rule 8: approve, with non-blocking warnings.
	warnings := collectWarnings(in, regime)

	return models.BetDecision{
		ShouldBet:  true,
		Reason:     "all checks passed",
		Confidence: deriveConfidence(len(warnings), in.Edge.Uncertainty),
		Warnings:   warnings,
	}
}

func reject(rule models.RejectionRule, reason string) models.BetDecision {
	return models.BetDecision{
		ShouldBet:  false,
		Rule:       rule,
		Reason:     reason,
		Confidence: models.ConfidenceSkip,
	}
}

// isHighUncertainty requires both a large raw edge and a high uncertainty
// score; either alone does not trip rule 4.
func isHighUncertainty(e models.EdgeResult, cfg *config.ModelConfig) bool {
	return math.Abs(e.RawEdge) >= cfg.HighEdgeThreshold &&
		e.Uncertainty >= cfg.HighUncertaintyThreshold
}

func collectWarnings(in DecisionInput, regime config.Regime) []string {
	var warnings []string

	if in.HomeQB == models.QBQuestionable {
		warnings = append(warnings, "home QB questionable")
	}
	if in.AwayQB == models.QBQuestionable {
		warnings = append(warnings, "away QB questionable")
	}
	if in.Week <= 1 {
		warnings = append(warnings, "very early season, ratings unsettled")
	}
	if in.Edge.Uncertainty >= regime.UncertaintyCap*0.8 {
		warnings = append(warnings, fmt.Sprintf("elevated uncertainty %.2f", in.Edge.Uncertainty))
	}

	return warnings
}

// deriveConfidence maps warning count and uncertainty magnitude to a tier.
// More warnings or more uncertainty can only lower confidence, never raise it.
func deriveConfidence(warningCount int, uncertainty float64) models.Confidence {
	score := warningCount
	if uncertainty >= 0.40 {
		score++
	}

	switch {
	case score == 0:
		return models.ConfidenceHigh
	case score == 1:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
