package edge

import (
	"math"
	"sort"
	"time"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// BuildEdge computes the full EdgeResult for one game/book/market from the
// market line, the composed model line, and the game's uncertainty score.
// The raw edge is capped before discounting and calibration; percentile is
// filled in later by RankSlate once the whole slate is known.
func BuildEdge(
	eventID int64,
	sportsbook string,
	market models.MarketType,
	marketLine, modelLine, uncertainty float64,
	cfg *config.ModelConfig,
) models.EdgeResult {
	raw := marketLine - modelLine
	capped := CapRawEdge(raw, cfg.EdgeCapFor(market))
	effective := capped * (1 - uncertainty)

	result := models.EdgeResult{
		EventID:       eventID,
		Sportsbook:    sportsbook,
		MarketType:    market,
		MarketLine:    marketLine,
		ModelLine:     modelLine,
		RawEdge:       raw,
		Uncertainty:   uncertainty,
		EffectiveEdge: effective,
		Side:          sideFor(market, raw),
		Calibration:   LookupCalibration(math.Abs(effective), cfg.BucketsFor(market)),
		ConfigHash:    cfg.Hash(),
		ComputedAt:    time.Now().UTC(),
	}
	return result
}

// sideFor derives the recommended side from the sign of the raw edge.
// Spreads: a negative edge means the market favors home by more than the
// model does, so the value sits with away. Totals: a positive edge means
// the market total is above the model's, so the value sits with the under.
func sideFor(market models.MarketType, rawEdge float64) models.BetSide {
	if market == models.MarketTypeTotal {
		if rawEdge > 0 {
			return models.BetSideUnder
		}
		return models.BetSideOver
	}
	if rawEdge < 0 {
		return models.BetSideAway
	}
	return models.BetSideHome
}

// RankSlate assigns each edge its percentile: the rank of |effectiveEdge|
// within the slate divided by the slate size, so the strongest edge gets
// 1/n and the weakest gets 1. Ties break deterministically by event id,
// then sportsbook, then market type, never by incidental sort stability.
func RankSlate(edges []*models.EdgeResult) {
	if len(edges) == 0 {
		return
	}

	ranked := make([]*models.EdgeResult, len(edges))
	copy(ranked, edges)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ae, be := a.AbsEffectiveEdge(), b.AbsEffectiveEdge()
		if ae != be {
			return ae > be
		}
		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}
		if a.Sportsbook != b.Sportsbook {
			return a.Sportsbook < b.Sportsbook
		}
		return a.MarketType < b.MarketType
	})

	n := float64(len(ranked))
	for i, e := range ranked {
		e.Percentile = float64(i+1) / n
	}
}
