// Package monitor aggregates graded bet outcomes into closing-line value,
// win-rate, and edge-persistence metrics, and raises threshold alerts once
// enough sample has accumulated.
package monitor

import (
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// CLV returns the closing line value for a graded bet in points, under the
// single canonical sign convention used everywhere in this repository:
// positive CLV means the line moved toward the side that was bet between
// bet time and close.
//
//	home bet:  bet -3, close -5  => +2 (market agreed, home got stronger)
//	away bet:  bet -7, close -5  => +2
//	over bet:  bet 51, close 54  => +3
//	under bet: bet 54.5, close 51 => +3.5
//
// Bets without a captured closing line report zero and ok=false.
func CLV(bet *models.BetRecord) (float64, bool) {
	if !bet.HasClosingLine() {
		return 0, false
	}

	move := *bet.ClosingLine - bet.LineAtBet
	switch bet.Side {
	case models.BetSideHome, models.BetSideUnder:
		return -move, true
	case models.BetSideAway, models.BetSideOver:
		return move, true
	}
	return 0, false
}

// EdgePersisted reports whether the effective-edge direction survived to the
// closing line: the market did not move against the side that was bet.
func EdgePersisted(bet *models.BetRecord) (bool, bool) {
	clv, ok := CLV(bet)
	if !ok {
		return false, false
	}
	return clv >= 0, true
}
