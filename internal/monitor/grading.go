package monitor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// GradeBet settles a pending bet record against a completed game, filling
// in result, scores, flat-stake profit/loss, and the closing line. A bet
// record is mutated exactly once; grading an already-graded bet is an error.
func GradeBet(bet *models.BetRecord, game *models.Game, closingLine *float64) error {
	if bet.IsGraded() {
		return fmt.Errorf("bet %s already graded", bet.ID)
	}
	if !game.IsCompleted() {
		return fmt.Errorf("game %d has no final score", game.ID)
	}
	if game.ID != bet.EventID {
		return fmt.Errorf("game %d does not match bet event %d", game.ID, bet.EventID)
	}

	result := settle(bet, game)
	pl := profitLoss(result, bet.PriceAmerican)
	now := time.Now().UTC()

	bet.Result = &result
	bet.HomeScore = game.HomeScore
	bet.AwayScore = game.AwayScore
	bet.ClosingLine = closingLine
	bet.ProfitLoss = &pl
	bet.GradedAt = &now
	return nil
}

// settle decides win/loss/push for the bet side against the final score.
func settle(bet *models.BetRecord, game *models.Game) models.BetResult {
	switch bet.MarketType {
	case models.MarketTypeSpread:
		// Home covers when margin beats the handicap: margin + line > 0
		// for a home line like -7.
		covered := game.Margin() + bet.LineAtBet
		if covered == 0 {
			return models.BetResultPush
		}
		homeWon := covered > 0
		if (bet.Side == models.BetSideHome) == homeWon {
			return models.BetResultWin
		}
		return models.BetResultLoss

	case models.MarketTypeTotal:
		diff := game.TotalPoints() - bet.LineAtBet
		if diff == 0 {
			return models.BetResultPush
		}
		overWon := diff > 0
		if (bet.Side == models.BetSideOver) == overWon {
			return models.BetResultWin
		}
		return models.BetResultLoss
	}

	return models.BetResultPush
}

// profitLoss converts a result into flat-stake units at the bet's American
// price: positive price is profit per 100 risked, negative is stake needed
// to win 100.
func profitLoss(result models.BetResult, priceAmerican int) float64 {
	switch result {
	case models.BetResultPush:
		return 0
	case models.BetResultLoss:
		return -1
	}

	if priceAmerican == 0 {
		// Missing price: treat as even money.
		return 1
	}

	hundred := decimal.NewFromInt(100)
	price := decimal.NewFromInt(int64(priceAmerican))
	var profit decimal.Decimal
	if priceAmerican > 0 {
		profit = price.Div(hundred)
	} else {
		profit = hundred.Div(price.Abs())
	}
	f, _ := profit.Round(4).Float64()
	return f
}
