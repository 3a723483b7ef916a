package projection

import (
	"fmt"
	"strings"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// positionPoints is the spread value of losing a starter at each position.
var positionPoints = map[string]float64{
	"QB": 7.0,
	"RB": 1.5,
	"WR": 1.2,
	"TE": 0.8,
	"OL": 1.0,
	"DL": 1.0,
	"LB": 0.9,
	"DB": 0.9,
	"K":  0.5,
}

// statusMultiplier scales position value by how likely the player is to miss.
var statusMultiplier = map[models.InjuryStatus]float64{
	models.InjuryOut:          1.00,
	models.InjuryDoubtful:     0.75,
	models.InjuryQuestionable: 0.30,
	models.InjuryProbable:     0.10,
}

// InjuryInput holds both teams' injury reports for one game.
type InjuryInput struct {
	HomeInjuries []models.InjuryRecord
	AwayInjuries []models.InjuryRecord
}

// InjuryFactor nets both injury reports into one side-signed factor.
// Positive magnitude favors the home side (the away team lost more value).
// Empty reports produce no factor.
func InjuryFactor(in InjuryInput) (models.AdjustmentFactor, bool) {
	homeLoss := reportPoints(in.HomeInjuries)
	awayLoss := reportPoints(in.AwayInjuries)

	if homeLoss == 0 && awayLoss == 0 {
		return models.AdjustmentFactor{}, false
	}

	// Net value favoring home: away losses help home, home losses hurt it.
	points := awayLoss - homeLoss

	confidence := models.ConfidenceMedium
	if hasQBOut(in.HomeInjuries) || hasQBOut(in.AwayInjuries) {
		confidence = models.ConfidenceHigh
	}

	return models.AdjustmentFactor{
		Kind:       models.FactorInjury,
		Points:     points,
		Confidence: confidence,
		Detail:     fmt.Sprintf("home -%.1f, away -%.1f", homeLoss, awayLoss),
	}, true
}

func reportPoints(records []models.InjuryRecord) float64 {
	total := 0.0
	for _, r := range records {
		pos := strings.ToUpper(strings.TrimSpace(r.Position))
		value, ok := positionPoints[pos]
		if !ok {
			value = 0.5
		}
		total += value * statusMultiplier[r.Status]
	}
	return total
}

func hasQBOut(records []models.InjuryRecord) bool {
	for _, r := range records {
		if strings.EqualFold(r.Position, "QB") && r.Status == models.InjuryOut {
			return true
		}
	}
	return false
}
