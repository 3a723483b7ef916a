package projection

import (
	"strings"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

const (
	restPointsPerDay   = 0.15
	maxRestPoints      = 1.5
	conferenceGapValue = 1.5
	rivalryDamping     = 1.0
)

// powerConferences are treated as a class above the rest for mismatch value.
var powerConferences = map[string]bool{
	"SEC":     true,
	"BIG TEN": true,
	"BIG 12":  true,
	"ACC":     true,
}

// SituationalInput holds the scheduling context for one game.
type SituationalInput struct {
	Game         models.Game
	HomeRestDays int
	AwayRestDays int
	IsRivalry    bool
}

// SituationalFactor derives a side-signed factor from rest, conference
// class mismatch, and rivalry flags. Positive magnitude favors home.
func SituationalFactor(in SituationalInput) (models.AdjustmentFactor, bool) {
	points := 0.0
	details := make([]string, 0, 3)

	if in.HomeRestDays > 0 && in.AwayRestDays > 0 {
		restDiff := float64(in.HomeRestDays-in.AwayRestDays) * restPointsPerDay
		restDiff = clampAbs(restDiff, maxRestPoints)
		if restDiff != 0 {
			points += restDiff
			details = append(details, "rest differential")
		}
	}

	homePower := powerConferences[strings.ToUpper(in.Game.HomeConference)]
	awayPower := powerConferences[strings.ToUpper(in.Game.AwayConference)]
	if homePower != awayPower {
		if homePower {
			points += conferenceGapValue
		} else {
			points -= conferenceGapValue
		}
		details = append(details, "conference mismatch")
	}

	// Rivalry games run closer than ratings suggest; nudge toward pickem.
	if in.IsRivalry {
		if points > 0 {
			points -= rivalryDamping
		} else if points < 0 {
			points += rivalryDamping
		}
		details = append(details, "rivalry")
	}

	if points == 0 {
		return models.AdjustmentFactor{}, false
	}

	return models.AdjustmentFactor{
		Kind:       models.FactorSituational,
		Points:     points,
		Confidence: models.ConfidenceLow,
		Detail:     strings.Join(details, ", "),
	}, true
}

func clampAbs(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
