package projection

import (
	"fmt"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

const (
	// continuityScale converts a full returning-production gap (0 vs 1)
	// into spread points.
	continuityScale = 6.0

	// continuityFloor is the smallest production gap worth a factor.
	continuityFloor = 0.10
)

// PlayerFactorInput holds both teams' roster continuity.
type PlayerFactorInput struct {
	Home *models.RosterContinuity
	Away *models.RosterContinuity
	Week int
}

// PlayerFactor derives a side-signed roster-continuity factor. Positive
// magnitude favors home. Returns no factor when either team's continuity is
// unavailable or the gap is trivial; continuity matters most before ratings
// have caught up, so confidence decays after the early weeks.
func PlayerFactor(in PlayerFactorInput) (models.AdjustmentFactor, bool) {
	if in.Home == nil || in.Away == nil {
		return models.AdjustmentFactor{}, false
	}

	gap := in.Home.ReturningProduction - in.Away.ReturningProduction
	if gap < continuityFloor && gap > -continuityFloor {
		return models.AdjustmentFactor{}, false
	}

	confidence := models.ConfidenceMedium
	if in.Week > models.EarlySeasonMaxWeek {
		confidence = models.ConfidenceLow
	}

	return models.AdjustmentFactor{
		Kind:       models.FactorPlayerFactor,
		Points:     gap * continuityScale,
		Confidence: confidence,
		Detail: fmt.Sprintf("returning production home %.0f%%, away %.0f%%",
			in.Home.ReturningProduction*100, in.Away.ReturningProduction*100),
	}, true
}
