package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// MovementClass classifies which side sharp money is hitting.
type MovementClass string

const (
	MovementNone       MovementClass = "none"
	MovementSharpHome  MovementClass = "sharp_home"
	MovementSharpAway  MovementClass = "sharp_away"
	MovementSharpOver  MovementClass = "sharp_over"
	MovementSharpUnder MovementClass = "sharp_under"
)

// MovementThresholds parameterizes the detector. Values come from the
// frozen model config.
type MovementThresholds struct {
	SignificantPoints    float64
	HighConfidencePoints float64
	SteamWindow          time.Duration
	Damping              float64
}

// MovementSignal is the detector's verdict for one book/market.
type MovementSignal struct {
	Movement       float64
	Classification MovementClass
	Confidence     models.Confidence
	SteamMove      bool
}

// DetectMovement compares the opening and latest tick of one book/market.
// Movement below the significance threshold yields a none signal. A steam
// move is flagged when the latest tick landed inside the pre-kickoff window.
func DetectMovement(line *models.MarketLine, kickoff time.Time, th MovementThresholds) MovementSignal {
	signal := MovementSignal{Classification: MovementNone}
	if line == nil {
		return signal
	}

	movement := line.Movement()
	signal.Movement = movement

	if math.Abs(movement) < th.SignificantPoints {
		return signal
	}

	switch line.MarketType {
	case models.MarketTypeSpread:
		// Home spread dropping means money on home.
		if movement < 0 {
			signal.Classification = MovementSharpHome
		} else {
			signal.Classification = MovementSharpAway
		}
	case models.MarketTypeTotal:
		if movement > 0 {
			signal.Classification = MovementSharpOver
		} else {
			signal.Classification = MovementSharpUnder
		}
	}

	signal.Confidence = models.ConfidenceMedium
	if math.Abs(movement) >= th.HighConfidencePoints {
		signal.Confidence = models.ConfidenceHigh
	}

	if th.SteamWindow > 0 && kickoff.Sub(line.CapturedAt) <= th.SteamWindow && line.CapturedAt.Before(kickoff) {
		signal.SteamMove = true
	}

	return signal
}

// Factor converts a significant signal into a composer adjustment. The
// magnitude is a damped fraction of the raw movement, signed so the composed
// model line follows the market move: one signal among several, not an
// override. Insignificant signals produce no factor.
func (s MovementSignal) Factor(damping float64) (models.AdjustmentFactor, bool) {
	if s.Classification == MovementNone {
		return models.AdjustmentFactor{}, false
	}

	detail := string(s.Classification)
	if s.SteamMove {
		detail += ", steam"
	}

	return models.AdjustmentFactor{
		Kind: models.FactorLineMovement,
		// Composer subtracts magnitudes, so the negation moves the model
		// line in the movement's direction.
		Points:     -damping * s.Movement,
		Confidence: s.Confidence,
		Detail:     fmt.Sprintf("%s (%.1f pts)", detail, s.Movement),
	}, true
}
