package projection

import (
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/config"
	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// Composer blends a base model line with weighted adjustment factors into
// the final model line. Weights come from the frozen per-market tables of
// the active model config; the composer itself holds no mutable state.
//
// Per-factor caps are a property of the providers (each caps its own
// output); the aggregate raw-edge cap is enforced downstream by the
// calibration engine, not here.
type Composer struct {
	cfg    *config.ModelConfig
	logger *logrus.Logger
}

// NewComposer creates a composer bound to one frozen model config.
func NewComposer(cfg *config.ModelConfig, logger *logrus.Logger) *Composer {
	return &Composer{cfg: cfg, logger: logger}
}

// Compose applies the weighted factors to a base line:
//
//	adjusted = base - sum(factor.points * weight[factor.kind])
//
// Any subset of factors may be absent; factors with no configured weight
// for the market contribute nothing.
func (c *Composer) Compose(market models.MarketType, baseLine float64, factors []models.AdjustmentFactor) (float64, models.ComponentBreakdown) {
	weights := c.cfg.WeightsFor(market)

	adjusted := baseLine
	applied := make([]models.AdjustmentFactor, 0, len(factors))

	for _, f := range factors {
		weight, ok := weights[f.Kind]
		if !ok || weight == 0 {
			continue
		}
		contribution := f.Points * weight
		adjusted -= contribution
		applied = append(applied, f)

		c.logger.WithFields(logrus.Fields{
			"market":       market,
			"factor":       f.Kind,
			"points":       f.Points,
			"weight":       weight,
			"contribution": contribution,
		}).Debug("Adjustment factor applied")
	}

	return adjusted, models.ComponentBreakdown{
		BaseLine:    baseLine,
		Adjustments: applied,
		FinalLine:   adjusted,
	}
}

// SharedFactorInput carries the per-game provider inputs that do not depend
// on a sportsbook. Every field is optional; absence means no factor.
type SharedFactorInput struct {
	Weather     *models.WeatherRecord
	Injuries    *InjuryInput
	Situational *SituationalInput
	Roster      *PlayerFactorInput
}

// SharedFactors runs the book-independent providers over whatever inputs
// are present. The line-movement factor is per book/market and is appended
// separately by the caller.
func SharedFactors(in SharedFactorInput) []models.AdjustmentFactor {
	factors := make([]models.AdjustmentFactor, 0, 4)

	if f, ok := WeatherFactor(in.Weather); ok {
		factors = append(factors, f)
	}
	if in.Injuries != nil {
		if f, ok := InjuryFactor(*in.Injuries); ok {
			factors = append(factors, f)
		}
	}
	if in.Situational != nil {
		if f, ok := SituationalFactor(*in.Situational); ok {
			factors = append(factors, f)
		}
	}
	if in.Roster != nil {
		if f, ok := PlayerFactor(*in.Roster); ok {
			factors = append(factors, f)
		}
	}

	return factors
}
