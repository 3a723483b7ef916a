package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// FeedbackRow is one graded bet flattened into the training-feedback shape.
// The schema is append-only; downstream consumers key on field names.
type FeedbackRow struct {
	EventID       int64             `json:"event_id"`
	Season        int               `json:"season"`
	Week          int               `json:"week"`
	Sportsbook    string            `json:"sportsbook"`
	MarketType    models.MarketType `json:"market_type"`
	Side          models.BetSide    `json:"side"`
	LineAtBet     float64           `json:"line_at_bet"`
	ClosingLine   *float64          `json:"closing_line,omitempty"`
	EffectiveEdge float64           `json:"effective_edge"`
	Uncertainty   float64           `json:"uncertainty"`
	Percentile    float64           `json:"percentile"`
	Result        models.BetResult  `json:"result"`
	ProfitLoss    float64           `json:"profit_loss"`
	CLV           *float64          `json:"clv,omitempty"`
	ConfigHash    string            `json:"config_hash"`
	ExportedAt    time.Time         `json:"exported_at"`
}

// FeedbackExporter serializes graded bets for offline model retraining.
// It is a one-way sink: nothing it produces feeds back into live decisions,
// which all come from the frozen model config tables.
type FeedbackExporter struct {
	sink   io.Writer
	logger *logrus.Logger
}

// NewFeedbackExporter creates an exporter writing NDJSON rows to sink.
func NewFeedbackExporter(sink io.Writer, logger *logrus.Logger) *FeedbackExporter {
	return &FeedbackExporter{sink: sink, logger: logger}
}

// Export writes one row per graded bet. Ungraded bets are skipped; a bet
// without a final result has nothing to teach yet.
func (e *FeedbackExporter) Export(bets []*models.BetRecord) (int, error) {
	enc := json.NewEncoder(e.sink)
	now := time.Now().UTC()
	exported := 0

	for _, bet := range bets {
		if !bet.IsGraded() {
			continue
		}

		row := FeedbackRow{
			EventID:       bet.EventID,
			Season:        bet.Season,
			Week:          bet.Week,
			Sportsbook:    bet.Sportsbook,
			MarketType:    bet.MarketType,
			Side:          bet.Side,
			LineAtBet:     bet.LineAtBet,
			ClosingLine:   bet.ClosingLine,
			EffectiveEdge: bet.EffectiveEdge,
			Uncertainty:   bet.Uncertainty,
			Percentile:    bet.Percentile,
			Result:        *bet.Result,
			ConfigHash:    bet.ConfigHash,
			ExportedAt:    now,
		}
		if bet.ProfitLoss != nil {
			row.ProfitLoss = *bet.ProfitLoss
		}
		if clv, ok := CLV(bet); ok {
			row.CLV = &clv
		}

		if err := enc.Encode(row); err != nil {
			return exported, fmt.Errorf("failed to encode feedback row: %w", err)
		}
		exported++
	}

	e.logger.WithFields(logrus.Fields{
		"graded":   len(bets),
		"exported": exported,
	}).Info("Exported training feedback")

	return exported, nil
}
