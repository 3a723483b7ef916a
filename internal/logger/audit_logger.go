// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/wheels195/cfb-market-edge-sub000/internal/models"
)

// AuditLogger provides a dedicated audit trail for bet approvals and alerts.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetApproval records an approved bet slip.
func (al *AuditLogger) LogBetApproval(slip *models.BetSlip, configHash string) {
	al.WithFields(logrus.Fields{
		"game_key":       slip.GameKey,
		"market_type":    slip.MarketType,
		"side":           slip.Side,
		"line_at_bet":    slip.LineAtBet,
		"effective_edge": slip.EffectiveEdge,
		"uncertainty":    slip.Uncertainty,
		"percentile":     slip.Percentile,
		"confidence":     slip.Confidence,
		"warnings":       slip.Warnings,
		"config_hash":    configHash,
	}).Info("Bet approval recorded")
}

// LogBetRejection records a rejected edge and the rule that rejected it.
func (al *AuditLogger) LogBetRejection(eventID int64, sportsbook string, market models.MarketType, reason string) {
	al.WithFields(logrus.Fields{
		"event_id":    eventID,
		"sportsbook":  sportsbook,
		"market_type": market,
		"reason":      reason,
	}).Debug("Bet rejection recorded")
}

// LogAlert records a raised monitoring alert.
func (al *AuditLogger) LogAlert(alert *models.MonitoringAlert) {
	al.WithFields(logrus.Fields{
		"type":      alert.Type,
		"category":  alert.Category,
		"metric":    alert.Metric,
		"value":     alert.Value,
		"threshold": alert.Threshold,
	}).Warn(alert.Message)
}

// LogGrading records a graded bet outcome.
func (al *AuditLogger) LogGrading(bet *models.BetRecord) {
	fields := logrus.Fields{
		"bet_id":      bet.ID,
		"game_key":    bet.GameKey,
		"market_type": bet.MarketType,
		"side":        bet.Side,
		"line_at_bet": bet.LineAtBet,
	}
	if bet.Result != nil {
		fields["result"] = *bet.Result
	}
	if bet.ClosingLine != nil {
		fields["closing_line"] = *bet.ClosingLine
	}
	al.WithFields(fields).Info("Bet graded")
}
