package models

import (
	"time"
)

// QBStatusKind is the pre-kickoff availability of a team's starting QB.
type QBStatusKind string

const (
	QBConfirmed    QBStatusKind = "confirmed"
	QBQuestionable QBStatusKind = "questionable"
	QBOut          QBStatusKind = "out"
	QBUnknown      QBStatusKind = "unknown"
)

// QBStatus is a pre-kickoff-only record of starting QB availability.
// AsOf must be strictly before kickoff; post-game starter data lives in
// PostGameStarter and must never feed the model.
type QBStatus struct {
	Team   string       `db:"team" json:"team" validate:"required"`
	Season int          `db:"season" json:"season" validate:"required"`
	Week   int          `db:"week" json:"week" validate:"gte=0,lte=15"`
	Status QBStatusKind `db:"status" json:"status" validate:"required,oneof=confirmed questionable out unknown"`
	AsOf   time.Time    `db:"as_of" json:"as_of" validate:"required"`
}

// IsKnown reports whether the status carries real information.
func (q *QBStatus) IsKnown() bool {
	return q.Status != QBUnknown
}

// ValidFor reports whether the record may feed a projection for the given
// kickoff. Records captured at or after kickoff are leakage.
func (q *QBStatus) ValidFor(kickoff time.Time) bool {
	return q.AsOf.Before(kickoff)
}

// PostGameStarter records who actually started, known only after the game.
// It exists for grading and audits; it is deliberately a separate type from
// QBStatus so it cannot be handed to the projection pipeline by accident.
type PostGameStarter struct {
	Team       string    `db:"team" json:"team"`
	Season     int       `db:"season" json:"season"`
	Week       int       `db:"week" json:"week"`
	PlayerName string    `db:"player_name" json:"player_name"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
