package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RaceParticipant is a user's standing within one race
type RaceParticipant struct {
	ID           uuid.UUID           `db:"id"`
	RaceID       uuid.UUID           `db:"race_id"`
	UserID       uuid.UUID           `db:"user_id"`
	Username     string              `db:"-"` // joined from users for display
	StudyMinutes int64               `db:"study_minutes"`
	Position     int                 `db:"position"` // 1-based, 0 until ranked
	WinOdds      decimal.NullDecimal `db:"win_odds"`
	PlaceOdds    decimal.NullDecimal `db:"place_odds"`
	EnrolledAt   time.Time           `db:"enrolled_at"`
}

// NewRaceParticipant enrolls a user into a race with no standing yet
func NewRaceParticipant(raceID, userID uuid.UUID, enrolledAt time.Time) *RaceParticipant {
	return &RaceParticipant{
		ID:         uuid.New(),
		RaceID:     raceID,
		UserID:     userID,
		EnrolledAt: enrolledAt.UTC(),
	}
}

// HasOdds reports whether both multipliers have been computed
func (p *RaceParticipant) HasOdds() bool {
	return p.WinOdds.Valid && p.PlaceOdds.Valid
}

// OddsFor returns the multiplier a bet of the given type locks in.
// Support bets always lock 1.00.
func (p *RaceParticipant) OddsFor(betType BetType) (decimal.Decimal, bool) {
	switch betType {
	case BetTypeWin:
		return p.WinOdds.Decimal, p.WinOdds.Valid
	case BetTypePlace:
		return p.PlaceOdds.Decimal, p.PlaceOdds.Valid
	case BetTypeSupport:
		return SupportOdds, true
	}
	return decimal.Zero, false
}

// IsPodium reports whether the participant currently holds a top-3 position
func (p *RaceParticipant) IsPodium() bool {
	return p.Position >= 1 && p.Position <= 3
}
