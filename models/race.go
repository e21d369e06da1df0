package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RaceStatus represents the lifecycle state of a race
type RaceStatus string

const (
	RaceStatusUpcoming RaceStatus = "upcoming"
	RaceStatusDrawing  RaceStatus = "drawing"
	RaceStatusActive   RaceStatus = "active"
	RaceStatusFinished RaceStatus = "finished"
)

// Valid reports whether s is one of the known statuses
func (s RaceStatus) Valid() bool {
	switch s {
	case RaceStatusUpcoming, RaceStatusDrawing, RaceStatusActive, RaceStatusFinished:
		return true
	}
	return false
}

var (
	ErrInvalidRaceWindow    = errors.New("race must end after it starts")
	ErrInvalidBettingWindow = errors.New("betting window must have both bounds, end after it starts and close by race start")
	ErrNegativePrize        = errors.New("prize amounts cannot be negative")
)

// Race represents a weekly competitive period ranked by study time.
// Windows are half-open: a window [start, end) is closed at exactly end.
type Race struct {
	ID              uuid.UUID  `db:"id"`
	Name            string     `db:"name"`
	Status          RaceStatus `db:"status"` // last written status, not authoritative
	RaceStartsAt    time.Time  `db:"race_starts_at"`
	RaceEndsAt      time.Time  `db:"race_ends_at"`
	BettingStartsAt *time.Time `db:"betting_starts_at"`
	BettingEndsAt   *time.Time `db:"betting_ends_at"`
	TotalPot        int64      `db:"total_pot"`
	FirstPrize      int64      `db:"first_prize"`
	SecondPrize     int64      `db:"second_prize"`
	ThirdPrize      int64      `db:"third_prize"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// NewRace validates the windows and prizes and returns a race with a fresh id.
// Pass nil betting bounds for a race without a betting window.
func NewRace(name string, raceStartsAt, raceEndsAt time.Time, bettingStartsAt, bettingEndsAt *time.Time, prizes [3]int64) (*Race, error) {
	if !raceEndsAt.After(raceStartsAt) {
		return nil, ErrInvalidRaceWindow
	}
	if (bettingStartsAt == nil) != (bettingEndsAt == nil) {
		return nil, ErrInvalidBettingWindow
	}
	if bettingStartsAt != nil {
		if !bettingEndsAt.After(*bettingStartsAt) || bettingEndsAt.After(raceStartsAt) {
			return nil, ErrInvalidBettingWindow
		}
		bs, be := bettingStartsAt.UTC(), bettingEndsAt.UTC()
		bettingStartsAt, bettingEndsAt = &bs, &be
	}
	var pot int64
	for _, p := range prizes {
		if p < 0 {
			return nil, ErrNegativePrize
		}
		pot += p
	}

	return &Race{
		ID:              uuid.New(),
		Name:            name,
		RaceStartsAt:    raceStartsAt.UTC(),
		RaceEndsAt:      raceEndsAt.UTC(),
		BettingStartsAt: bettingStartsAt,
		BettingEndsAt:   bettingEndsAt,
		TotalPot:        pot,
		FirstPrize:      prizes[0],
		SecondPrize:     prizes[1],
		ThirdPrize:      prizes[2],
		Status:          RaceStatusUpcoming,
	}, nil
}

// HasBettingWindow reports whether the race has a separate betting window
func (r *Race) HasBettingWindow() bool {
	return r.BettingStartsAt != nil && r.BettingEndsAt != nil
}

// StatusAt derives the lifecycle status from the clock.
// Once betting opens the race stays in drawing until the race window starts,
// so the status never moves backwards.
func (r *Race) StatusAt(now time.Time) RaceStatus {
	switch {
	case !now.Before(r.RaceEndsAt):
		return RaceStatusFinished
	case !now.Before(r.RaceStartsAt):
		return RaceStatusActive
	case r.HasBettingWindow() && !now.Before(*r.BettingStartsAt):
		return RaceStatusDrawing
	default:
		return RaceStatusUpcoming
	}
}

// AcceptsBets reports whether now falls inside the betting window
func (r *Race) AcceptsBets(now time.Time) bool {
	if !r.HasBettingWindow() {
		return false
	}
	return r.StatusAt(now) == RaceStatusDrawing && now.Before(*r.BettingEndsAt)
}

// InRaceWindow reports whether t falls inside [RaceStartsAt, RaceEndsAt)
func (r *Race) InRaceWindow(t time.Time) bool {
	return !t.Before(r.RaceStartsAt) && t.Before(r.RaceEndsAt)
}

// StatusDrifted reports whether the stored status disagrees with the clock
func (r *Race) StatusDrifted(now time.Time) bool {
	return r.Status != r.StatusAt(now)
}

// PrizeFor returns the prize for a finishing position, zero outside the podium
func (r *Race) PrizeFor(position int) int64 {
	switch position {
	case 1:
		return r.FirstPrize
	case 2:
		return r.SecondPrize
	case 3:
		return r.ThirdPrize
	}
	return 0
}
