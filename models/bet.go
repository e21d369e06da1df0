package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetType is what a wager predicts about its participant
type BetType string

const (
	BetTypeWin     BetType = "win"     // participant finishes first
	BetTypePlace   BetType = "place"   // participant finishes in the top 3
	BetTypeSupport BetType = "support" // backing a participant without a payout multiplier
)

// SupportOdds is the multiplier locked by support bets
var SupportOdds = decimal.NewFromInt(1)

// ParseBetType converts user input into a BetType
func ParseBetType(s string) (BetType, error) {
	switch bt := BetType(strings.ToLower(strings.TrimSpace(s))); bt {
	case BetTypeWin, BetTypePlace, BetTypeSupport:
		return bt, nil
	}
	return "", fmt.Errorf("unknown bet type %q", s)
}

// Bet represents a wager on a race participant.
// Odds are locked at placement and never change afterwards.
type Bet struct {
	ID             uuid.UUID       `db:"id"`
	BettorID       uuid.UUID       `db:"bettor_id"`
	RaceID         uuid.UUID       `db:"race_id"`
	ParticipantID  uuid.UUID       `db:"participant_id"`
	Type           BetType         `db:"bet_type"`
	Amount         int64           `db:"amount"`
	Odds           decimal.Decimal `db:"odds"`
	ExpectedPayout int64           `db:"expected_payout"`
	CreatedAt      time.Time       `db:"created_at"`
}

// NewBet builds a bet with a fresh id and its expected payout
func NewBet(bettorID, raceID, participantID uuid.UUID, betType BetType, amount int64, odds decimal.Decimal, placedAt time.Time) *Bet {
	return &Bet{
		ID:             uuid.New(),
		BettorID:       bettorID,
		RaceID:         raceID,
		ParticipantID:  participantID,
		Type:           betType,
		Amount:         amount,
		Odds:           odds,
		ExpectedPayout: ExpectedPayout(amount, odds),
		CreatedAt:      placedAt.UTC(),
	}
}

// ExpectedPayout returns floor(amount × odds)
func ExpectedPayout(amount int64, odds decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(odds).Floor().IntPart()
}
