package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"studyrace/config"
	"studyrace/models"
)

// placeSlots is the number of finishing positions a place bet covers
const placeSlots = 3

var oddsFloor = decimal.NewFromInt(1)

// OddsEngine derives payout multipliers from the relative standing of a roster.
//
// Each participant gets a strength of study minutes plus a fixed prior, so an
// empty roster member still has a chance. Win probability is strength over the
// roster total; place probability is that share times the number of paid
// places, capped at 1. Multipliers are (1 - margin) / probability, truncated to
// two decimals and clamped to [1.00, max]. Since place probability is never
// below win probability, win odds are never below place odds.
type OddsEngine struct {
	priorMinutes int64
	margin       decimal.Decimal
	max          decimal.Decimal
}

// NewOddsEngine creates an odds engine from configuration
func NewOddsEngine(cfg *config.Config) *OddsEngine {
	return &OddsEngine{
		priorMinutes: cfg.OddsPriorMinutes,
		margin:       cfg.OddsMargin,
		max:          cfg.OddsMax,
	}
}

// ComputeOdds populates WinOdds and PlaceOdds of every participant.
// It returns ErrInvalidOdds if any result breaks win >= place >= 1.00.
func (e *OddsEngine) ComputeOdds(roster []*models.RaceParticipant) ([]*models.RaceParticipant, error) {
	if len(roster) == 0 {
		return roster, nil
	}

	var total int64
	for _, p := range roster {
		total += p.StudyMinutes + e.priorMinutes
	}
	slots := int64(min(placeSlots, len(roster)))
	payoutShare := decimal.NewFromInt(1).Sub(e.margin)
	totalDec := decimal.NewFromInt(total)

	for _, p := range roster {
		strength := p.StudyMinutes + e.priorMinutes

		win := payoutShare.Mul(totalDec).Div(decimal.NewFromInt(strength))
		placeStrength := min(strength*slots, total)
		place := payoutShare.Mul(totalDec).Div(decimal.NewFromInt(placeStrength))

		p.WinOdds = decimal.NewNullDecimal(e.clamp(win))
		p.PlaceOdds = decimal.NewNullDecimal(e.clamp(place))

		if err := ValidateOdds(p); err != nil {
			return nil, err
		}
	}
	return roster, nil
}

func (e *OddsEngine) clamp(odds decimal.Decimal) decimal.Decimal {
	odds = odds.Truncate(2)
	if odds.LessThan(oddsFloor) {
		return oddsFloor
	}
	if odds.GreaterThan(e.max) {
		return e.max.Truncate(2)
	}
	return odds
}

// ValidateOdds checks win >= place >= 1.00 for a participant with computed odds
func ValidateOdds(p *models.RaceParticipant) error {
	if !p.HasOdds() {
		return fmt.Errorf("%w: participant %s has no odds", ErrInvalidOdds, p.ID)
	}
	win, place := p.WinOdds.Decimal, p.PlaceOdds.Decimal
	if place.LessThan(oddsFloor) || win.LessThan(place) {
		return fmt.Errorf("%w: participant %s has win %s, place %s", ErrInvalidOdds, p.ID, win, place)
	}
	return nil
}
