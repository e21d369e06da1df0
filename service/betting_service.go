package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/config"
	"studyrace/events"
	"studyrace/models"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	minStake   int64
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory, clock Clock, cfg *config.Config) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		clock:      clock,
		minStake:   cfg.MinStake,
	}
}

// PlaceBet locks the participant's current odds and deducts the stake.
// Checks run in a fixed order so the first failing one decides the error:
// betting window, minimum stake, balance, participant, odds.
func (s *bettingService) PlaceBet(ctx context.Context, bettorID, raceID, participantID uuid.UUID, betType models.BetType, amount int64) (*models.Bet, error) {
	betType, err := models.ParseBetType(string(betType))
	if err != nil {
		return nil, ErrInvalidBetType
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	race, err := uow.RaceRepository().GetByID(ctx, raceID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if race == nil {
		return nil, ErrRaceNotFound
	}

	now := s.clock.Now()
	if !race.AcceptsBets(now) {
		return nil, ErrBettingClosed
	}

	if amount < s.minStake {
		return nil, ErrBelowMinimumStake
	}

	bettor, err := uow.UserRepository().GetByIDForUpdate(ctx, bettorID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if bettor == nil {
		return nil, ErrUserNotFound
	}
	if bettor.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	participant, err := uow.RaceParticipantRepository().GetByID(ctx, participantID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if participant == nil || participant.RaceID != raceID {
		return nil, ErrInvalidParticipant
	}

	odds, ok := participant.OddsFor(betType)
	if !ok {
		return nil, ErrOddsNotAvailable
	}
	if betType != models.BetTypeSupport {
		if err := ValidateOdds(participant); err != nil {
			log.WithError(err).WithField("participantID", participantID).Error("Stored odds are invalid")
			return nil, ErrOddsNotAvailable
		}
	}

	updated, err := uow.UserRepository().DeductBalance(ctx, bettorID, amount)
	if err != nil {
		return nil, persistenceError(fmt.Errorf("failed to deduct stake: %w", err))
	}
	if updated == nil {
		return nil, ErrInsufficientBalance
	}

	bet := models.NewBet(bettorID, raceID, participantID, betType, amount, odds, now)
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to create bet: %w", err))
	}

	history := &models.BalanceHistory{
		UserID:          bettorID,
		BalanceBefore:   updated.Balance + amount,
		BalanceAfter:    updated.Balance,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeBetStake,
		TransactionMetadata: map[string]any{
			"race_id":         raceID.String(),
			"participant_id":  participantID.String(),
			"bet_type":        string(betType),
			"odds":            odds.StringFixed(2),
			"expected_payout": bet.ExpectedPayout,
		},
		RelatedID:   &bet.ID,
		RelatedType: relatedRef(models.RelatedTypeBet),
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, persistenceError(err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:          bet.ID,
		BettorID:       bettorID,
		RaceID:         raceID,
		ParticipantID:  participantID,
		BetType:        betType,
		Amount:         amount,
		Odds:           odds.StringFixed(2),
		ExpectedPayout: bet.ExpectedPayout,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}

	log.WithFields(log.Fields{
		"betID":    bet.ID,
		"bettorID": bettorID,
		"raceID":   raceID,
		"type":     betType,
		"amount":   amount,
		"odds":     odds.StringFixed(2),
	}).Info("Bet placed")

	return bet, nil
}

// ListBets returns the user's bets, newest first
func (s *bettingService) ListBets(ctx context.Context, bettorID uuid.UUID, limit int) ([]*models.Bet, error) {
	if limit <= 0 {
		limit = 50
	}

	var bets []*models.Bet
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		user, err := uow.UserRepository().GetByID(ctx, bettorID)
		if err != nil {
			return persistenceError(err)
		}
		if user == nil {
			return ErrUserNotFound
		}

		bets, err = uow.BetRepository().ListByBettor(ctx, bettorID, limit)
		if err != nil {
			return persistenceError(err)
		}
		return nil
	})
	return bets, err
}
