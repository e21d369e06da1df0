package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studyrace/config"
	"studyrace/events"
	"studyrace/models"
)

var bettingOpensAt = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

type bettingFixture struct {
	mocks       *TestMocks
	clock       *FixedClock
	service     BettingService
	race        *models.Race
	bettor      *models.User
	participant *models.RaceParticipant
}

func newBettingFixture(t *testing.T) *bettingFixture {
	t.Helper()

	bStart := bettingOpensAt
	bEnd := bettingOpensAt.Add(48 * time.Hour)
	race, err := models.NewRace("Week 10", bEnd, bEnd.Add(7*24*time.Hour), &bStart, &bEnd, [3]int64{500, 300, 100})
	require.NoError(t, err)

	participant := models.NewRaceParticipant(race.ID, uuid.New(), bettingOpensAt)
	participant.WinOdds = decimal.NewNullDecimal(decimal.RequireFromString("3.50"))
	participant.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("1.40"))

	mocks := NewTestMocks()
	clock := NewFixedClock(bettingOpensAt.Add(time.Hour))

	return &bettingFixture{
		mocks:       mocks,
		clock:       clock,
		service:     NewBettingService(mocks.Factory, clock, config.NewTestConfig()),
		race:        race,
		bettor:      &models.User{ID: uuid.New(), Username: "alice", Balance: 1000},
		participant: participant,
	}
}

func (f *bettingFixture) expectRace() {
	f.mocks.RaceRepo.On("GetByID", mock.Anything, f.race.ID).Return(f.race, nil)
}

func (f *bettingFixture) expectBettor() {
	f.mocks.UserRepo.On("GetByIDForUpdate", mock.Anything, f.bettor.ID).Return(f.bettor, nil)
}

func (f *bettingFixture) expectParticipant() {
	f.mocks.ParticipantRepo.On("GetByID", mock.Anything, f.participant.ID).Return(f.participant, nil)
}

func (f *bettingFixture) expectSuccessfulPlacement(amount int64) {
	f.mocks.ExpectTransaction(true)
	f.expectRace()
	f.expectBettor()
	f.expectParticipant()

	after := *f.bettor
	after.Balance -= amount
	f.mocks.UserRepo.On("DeductBalance", mock.Anything, f.bettor.ID, amount).Return(&after, nil)
	f.mocks.BetRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Bet")).Return(nil)
	f.mocks.BalanceHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.UserID == f.bettor.ID &&
			h.BalanceBefore == f.bettor.Balance &&
			h.BalanceAfter == f.bettor.Balance-amount &&
			h.ChangeAmount == -amount &&
			h.TransactionType == models.TransactionTypeBetStake &&
			h.RelatedID != nil
	})).Return(nil)
	f.mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	f.mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BetPlacedEvent")).Return()
}

func (f *bettingFixture) place(betType models.BetType, amount int64) (*models.Bet, error) {
	return f.service.PlaceBet(context.Background(), f.bettor.ID, f.race.ID, f.participant.ID, betType, amount)
}

func TestBettingService_PlaceBet_WinLocksCurrentOdds(t *testing.T) {
	f := newBettingFixture(t)
	f.expectSuccessfulPlacement(200)

	bet, err := f.place(models.BetTypeWin, 200)

	require.NoError(t, err)
	assert.Equal(t, models.BetTypeWin, bet.Type)
	assert.Equal(t, int64(200), bet.Amount)
	assert.True(t, decimal.RequireFromString("3.50").Equal(bet.Odds))
	assert.Equal(t, int64(700), bet.ExpectedPayout)
	assert.Equal(t, f.clock.Now(), bet.CreatedAt)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_PlaceOddsFloorPayout(t *testing.T) {
	f := newBettingFixture(t)
	f.participant.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("1.37"))
	f.expectSuccessfulPlacement(333)

	bet, err := f.place(models.BetTypePlace, 333)

	require.NoError(t, err)
	// 333 × 1.37 = 456.21
	assert.Equal(t, int64(456), bet.ExpectedPayout)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_SupportLocksOneWithoutOdds(t *testing.T) {
	f := newBettingFixture(t)
	f.participant.WinOdds = decimal.NullDecimal{}
	f.participant.PlaceOdds = decimal.NullDecimal{}
	f.expectSuccessfulPlacement(100)

	bet, err := f.place(models.BetTypeSupport, 100)

	require.NoError(t, err)
	assert.True(t, models.SupportOdds.Equal(bet.Odds))
	assert.Equal(t, int64(100), bet.ExpectedPayout)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_PublishesBetPlaced(t *testing.T) {
	f := newBettingFixture(t)
	f.expectSuccessfulPlacement(150)

	var published events.BetPlacedEvent
	f.mocks.EventPublisher.ExpectedCalls = nil
	f.mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	f.mocks.EventPublisher.On("Publish", mock.AnythingOfType("events.BetPlacedEvent")).Return().Run(func(args mock.Arguments) {
		published = args.Get(0).(events.BetPlacedEvent)
	})

	bet, err := f.place(models.BetTypeWin, 150)

	require.NoError(t, err)
	assert.Equal(t, bet.ID, published.BetID)
	assert.Equal(t, "3.50", published.Odds)
	assert.Equal(t, int64(525), published.ExpectedPayout)
}

func TestBettingService_PlaceBet_InvalidBetTypeBeforeStoreAccess(t *testing.T) {
	f := newBettingFixture(t)

	_, err := f.place(models.BetType("exacta"), 200)

	assert.ErrorIs(t, err, ErrInvalidBetType)
	assert.ErrorIs(t, err, ErrValidation)
	f.mocks.Factory.AssertNotCalled(t, "Create")
}

func TestBettingService_PlaceBet_RaceNotFound(t *testing.T) {
	f := newBettingFixture(t)
	f.mocks.ExpectTransaction(false)
	f.mocks.RaceRepo.On("GetByID", mock.Anything, f.race.ID).Return(nil, nil)

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrRaceNotFound)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_BettingWindowBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		at      func(r *models.Race) time.Time
		wantErr error
	}{
		{"before window", func(r *models.Race) time.Time { return r.BettingStartsAt.Add(-time.Second) }, ErrBettingClosed},
		{"at window start", func(r *models.Race) time.Time { return *r.BettingStartsAt }, nil},
		{"just before window end", func(r *models.Race) time.Time { return r.BettingEndsAt.Add(-time.Nanosecond) }, nil},
		{"at window end", func(r *models.Race) time.Time { return *r.BettingEndsAt }, ErrBettingClosed},
		{"race active", func(r *models.Race) time.Time { return r.RaceStartsAt.Add(time.Hour) }, ErrBettingClosed},
		{"race finished", func(r *models.Race) time.Time { return r.RaceEndsAt }, ErrBettingClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBettingFixture(t)
			f.clock.Set(tt.at(f.race))

			if tt.wantErr == nil {
				f.expectSuccessfulPlacement(200)
			} else {
				f.mocks.ExpectTransaction(false)
				f.expectRace()
			}

			_, err := f.place(models.BetTypeWin, 200)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				f.mocks.UserRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
			}
			f.mocks.AssertAllExpectations(t)
		})
	}
}

func TestBettingService_PlaceBet_RaceWithoutBettingWindow(t *testing.T) {
	f := newBettingFixture(t)
	race, err := models.NewRace("No betting", bettingOpensAt, bettingOpensAt.Add(24*time.Hour), nil, nil, [3]int64{})
	require.NoError(t, err)
	f.race = race
	f.mocks.ExpectTransaction(false)
	f.expectRace()

	_, err = f.place(models.BetTypeSupport, 200)

	assert.ErrorIs(t, err, ErrBettingClosed)
}

func TestBettingService_PlaceBet_BelowMinimumStake(t *testing.T) {
	for _, amount := range []int64{99, 0, -5} {
		f := newBettingFixture(t)
		f.mocks.ExpectTransaction(false)
		f.expectRace()

		_, err := f.place(models.BetTypeWin, amount)

		assert.ErrorIs(t, err, ErrBelowMinimumStake, "amount %d", amount)
		f.mocks.UserRepo.AssertNotCalled(t, "GetByIDForUpdate", mock.Anything, mock.Anything)
	}
}

func TestBettingService_PlaceBet_ExactMinimumStakeAccepted(t *testing.T) {
	f := newBettingFixture(t)
	f.expectSuccessfulPlacement(100)

	_, err := f.place(models.BetTypeWin, 100)

	require.NoError(t, err)
}

func TestBettingService_PlaceBet_ClosedWindowReportedBeforeStake(t *testing.T) {
	f := newBettingFixture(t)
	f.clock.Set(f.race.RaceStartsAt)
	f.mocks.ExpectTransaction(false)
	f.expectRace()

	_, err := f.place(models.BetTypeWin, 10)

	assert.ErrorIs(t, err, ErrBettingClosed)
}

func TestBettingService_PlaceBet_InsufficientBalance(t *testing.T) {
	f := newBettingFixture(t)
	f.bettor.Balance = 150
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.expectBettor()

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.ErrorIs(t, err, ErrPrecondition)
	f.mocks.ParticipantRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_ConditionalDeductionRejects(t *testing.T) {
	f := newBettingFixture(t)
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.expectBettor()
	f.expectParticipant()
	f.mocks.UserRepo.On("DeductBalance", mock.Anything, f.bettor.ID, int64(200)).Return(nil, nil)

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	f.mocks.BetRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_BettorNotFound(t *testing.T) {
	f := newBettingFixture(t)
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.mocks.UserRepo.On("GetByIDForUpdate", mock.Anything, f.bettor.ID).Return(nil, nil)

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBettingService_PlaceBet_ParticipantFromAnotherRace(t *testing.T) {
	f := newBettingFixture(t)
	f.participant.RaceID = uuid.New()
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.expectBettor()
	f.expectParticipant()

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrInvalidParticipant)
	f.mocks.AssertAllExpectations(t)
}

func TestBettingService_PlaceBet_UnknownParticipant(t *testing.T) {
	f := newBettingFixture(t)
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.expectBettor()
	f.mocks.ParticipantRepo.On("GetByID", mock.Anything, f.participant.ID).Return(nil, nil)

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrInvalidParticipant)
}

func TestBettingService_PlaceBet_OddsNotComputed(t *testing.T) {
	for _, betType := range []models.BetType{models.BetTypeWin, models.BetTypePlace} {
		t.Run(string(betType), func(t *testing.T) {
			f := newBettingFixture(t)
			f.participant.WinOdds = decimal.NullDecimal{}
			f.participant.PlaceOdds = decimal.NullDecimal{}
			f.mocks.ExpectTransaction(false)
			f.expectRace()
			f.expectBettor()
			f.expectParticipant()

			_, err := f.place(betType, 200)

			assert.ErrorIs(t, err, ErrOddsNotAvailable)
			f.mocks.UserRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBettingService_PlaceBet_StoredOddsInverted(t *testing.T) {
	f := newBettingFixture(t)
	f.participant.WinOdds = decimal.NewNullDecimal(decimal.RequireFromString("1.20"))
	f.participant.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("1.80"))
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.expectBettor()
	f.expectParticipant()

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrOddsNotAvailable)
}

func TestBettingService_PlaceBet_StoreFailureIsPersistenceError(t *testing.T) {
	f := newBettingFixture(t)
	f.mocks.ExpectTransaction(false)
	f.expectRace()
	f.expectBettor()
	f.expectParticipant()

	after := *f.bettor
	after.Balance -= 200
	f.mocks.UserRepo.On("DeductBalance", mock.Anything, f.bettor.ID, int64(200)).Return(&after, nil)
	f.mocks.BetRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.place(models.BetTypeWin, 200)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "connection reset")
	f.mocks.UoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_ListBets(t *testing.T) {
	f := newBettingFixture(t)
	f.mocks.ExpectTransaction(false)
	f.mocks.UserRepo.On("GetByID", mock.Anything, f.bettor.ID).Return(f.bettor, nil)
	bets := []*models.Bet{{ID: uuid.New()}, {ID: uuid.New()}}
	f.mocks.BetRepo.On("ListByBettor", mock.Anything, f.bettor.ID, 50).Return(bets, nil)

	got, err := f.service.ListBets(context.Background(), f.bettor.ID, 0)

	require.NoError(t, err)
	assert.Equal(t, bets, got)
	f.mocks.AssertAllExpectations(t)
}
