package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrace/config"
	"studyrace/events"
	"studyrace/models"
	"studyrace/repository"
	"studyrace/repository/testutil"
	"studyrace/service"
)

func TestConcurrentBets_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(testDB.DB)
	raceRepo := repository.NewRaceRepository(testDB.DB)
	participantRepo := repository.NewRaceParticipantRepository(testDB.DB)
	betRepo := repository.NewBetRepository(testDB.DB)
	historyRepo := repository.NewBalanceHistoryRepository(testDB.DB)

	raceStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	// inside the betting window, which closes when the race starts
	clock := service.NewFixedClock(raceStart.Add(-time.Hour))
	bettingService := service.NewBettingService(
		repository.NewUnitOfWorkFactory(testDB.DB, events.NewBus()),
		clock,
		config.NewTestConfig(),
	)

	// setup returns a bettor with balance and a runner with posted odds
	setup := func(t *testing.T, balance int64) (*models.User, *models.Race, *models.RaceParticipant) {
		testDB.Truncate(t)

		bettor := testutil.CreateTestUserWithBalance("bettor", balance)
		require.NoError(t, userRepo.Create(ctx, bettor))
		runner := testutil.CreateTestUser("runner")
		require.NoError(t, userRepo.Create(ctx, runner))

		race := testutil.CreateTestRace(raceStart)
		require.NoError(t, raceRepo.Create(ctx, race))

		p := testutil.CreateTestParticipant(race.ID, runner.ID, 0)
		require.NoError(t, participantRepo.Create(ctx, p))
		p.Position = 1
		p.WinOdds = decimal.NewNullDecimal(decimal.RequireFromString("3.50"))
		p.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("1.40"))
		require.NoError(t, participantRepo.UpdateStandings(ctx, []*models.RaceParticipant{p}))

		return bettor, race, p
	}

	// placeConcurrently fires n bets of amount at once and collects their errors
	placeConcurrently := func(bettor *models.User, race *models.Race, p *models.RaceParticipant, n int, amount int64) []error {
		start := make(chan struct{})
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = bettingService.PlaceBet(ctx, bettor.ID, race.ID, p.ID, models.BetTypeWin, amount)
			}(i)
		}
		close(start)
		wg.Wait()
		return errs
	}

	count := func(t *testing.T, errs []error) (placed, rejected int) {
		for _, err := range errs {
			switch {
			case err == nil:
				placed++
			case assert.ErrorIs(t, err, service.ErrInsufficientBalance):
				rejected++
			}
		}
		return placed, rejected
	}

	t.Run("two bets that together overdraw the balance", func(t *testing.T) {
		bettor, race, p := setup(t, 150)

		placed, rejected := count(t, placeConcurrently(bettor, race, p, 2, 100))
		assert.Equal(t, 1, placed)
		assert.Equal(t, 1, rejected)

		user, err := userRepo.GetByID(ctx, bettor.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), user.Balance)

		bets, err := betRepo.ListByBettor(ctx, bettor.ID, 10)
		require.NoError(t, err)
		require.Len(t, bets, 1)
		assert.True(t, bets[0].Odds.Equal(decimal.RequireFromString("3.50")))

		history, err := historyRepo.GetByUser(ctx, bettor.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, int64(150), history[0].BalanceBefore)
		assert.Equal(t, int64(50), history[0].BalanceAfter)
	})

	t.Run("many bets stop at what the balance covers", func(t *testing.T) {
		bettor, race, p := setup(t, 250)

		placed, rejected := count(t, placeConcurrently(bettor, race, p, 8, 100))
		assert.Equal(t, 2, placed)
		assert.Equal(t, 6, rejected)

		user, err := userRepo.GetByID(ctx, bettor.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), user.Balance)
		assert.GreaterOrEqual(t, user.Balance, int64(0))

		bets, err := betRepo.ListByRace(ctx, race.ID)
		require.NoError(t, err)
		assert.Len(t, bets, 2)
	})
}
