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
	"studyrace/models"
)

var raceWeekStart = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newRaceServiceUnderTest(m *TestMocks, clock Clock) RaceService {
	return NewRaceService(m.Factory, clock, NewOddsEngine(config.NewTestConfig()), m.Cache)
}

func weeklyRaceInput() models.RaceInput {
	bStart := raceWeekStart.Add(-72 * time.Hour)
	bEnd := raceWeekStart
	return models.RaceInput{
		Name:            "Week 11",
		RaceStartsAt:    raceWeekStart,
		RaceEndsAt:      raceWeekStart.Add(7 * 24 * time.Hour),
		BettingStartsAt: &bStart,
		BettingEndsAt:   &bEnd,
		FirstPrize:      500,
		SecondPrize:     300,
		ThirdPrize:      100,
	}
}

func newWeeklyRace(t *testing.T) *models.Race {
	t.Helper()
	in := weeklyRaceInput()
	race, err := models.NewRace(in.Name, in.RaceStartsAt, in.RaceEndsAt, in.BettingStartsAt, in.BettingEndsAt,
		[3]int64{in.FirstPrize, in.SecondPrize, in.ThirdPrize})
	require.NoError(t, err)
	return race
}

func TestRaceService_CreateRace(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	clock := NewFixedClock(raceWeekStart.Add(-24 * time.Hour))
	m.RaceRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Race")).Return(nil)

	race, err := newRaceServiceUnderTest(m, clock).CreateRace(context.Background(), weeklyRaceInput())

	require.NoError(t, err)
	assert.Equal(t, models.RaceStatusDrawing, race.Status)
	assert.Equal(t, int64(900), race.TotalPot)
	m.AssertAllExpectations(t)
}

func TestRaceService_CreateRace_InvalidWindows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *models.RaceInput)
	}{
		{"race ends before start", func(in *models.RaceInput) { in.RaceEndsAt = in.RaceStartsAt }},
		{"betting closes after race start", func(in *models.RaceInput) {
			late := in.RaceStartsAt.Add(time.Hour)
			in.BettingEndsAt = &late
		}},
		{"half betting window", func(in *models.RaceInput) { in.BettingEndsAt = nil }},
		{"negative prize", func(in *models.RaceInput) { in.SecondPrize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()
			in := weeklyRaceInput()
			tt.mutate(&in)

			_, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).CreateRace(context.Background(), in)

			assert.ErrorIs(t, err, ErrInvalidRace)
			assert.ErrorIs(t, err, ErrValidation)
			m.Factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestRaceService_GetRace_RewritesDriftedStatus(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	race := newWeeklyRace(t)
	race.Status = models.RaceStatusDrawing
	clock := NewFixedClock(raceWeekStart.Add(time.Hour))

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.RaceRepo.On("UpdateStatus", mock.Anything, race.ID, models.RaceStatusActive).Return(nil)

	got, err := newRaceServiceUnderTest(m, clock).GetRace(context.Background(), race.ID)

	require.NoError(t, err)
	assert.Equal(t, models.RaceStatusActive, got.Status)
	m.AssertAllExpectations(t)
}

func TestRaceService_GetRace_RewriteFailureStillReturnsDerivedStatus(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	race := newWeeklyRace(t)
	clock := NewFixedClock(race.RaceEndsAt)

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.RaceRepo.On("UpdateStatus", mock.Anything, race.ID, models.RaceStatusFinished).Return(errors.New("read-only replica"))

	got, err := newRaceServiceUnderTest(m, clock).GetRace(context.Background(), race.ID)

	require.NoError(t, err)
	assert.Equal(t, models.RaceStatusFinished, got.Status)
	m.UoW.AssertNotCalled(t, "Commit")
}

func TestRaceService_GetRace_NoDriftNoWrite(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	race := newWeeklyRace(t)
	clock := NewFixedClock(raceWeekStart.Add(-100 * time.Hour))

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)

	got, err := newRaceServiceUnderTest(m, clock).GetRace(context.Background(), race.ID)

	require.NoError(t, err)
	assert.Equal(t, models.RaceStatusUpcoming, got.Status)
	m.RaceRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRaceService_GetRace_NotFound(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	id := uuid.New()
	m.RaceRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).GetRace(context.Background(), id)

	assert.ErrorIs(t, err, ErrRaceNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRaceService_ListRaces_FiltersByDerivedStatus(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	clock := NewFixedClock(raceWeekStart.Add(time.Hour))

	current := newWeeklyRace(t)
	current.Status = models.RaceStatusDrawing
	past := newWeeklyRace(t)
	past.RaceStartsAt = raceWeekStart.Add(-14 * 24 * time.Hour)
	past.RaceEndsAt = raceWeekStart.Add(-7 * 24 * time.Hour)
	past.BettingStartsAt, past.BettingEndsAt = nil, nil
	past.Status = models.RaceStatusFinished

	m.RaceRepo.On("List", mock.Anything).Return([]*models.Race{current, past}, nil)
	m.RaceRepo.On("UpdateStatus", mock.Anything, current.ID, models.RaceStatusActive).Return(nil)

	active, err := newRaceServiceUnderTest(m, clock).ListRaces(context.Background(), models.RaceStatusActive)

	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)
	m.AssertAllExpectations(t)
}

func TestRaceService_ListRaces_UnknownStatus(t *testing.T) {
	m := NewTestMocks()

	_, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).ListRaces(context.Background(), "paused")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestRaceService_EnrollParticipant(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	race := newWeeklyRace(t)
	user := &models.User{ID: uuid.New(), Username: "bob"}
	clock := NewFixedClock(raceWeekStart.Add(-time.Hour))

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.UserRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	m.ParticipantRepo.On("GetByRaceAndUser", mock.Anything, race.ID, user.ID).Return(nil, nil)
	m.ParticipantRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.RaceParticipant) bool {
		return p.RaceID == race.ID && p.UserID == user.ID && p.StudyMinutes == 0 && !p.HasOdds()
	})).Return(nil)
	m.EventPublisher.On("Publish", mock.AnythingOfType("events.ParticipantEnrolledEvent")).Return()

	p, err := newRaceServiceUnderTest(m, clock).EnrollParticipant(context.Background(), race.ID, user.ID)

	require.NoError(t, err)
	assert.Equal(t, "bob", p.Username)
	assert.Equal(t, clock.Now(), p.EnrolledAt)
	m.AssertAllExpectations(t)
}

func TestRaceService_EnrollParticipant_Rejections(t *testing.T) {
	race := newWeeklyRace(t)
	user := &models.User{ID: uuid.New(), Username: "bob"}

	t.Run("finished race", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction(false)
		m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)

		_, err := newRaceServiceUnderTest(m, NewFixedClock(race.RaceEndsAt)).EnrollParticipant(context.Background(), race.ID, user.ID)
		assert.ErrorIs(t, err, ErrRaceFinished)
	})

	t.Run("unknown user", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction(false)
		m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
		m.UserRepo.On("GetByID", mock.Anything, user.ID).Return(nil, nil)

		_, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).EnrollParticipant(context.Background(), race.ID, user.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("already enrolled", func(t *testing.T) {
		m := NewTestMocks()
		m.ExpectTransaction(false)
		m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
		m.UserRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		m.ParticipantRepo.On("GetByRaceAndUser", mock.Anything, race.ID, user.ID).
			Return(models.NewRaceParticipant(race.ID, user.ID, raceWeekStart), nil)

		_, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).EnrollParticipant(context.Background(), race.ID, user.ID)
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
		m.ParticipantRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRaceService_Standings_CacheHit(t *testing.T) {
	m := NewTestMocks()
	raceID := uuid.New()
	cached := []*models.RaceParticipant{newParticipant(10, 0)}
	m.Cache.On("Get", mock.Anything, raceID).Return(cached, nil)

	got, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).Standings(context.Background(), raceID)

	require.NoError(t, err)
	assert.Equal(t, cached, got)
	m.Factory.AssertNotCalled(t, "Create")
}

func TestRaceService_Standings_MissRanksAndCaches(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	race := newWeeklyRace(t)

	second := newParticipant(90, 0)
	first := newParticipant(120, time.Hour)
	third := newParticipant(90, time.Hour)

	m.Cache.On("Get", mock.Anything, race.ID).Return(nil, errors.New("redis down"))
	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.ParticipantRepo.On("ListByRace", mock.Anything, race.ID).Return([]*models.RaceParticipant{third, second, first}, nil)
	m.Cache.On("Set", mock.Anything, race.ID, mock.Anything).Return(errors.New("redis down"))

	got, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).Standings(context.Background(), race.ID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{120, 90, 90}, []int64{got[0].StudyMinutes, got[1].StudyMinutes, got[2].StudyMinutes})
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Position, got[1].Position, got[2].Position})
	assert.Equal(t, second.ID, got[1].ID)
	m.AssertAllExpectations(t)
}

func TestRaceService_RefreshOdds(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	race := newWeeklyRace(t)
	clock := NewFixedClock(raceWeekStart.Add(-time.Hour))

	roster := []*models.RaceParticipant{
		newParticipant(50, 0),
		newParticipant(300, 0),
		newParticipant(100, 0),
		newParticipant(0, 0),
		newParticipant(200, 0),
	}

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.ParticipantRepo.On("ListByRace", mock.Anything, race.ID).Return(roster, nil)
	m.ParticipantRepo.On("UpdateStandings", mock.Anything, mock.MatchedBy(func(ranked []*models.RaceParticipant) bool {
		for i, p := range ranked {
			if p.Position != i+1 || ValidateOdds(p) != nil {
				return false
			}
		}
		return len(ranked) == 5
	})).Return(nil)
	m.EventPublisher.On("Publish", mock.AnythingOfType("events.OddsRefreshedEvent")).Return()
	m.Cache.On("Invalidate", mock.Anything, race.ID).Return(nil)

	ranked, err := newRaceServiceUnderTest(m, clock).RefreshOdds(context.Background(), race.ID)

	require.NoError(t, err)
	require.Len(t, ranked, 5)
	assert.Equal(t, int64(300), ranked[0].StudyMinutes)
	assert.True(t, decimal.RequireFromString("2.37").Equal(ranked[0].WinOdds.Decimal))
	assert.True(t, decimal.RequireFromString("14.25").Equal(ranked[4].WinOdds.Decimal))
	m.AssertAllExpectations(t)
}

func TestRaceService_RefreshOdds_EmptyRoster(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	race := newWeeklyRace(t)

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.ParticipantRepo.On("ListByRace", mock.Anything, race.ID).Return([]*models.RaceParticipant{}, nil)
	m.ParticipantRepo.On("UpdateStandings", mock.Anything, mock.Anything).Return(nil)
	m.EventPublisher.On("Publish", mock.AnythingOfType("events.OddsRefreshedEvent")).Return()
	m.Cache.On("Invalidate", mock.Anything, race.ID).Return(nil)

	ranked, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).RefreshOdds(context.Background(), race.ID)

	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRaceService_RefreshOdds_FinishedRace(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	race := newWeeklyRace(t)
	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)

	_, err := newRaceServiceUnderTest(m, NewFixedClock(race.RaceEndsAt)).RefreshOdds(context.Background(), race.ID)

	assert.ErrorIs(t, err, ErrRaceFinished)
	m.ParticipantRepo.AssertNotCalled(t, "UpdateStandings", mock.Anything, mock.Anything)
}

func TestRaceService_RefreshOdds_StoreFailureRollsBack(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	race := newWeeklyRace(t)

	m.RaceRepo.On("GetByID", mock.Anything, race.ID).Return(race, nil)
	m.ParticipantRepo.On("ListByRace", mock.Anything, race.ID).Return([]*models.RaceParticipant{newParticipant(10, 0)}, nil)
	m.ParticipantRepo.On("UpdateStandings", mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

	_, err := newRaceServiceUnderTest(m, NewFixedClock(raceWeekStart)).RefreshOdds(context.Background(), race.ID)

	assert.ErrorIs(t, err, ErrPersistence)
	m.UoW.AssertNotCalled(t, "Commit")
	m.Cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
