package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"studyrace/models"
	"studyrace/service"
)

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Register(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) RegisterDiscordUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) Leaderboard(ctx context.Context, kind service.LeaderboardKind, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *mockUserService) BalanceHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

type mockStudyService struct{ mock.Mock }

func (m *mockStudyService) RecordSession(ctx context.Context, userID, subjectID uuid.UUID, durationMinutes int64, studiedAt time.Time) (*models.SessionResult, error) {
	args := m.Called(ctx, userID, subjectID, durationMinutes, studiedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionResult), args.Error(1)
}

func (m *mockStudyService) ListSessions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StudySession, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudySession), args.Error(1)
}

func (m *mockStudyService) TodaySessions(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudySession), args.Error(1)
}

func (m *mockStudyService) PeriodProgress(ctx context.Context, userID uuid.UUID) (*models.PeriodProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PeriodProgress), args.Error(1)
}

func (m *mockStudyService) UpdateGoal(ctx context.Context, userID uuid.UUID, goalMinutes int64) (*models.User, error) {
	args := m.Called(ctx, userID, goalMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStudyService) ResetPeriod(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockSubjectService struct{ mock.Mock }

func (m *mockSubjectService) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subject), args.Error(1)
}

func (m *mockSubjectService) ListUserSubjects(ctx context.Context, userID uuid.UUID) ([]*models.Subject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subject), args.Error(1)
}

func (m *mockSubjectService) ReplaceUserSubjects(ctx context.Context, userID uuid.UUID, names []string) ([]*models.Subject, error) {
	args := m.Called(ctx, userID, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subject), args.Error(1)
}

type mockRaceService struct{ mock.Mock }

func (m *mockRaceService) CreateRace(ctx context.Context, input models.RaceInput) (*models.Race, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Race), args.Error(1)
}

func (m *mockRaceService) GetRace(ctx context.Context, raceID uuid.UUID) (*models.Race, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Race), args.Error(1)
}

func (m *mockRaceService) ListRaces(ctx context.Context, status models.RaceStatus) ([]*models.Race, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Race), args.Error(1)
}

func (m *mockRaceService) EnrollParticipant(ctx context.Context, raceID, userID uuid.UUID) (*models.RaceParticipant, error) {
	args := m.Called(ctx, raceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaceParticipant), args.Error(1)
}

func (m *mockRaceService) Standings(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceParticipant), args.Error(1)
}

func (m *mockRaceService) RefreshOdds(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceParticipant), args.Error(1)
}

type mockBettingService struct{ mock.Mock }

func (m *mockBettingService) PlaceBet(ctx context.Context, bettorID, raceID, participantID uuid.UUID, betType models.BetType, amount int64) (*models.Bet, error) {
	args := m.Called(ctx, bettorID, raceID, participantID, betType, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockBettingService) ListBets(ctx context.Context, bettorID uuid.UUID, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, bettorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}
