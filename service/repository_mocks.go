package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"studyrace/events"
	"studyrace/models"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) userResult(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.userResult(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	return m.userResult(m.Called(ctx, discordID))
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) AddStudyReward(ctx context.Context, id uuid.UUID, minutes, coins int64) (*models.User, error) {
	return m.userResult(m.Called(ctx, id, minutes, coins))
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, id uuid.UUID, amount int64) (*models.User, error) {
	return m.userResult(m.Called(ctx, id, amount))
}

func (m *MockUserRepository) UpdateGoal(ctx context.Context, id uuid.UUID, goalMinutes int64) (*models.User, error) {
	return m.userResult(m.Called(ctx, id, goalMinutes))
}

func (m *MockUserRepository) ResetPeriodMinutes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ListByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByStudyMinutes(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockStudySessionRepository is a mock implementation of StudySessionRepository
type MockStudySessionRepository struct {
	mock.Mock
}

func (m *MockStudySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockStudySessionRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StudySession, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudySession), args.Error(1)
}

// MockSubjectRepository is a mock implementation of SubjectRepository
type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) List(ctx context.Context) ([]*models.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) GetOrCreateByName(ctx context.Context, name string) (*models.Subject, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subject), args.Error(1)
}

func (m *MockSubjectRepository) ReplaceUserSubjects(ctx context.Context, userID uuid.UUID, subjectIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, subjectIDs)
	return args.Error(0)
}

// MockRaceRepository is a mock implementation of RaceRepository
type MockRaceRepository struct {
	mock.Mock
}

func (m *MockRaceRepository) Create(ctx context.Context, race *models.Race) error {
	args := m.Called(ctx, race)
	return args.Error(0)
}

func (m *MockRaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Race), args.Error(1)
}

func (m *MockRaceRepository) List(ctx context.Context) ([]*models.Race, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Race), args.Error(1)
}

func (m *MockRaceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RaceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockRaceParticipantRepository is a mock implementation of RaceParticipantRepository
type MockRaceParticipantRepository struct {
	mock.Mock
}

func (m *MockRaceParticipantRepository) Create(ctx context.Context, participant *models.RaceParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockRaceParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceParticipant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaceParticipant), args.Error(1)
}

func (m *MockRaceParticipantRepository) GetByRaceAndUser(ctx context.Context, raceID, userID uuid.UUID) (*models.RaceParticipant, error) {
	args := m.Called(ctx, raceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaceParticipant), args.Error(1)
}

func (m *MockRaceParticipantRepository) ListByRace(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceParticipant), args.Error(1)
}

func (m *MockRaceParticipantRepository) UpdateStandings(ctx context.Context, roster []*models.RaceParticipant) error {
	args := m.Called(ctx, roster)
	return args.Error(0)
}

func (m *MockRaceParticipantRepository) CreditStudyMinutes(ctx context.Context, userID uuid.UUID, at, now time.Time, minutes int64) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, at, now, minutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByBettor(ctx context.Context, bettorID uuid.UUID, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, bettorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) ListByRace(ctx context.Context, raceID uuid.UUID) ([]*models.Bet, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockStandingsCache is a mock implementation of StandingsCache
type MockStandingsCache struct {
	mock.Mock
}

func (m *MockStandingsCache) Get(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceParticipant), args.Error(1)
}

func (m *MockStandingsCache) Set(ctx context.Context, raceID uuid.UUID, standings []*models.RaceParticipant) error {
	args := m.Called(ctx, raceID, standings)
	return args.Error(0)
}

func (m *MockStandingsCache) Invalidate(ctx context.Context, raceID uuid.UUID) error {
	args := m.Called(ctx, raceID)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Begin, Commit and Rollback are recorded; repository getters return the mocks in Repos.
type MockUnitOfWork struct {
	mock.Mock
	Repos *TestMocks
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository { return m.Repos.UserRepo }

func (m *MockUnitOfWork) StudySessionRepository() StudySessionRepository {
	return m.Repos.StudySessionRepo
}

func (m *MockUnitOfWork) SubjectRepository() SubjectRepository { return m.Repos.SubjectRepo }

func (m *MockUnitOfWork) RaceRepository() RaceRepository { return m.Repos.RaceRepo }

func (m *MockUnitOfWork) RaceParticipantRepository() RaceParticipantRepository {
	return m.Repos.ParticipantRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository { return m.Repos.BetRepo }

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.Repos.BalanceHistoryRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher { return m.Repos.EventPublisher }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
