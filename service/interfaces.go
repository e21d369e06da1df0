package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studyrace/events"
	"studyrace/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, nil if absent
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByIDForUpdate retrieves a user and locks the row for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username, nil if absent
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByDiscordID retrieves a user linked to a Discord account, nil if absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create inserts a new user
	Create(ctx context.Context, user *models.User) error

	// AddStudyReward adds minutes to the study totals and coins to the balance in one statement
	AddStudyReward(ctx context.Context, id uuid.UUID, minutes, coins int64) (*models.User, error)

	// DeductBalance subtracts amount only if the balance covers it.
	// Returns nil when the user is missing or the balance is insufficient.
	DeductBalance(ctx context.Context, id uuid.UUID, amount int64) (*models.User, error)

	// UpdateGoal sets the current-period goal
	UpdateGoal(ctx context.Context, id uuid.UUID, goalMinutes int64) (*models.User, error)

	// ResetPeriodMinutes zeroes every user's current-period minutes
	ResetPeriodMinutes(ctx context.Context) (int64, error)

	// ListByBalance returns users ordered by balance descending
	ListByBalance(ctx context.Context, limit int) ([]*models.User, error)

	// ListByStudyMinutes returns users ordered by total study minutes descending
	ListByStudyMinutes(ctx context.Context, limit int) ([]*models.User, error)
}

// StudySessionRepository defines the interface for study session data access
type StudySessionRepository interface {
	Create(ctx context.Context, session *models.StudySession) error

	// ListByUserBetween returns sessions with studied_at in [from, to), newest first
	ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StudySession, error)
}

// SubjectRepository defines the interface for the subject catalog
type SubjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subject, error)

	// GetOrCreateByName returns the subject with this name, creating it if needed
	GetOrCreateByName(ctx context.Context, name string) (*models.Subject, error)

	// ReplaceUserSubjects replaces the user's subject list
	ReplaceUserSubjects(ctx context.Context, userID uuid.UUID, subjectIDs []uuid.UUID) error
}

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error)

	// List returns all races ordered by race start, newest first
	List(ctx context.Context) ([]*models.Race, error)

	// UpdateStatus rewrites the stored status column
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RaceStatus) error
}

// RaceParticipantRepository defines the interface for race roster data access
type RaceParticipantRepository interface {
	Create(ctx context.Context, participant *models.RaceParticipant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RaceParticipant, error)
	GetByRaceAndUser(ctx context.Context, raceID, userID uuid.UUID) (*models.RaceParticipant, error)

	// ListByRace returns the roster of a race with usernames
	ListByRace(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error)

	// UpdateStandings persists positions and odds of the given participants
	UpdateStandings(ctx context.Context, roster []*models.RaceParticipant) error

	// CreditStudyMinutes adds minutes to every enrollment of the user whose race window contains at
	// and has not ended by now. Returns the ids of the credited races.
	CreditStudyMinutes(ctx context.Context, userID uuid.UUID, at, now time.Time, minutes int64) ([]uuid.UUID, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)

	// ListByBettor returns the user's bets, newest first
	ListByBettor(ctx context.Context, bettorID uuid.UUID, limit int) ([]*models.Bet, error)

	// ListByRace returns every bet placed on a race
	ListByRace(ctx context.Context, raceID uuid.UUID) ([]*models.Bet, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// StandingsCache stores ranked rosters between odds refreshes
type StandingsCache interface {
	// Get returns the cached standings, nil on a miss
	Get(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error)
	Set(ctx context.Context, raceID uuid.UUID, standings []*models.RaceParticipant) error
	Invalidate(ctx context.Context, raceID uuid.UUID) error
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	StudySessionRepository() StudySessionRepository
	SubjectRepository() SubjectRepository
	RaceRepository() RaceRepository
	RaceParticipantRepository() RaceParticipantRepository
	BetRepository() BetRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// LeaderboardKind selects the metric a leaderboard is ordered by
type LeaderboardKind string

const (
	LeaderboardByCoins LeaderboardKind = "coins"
	LeaderboardByStudy LeaderboardKind = "study"
)

// UserService defines the interface for registration and user reads
type UserService interface {
	// Register creates a user with the starting balance
	Register(ctx context.Context, username string) (*models.User, error)

	// RegisterDiscordUser returns the user linked to discordID, registering it on first use
	RegisterDiscordUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Leaderboard ranks users by coins or by total study minutes
	Leaderboard(ctx context.Context, kind LeaderboardKind, limit int) ([]*models.LeaderboardEntry, error)

	// BalanceHistory returns the user's ledger, newest first
	BalanceHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error)
}

// StudyService defines the interface of the study session recorder
type StudyService interface {
	// RecordSession persists a session and applies its reward atomically
	RecordSession(ctx context.Context, userID, subjectID uuid.UUID, durationMinutes int64, studiedAt time.Time) (*models.SessionResult, error)

	// ListSessions returns sessions in [from, to)
	ListSessions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StudySession, error)

	// TodaySessions returns the sessions of the current UTC day
	TodaySessions(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error)

	// PeriodProgress reports the current week and progress against the goal
	PeriodProgress(ctx context.Context, userID uuid.UUID) (*models.PeriodProgress, error)

	// UpdateGoal changes the current-period goal
	UpdateGoal(ctx context.Context, userID uuid.UUID, goalMinutes int64) (*models.User, error)

	// ResetPeriod zeroes the current-period minutes of every user
	ResetPeriod(ctx context.Context) (int64, error)
}

// SubjectService defines the interface of the subject catalog
type SubjectService interface {
	ListSubjects(ctx context.Context) ([]*models.Subject, error)
	ListUserSubjects(ctx context.Context, userID uuid.UUID) ([]*models.Subject, error)

	// ReplaceUserSubjects sets the user's subjects by name, creating unknown names
	ReplaceUserSubjects(ctx context.Context, userID uuid.UUID, names []string) ([]*models.Subject, error)
}

// RaceService defines the interface for race lifecycle, roster and odds operations
type RaceService interface {
	CreateRace(ctx context.Context, input models.RaceInput) (*models.Race, error)
	GetRace(ctx context.Context, raceID uuid.UUID) (*models.Race, error)

	// ListRaces returns races, filtered by clock-derived status when status is non-empty
	ListRaces(ctx context.Context, status models.RaceStatus) ([]*models.Race, error)

	EnrollParticipant(ctx context.Context, raceID, userID uuid.UUID) (*models.RaceParticipant, error)

	// Standings returns the ranked roster with the odds currently stored
	Standings(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error)

	// RefreshOdds ranks the roster, recomputes odds and persists both
	RefreshOdds(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error)
}

// BettingService defines the interface of the betting engine
type BettingService interface {
	PlaceBet(ctx context.Context, bettorID, raceID, participantID uuid.UUID, betType models.BetType, amount int64) (*models.Bet, error)

	// ListBets returns the user's bets, newest first
	ListBets(ctx context.Context, bettorID uuid.UUID, limit int) ([]*models.Bet, error)
}
