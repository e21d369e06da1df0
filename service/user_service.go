package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studyrace/config"
	"studyrace/events"
	"studyrace/models"
)

const defaultLeaderboardSize = 10

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// readOnly runs fn inside a unit of work that is always rolled back
func readOnly(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	return fn(uow)
}

// Register creates a user with the starting balance
func (s *userService) Register(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError(err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	user, err := s.createUser(ctx, uow, username, nil)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}
	return user, nil
}

// RegisterDiscordUser returns the user linked to discordID, registering it on first use.
// A taken username gets the Discord id appended.
func (s *userService) RegisterDiscordUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if user != nil {
		return user, nil
	}

	taken, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError(err)
	}
	if taken != nil {
		username = fmt.Sprintf("%s-%d", username, discordID)
	}

	user, err = s.createUser(ctx, uow, username, &discordID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}
	return user, nil
}

func (s *userService) createUser(ctx context.Context, uow UnitOfWork, username string, discordID *int64) (*models.User, error) {
	user := &models.User{
		ID:                uuid.New(),
		Username:          username,
		DiscordID:         discordID,
		Balance:           s.config.StartingBalance,
		PeriodGoalMinutes: s.config.DefaultPeriodGoalMinutes,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to create user: %w", err))
	}

	history := &models.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   0,
		BalanceAfter:    user.Balance,
		ChangeAmount:    user.Balance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, persistenceError(err)
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:         user.ID,
		Username:       username,
		DiscordID:      discordID,
		InitialBalance: user.Balance,
	})
	return user, nil
}

// GetUser retrieves a user by id
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user *models.User
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		user, err = uow.UserRepository().GetByID(ctx, id)
		if err != nil {
			return persistenceError(err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		return nil
	})
	return user, err
}

// GetByDiscordID retrieves the user linked to a Discord account
func (s *userService) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	var user *models.User
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		user, err = uow.UserRepository().GetByDiscordID(ctx, discordID)
		if err != nil {
			return persistenceError(err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		return nil
	})
	return user, err
}

// Leaderboard ranks users by coins or by total study minutes
func (s *userService) Leaderboard(ctx context.Context, kind LeaderboardKind, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}

	var entries []*models.LeaderboardEntry
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		switch kind {
		case LeaderboardByCoins:
			users, err := uow.UserRepository().ListByBalance(ctx, limit)
			if err != nil {
				return persistenceError(err)
			}
			entries = rankUsers(users, func(u *models.User) int64 { return u.Balance })
		case LeaderboardByStudy:
			users, err := uow.UserRepository().ListByStudyMinutes(ctx, limit)
			if err != nil {
				return persistenceError(err)
			}
			entries = rankUsers(users, func(u *models.User) int64 { return u.TotalStudyMinutes })
		default:
			return fmt.Errorf("%w: unknown leaderboard %q", ErrValidation, kind)
		}
		return nil
	})
	return entries, err
}

// BalanceHistory returns the user's ledger, newest first
func (s *userService) BalanceHistory(ctx context.Context, userID uuid.UUID, limit int) ([]*models.BalanceHistory, error) {
	if limit <= 0 {
		limit = 50
	}

	var history []*models.BalanceHistory
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		user, err := uow.UserRepository().GetByID(ctx, userID)
		if err != nil {
			return persistenceError(err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		history, err = uow.BalanceHistoryRepository().GetByUser(ctx, userID, limit)
		if err != nil {
			return persistenceError(err)
		}
		return nil
	})
	return history, err
}
