package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/config"
	"studyrace/events"
	"studyrace/models"
)

// studyService implements the StudyService interface
type studyService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	config     *config.Config
}

// NewStudyService creates a new study session recorder
func NewStudyService(uowFactory UnitOfWorkFactory, clock Clock, cfg *config.Config) StudyService {
	return &studyService{
		uowFactory: uowFactory,
		clock:      clock,
		config:     cfg,
	}
}

// RecordSession persists a session and applies its reward atomically.
// The session row, the user totals, the balance ledger entry and the race
// credits commit together or not at all. studiedAt must fall inside the
// current period and not after now; only races still running are credited.
func (s *studyService) RecordSession(ctx context.Context, userID, subjectID uuid.UUID, durationMinutes int64, studiedAt time.Time) (*models.SessionResult, error) {
	session, err := models.NewStudySession(userID, subjectID, durationMinutes, studiedAt)
	if errors.Is(err, models.ErrNonPositiveDuration) {
		return nil, ErrZeroDuration
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := s.clock.Now()
	if session.StudiedAt.After(now) {
		return nil, ErrFutureSession
	}
	if periodStart, _ := WeekBounds(now, s.config.WeekStart); session.StudiedAt.Before(periodStart) {
		return nil, ErrSessionBeforePeriod
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	subject, err := uow.SubjectRepository().GetByID(ctx, subjectID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}

	if err := uow.StudySessionRepository().Create(ctx, session); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to create study session: %w", err))
	}

	updated, err := uow.UserRepository().AddStudyReward(ctx, userID, session.DurationMinutes, session.CoinsEarned)
	if err != nil {
		return nil, persistenceError(fmt.Errorf("failed to apply study reward: %w", err))
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	raceIDs, err := uow.RaceParticipantRepository().CreditStudyMinutes(ctx, userID, session.StudiedAt, now, session.DurationMinutes)
	if err != nil {
		return nil, persistenceError(fmt.Errorf("failed to credit race minutes: %w", err))
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   updated.Balance - session.CoinsEarned,
		BalanceAfter:    updated.Balance,
		ChangeAmount:    session.CoinsEarned,
		TransactionType: models.TransactionTypeStudyReward,
		TransactionMetadata: map[string]any{
			"subject":          subject.Name,
			"duration_minutes": session.DurationMinutes,
		},
		RelatedID:   &session.ID,
		RelatedType: relatedRef(models.RelatedTypeStudySession),
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, persistenceError(err)
	}

	uow.EventBus().Publish(events.SessionRecordedEvent{
		UserID:          userID,
		SessionID:       session.ID,
		SubjectID:       subjectID,
		DurationMinutes: session.DurationMinutes,
		CoinsEarned:     session.CoinsEarned,
		CreditedRaceIDs: raceIDs,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"minutes": session.DurationMinutes,
		"races":   len(raceIDs),
		"balance": updated.Balance,
	}).Info("Recorded study session")

	return &models.SessionResult{
		Session:         session,
		User:            updated,
		CreditedRaceIDs: raceIDs,
	}, nil
}

// ListSessions returns sessions in [from, to)
func (s *studyService) ListSessions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StudySession, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: range end must be after its start", ErrValidation)
	}

	var sessions []*models.StudySession
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		sessions, err = uow.StudySessionRepository().ListByUserBetween(ctx, userID, from, to)
		if err != nil {
			return persistenceError(err)
		}
		return nil
	})
	return sessions, err
}

// TodaySessions returns the sessions of the current UTC day
func (s *studyService) TodaySessions(ctx context.Context, userID uuid.UUID) ([]*models.StudySession, error) {
	from, to := DayBounds(s.clock.Now())
	return s.ListSessions(ctx, userID, from, to)
}

// PeriodProgress reports the current week and progress against the goal
func (s *studyService) PeriodProgress(ctx context.Context, userID uuid.UUID) (*models.PeriodProgress, error) {
	now := s.clock.Now()
	weekStart, weekEnd := WeekBounds(now, s.config.WeekStart)
	dayStart, dayEnd := DayBounds(now)

	var progress *models.PeriodProgress
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		user, err := uow.UserRepository().GetByID(ctx, userID)
		if err != nil {
			return persistenceError(err)
		}
		if user == nil {
			return ErrUserNotFound
		}

		today, err := uow.StudySessionRepository().ListByUserBetween(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return persistenceError(err)
		}
		var todayMinutes int64
		for _, session := range today {
			todayMinutes += session.DurationMinutes
		}

		progress = &models.PeriodProgress{
			User:          user,
			PeriodStart:   weekStart,
			PeriodEnd:     weekEnd,
			StudyMinutes:  user.PeriodStudyMinutes,
			GoalMinutes:   user.PeriodGoalMinutes,
			Percent:       user.GoalProgressPercent(),
			TodayMinutes:  todayMinutes,
			TodaySessions: len(today),
		}
		return nil
	})
	return progress, err
}

// UpdateGoal changes the current-period goal
func (s *studyService) UpdateGoal(ctx context.Context, userID uuid.UUID, goalMinutes int64) (*models.User, error) {
	if goalMinutes <= 0 {
		return nil, ErrInvalidGoal
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().UpdateGoal(ctx, userID, goalMinutes)
	if err != nil {
		return nil, persistenceError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}
	return user, nil
}

// ResetPeriod zeroes the current-period minutes of every user.
// Run by an external scheduler at the week boundary.
func (s *studyService) ResetPeriod(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	affected, err := uow.UserRepository().ResetPeriodMinutes(ctx)
	if err != nil {
		return 0, persistenceError(err)
	}

	uow.EventBus().Publish(events.PeriodResetEvent{UsersAffected: affected})

	if err := uow.Commit(); err != nil {
		return 0, persistenceError(err)
	}

	log.WithField("usersAffected", affected).Info("Reset study period")
	return affected, nil
}
