package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/events"
	"studyrace/models"
)

type raceService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
	odds       *OddsEngine
	cache      StandingsCache
}

// NewRaceService creates a new race service
func NewRaceService(uowFactory UnitOfWorkFactory, clock Clock, odds *OddsEngine, cache StandingsCache) RaceService {
	return &raceService{
		uowFactory: uowFactory,
		clock:      clock,
		odds:       odds,
		cache:      cache,
	}
}

// CreateRace validates and stores a race scheduled by an external process
func (s *raceService) CreateRace(ctx context.Context, input models.RaceInput) (*models.Race, error) {
	race, err := models.NewRace(
		input.Name,
		input.RaceStartsAt,
		input.RaceEndsAt,
		input.BettingStartsAt,
		input.BettingEndsAt,
		[3]int64{input.FirstPrize, input.SecondPrize, input.ThirdPrize},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRace, err)
	}
	race.Status = race.StatusAt(s.clock.Now())

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	if err := uow.RaceRepository().Create(ctx, race); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to create race: %w", err))
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}
	return race, nil
}

// GetRace returns a race with its status derived from the clock
func (s *raceService) GetRace(ctx context.Context, raceID uuid.UUID) (*models.Race, error) {
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

	s.syncStatuses(ctx, uow, race)
	return race, nil
}

// ListRaces returns races, filtered by clock-derived status when status is non-empty
func (s *raceService) ListRaces(ctx context.Context, status models.RaceStatus) ([]*models.Race, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown race status %q", ErrValidation, status)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer uow.Rollback()

	races, err := uow.RaceRepository().List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	s.syncStatuses(ctx, uow, races...)

	if status == "" {
		return races, nil
	}
	filtered := make([]*models.Race, 0, len(races))
	for _, race := range races {
		if race.Status == status {
			filtered = append(filtered, race)
		}
	}
	return filtered, nil
}

// syncStatuses replaces each stored status with the clock-derived one.
// Drifted rows are rewritten; a failed rewrite never fails the read.
func (s *raceService) syncStatuses(ctx context.Context, uow UnitOfWork, races ...*models.Race) {
	now := s.clock.Now()
	rewritten, failed := false, false

	for _, race := range races {
		if !race.StatusDrifted(now) {
			continue
		}
		derived := race.StatusAt(now)
		log.WithFields(log.Fields{
			"raceID":  race.ID,
			"stored":  race.Status,
			"derived": derived,
		}).Warn("Stored race status disagrees with clock")
		race.Status = derived

		// The transaction is unusable after a failed statement
		if failed {
			continue
		}
		if err := uow.RaceRepository().UpdateStatus(ctx, race.ID, derived); err != nil {
			log.WithError(err).WithField("raceID", race.ID).Error("Failed to rewrite race status")
			failed = true
			continue
		}
		rewritten = true
	}

	if !rewritten || failed {
		return
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit race status rewrite")
	}
}

// EnrollParticipant adds a user to the roster of a race that has not finished
func (s *raceService) EnrollParticipant(ctx context.Context, raceID, userID uuid.UUID) (*models.RaceParticipant, error) {
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
	if race.StatusAt(now) == models.RaceStatusFinished {
		return nil, ErrRaceFinished
	}

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	existing, err := uow.RaceParticipantRepository().GetByRaceAndUser(ctx, raceID, userID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if existing != nil {
		return nil, ErrAlreadyEnrolled
	}

	participant := models.NewRaceParticipant(raceID, userID, now)
	participant.Username = user.Username
	if err := uow.RaceParticipantRepository().Create(ctx, participant); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to enroll participant: %w", err))
	}

	uow.EventBus().Publish(events.ParticipantEnrolledEvent{
		RaceID:        raceID,
		ParticipantID: participant.ID,
		UserID:        userID,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}
	return participant, nil
}

// Standings returns the ranked roster with the odds currently stored.
// Positions are recomputed on every read; odds only change on RefreshOdds.
func (s *raceService) Standings(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	cached, err := s.cache.Get(ctx, raceID)
	if err != nil {
		log.WithError(err).WithField("raceID", raceID).Warn("Standings cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	var ranked []*models.RaceParticipant
	err = readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		race, err := uow.RaceRepository().GetByID(ctx, raceID)
		if err != nil {
			return persistenceError(err)
		}
		if race == nil {
			return ErrRaceNotFound
		}

		roster, err := uow.RaceParticipantRepository().ListByRace(ctx, raceID)
		if err != nil {
			return persistenceError(err)
		}
		ranked = Rank(roster)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, raceID, ranked); err != nil {
		log.WithError(err).WithField("raceID", raceID).Warn("Standings cache write failed")
	}
	return ranked, nil
}

// RefreshOdds ranks the roster, recomputes odds and persists both in one transaction
func (s *raceService) RefreshOdds(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
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
	if race.StatusAt(s.clock.Now()) == models.RaceStatusFinished {
		return nil, ErrRaceFinished
	}

	roster, err := uow.RaceParticipantRepository().ListByRace(ctx, raceID)
	if err != nil {
		return nil, persistenceError(err)
	}

	ranked, err := s.odds.ComputeOdds(Rank(roster))
	if err != nil {
		return nil, err
	}

	if err := uow.RaceParticipantRepository().UpdateStandings(ctx, ranked); err != nil {
		return nil, persistenceError(fmt.Errorf("failed to store standings: %w", err))
	}

	uow.EventBus().Publish(events.OddsRefreshedEvent{
		RaceID:       raceID,
		Participants: len(ranked),
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}

	if err := s.cache.Invalidate(ctx, raceID); err != nil {
		log.WithError(err).WithField("raceID", raceID).Warn("Standings cache invalidation failed")
	}

	log.WithFields(log.Fields{
		"raceID":       raceID,
		"participants": len(ranked),
	}).Info("Refreshed race odds")
	return ranked, nil
}
