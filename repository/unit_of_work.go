package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studyrace/database"
	"studyrace/events"
	"studyrace/service"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	userRepo           service.UserRepository
	studySessionRepo   service.StudySessionRepository
	subjectRepo        service.SubjectRepository
	raceRepo           service.RaceRepository
	participantRepo    service.RaceParticipantRepository
	betRepo            service.BetRepository
	balanceHistoryRepo service.BalanceHistoryRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.studySessionRepo = newStudySessionRepositoryWithTx(tx)
	u.subjectRepo = newSubjectRepositoryWithTx(tx)
	u.raceRepo = newRaceRepositoryWithTx(tx)
	u.participantRepo = newRaceParticipantRepositoryWithTx(tx)
	u.betRepo = newBetRepositoryWithTx(tx)
	u.balanceHistoryRepo = newBalanceHistoryRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes the events queued during it
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Flush()

	return nil
}

// Rollback rolls back the transaction. No-op after Commit.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func mustBegin[T any](repo T, started bool) T {
	if !started {
		panic("unit of work not started - call Begin() first")
	}
	return repo
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	return mustBegin(u.userRepo, u.userRepo != nil)
}

func (u *unitOfWork) StudySessionRepository() service.StudySessionRepository {
	return mustBegin(u.studySessionRepo, u.studySessionRepo != nil)
}

func (u *unitOfWork) SubjectRepository() service.SubjectRepository {
	return mustBegin(u.subjectRepo, u.subjectRepo != nil)
}

func (u *unitOfWork) RaceRepository() service.RaceRepository {
	return mustBegin(u.raceRepo, u.raceRepo != nil)
}

func (u *unitOfWork) RaceParticipantRepository() service.RaceParticipantRepository {
	return mustBegin(u.participantRepo, u.participantRepo != nil)
}

func (u *unitOfWork) BetRepository() service.BetRepository {
	return mustBegin(u.betRepo, u.betRepo != nil)
}

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	return mustBegin(u.balanceHistoryRepo, u.balanceHistoryRepo != nil)
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
