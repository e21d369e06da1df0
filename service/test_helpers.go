package service

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// TestMocks holds all mock repositories for easy access
type TestMocks struct {
	UserRepo           *MockUserRepository
	StudySessionRepo   *MockStudySessionRepository
	SubjectRepo        *MockSubjectRepository
	RaceRepo           *MockRaceRepository
	ParticipantRepo    *MockRaceParticipantRepository
	BetRepo            *MockBetRepository
	BalanceHistoryRepo *MockBalanceHistoryRepository
	EventPublisher     *MockEventPublisher
	Cache              *MockStandingsCache

	UoW     *MockUnitOfWork
	Factory *MockUnitOfWorkFactory
}

// NewTestMocks creates a new set of mocks with a factory handing out one unit of work
func NewTestMocks() *TestMocks {
	m := &TestMocks{
		UserRepo:           new(MockUserRepository),
		StudySessionRepo:   new(MockStudySessionRepository),
		SubjectRepo:        new(MockSubjectRepository),
		RaceRepo:           new(MockRaceRepository),
		ParticipantRepo:    new(MockRaceParticipantRepository),
		BetRepo:            new(MockBetRepository),
		BalanceHistoryRepo: new(MockBalanceHistoryRepository),
		EventPublisher:     new(MockEventPublisher),
		Cache:              new(MockStandingsCache),
		Factory:            new(MockUnitOfWorkFactory),
	}
	m.UoW = &MockUnitOfWork{Repos: m}
	return m
}

// ExpectTransaction sets up Create, Begin and Rollback, plus Commit when commit is true
func (m *TestMocks) ExpectTransaction(commit bool) {
	m.Factory.On("Create").Return(m.UoW)
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Rollback").Return(nil)
	if commit {
		m.UoW.On("Commit").Return(nil)
	}
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.StudySessionRepo.AssertExpectations(t)
	m.SubjectRepo.AssertExpectations(t)
	m.RaceRepo.AssertExpectations(t)
	m.ParticipantRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Cache.AssertExpectations(t)
	m.UoW.AssertExpectations(t)
	m.Factory.AssertExpectations(t)
}
