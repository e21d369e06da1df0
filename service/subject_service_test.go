package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studyrace/models"
)

func TestSubjectService_ReplaceUserSubjects_DedupesNames(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	user := &models.User{ID: uuid.New()}
	math := &models.Subject{ID: uuid.New(), Name: "Math"}
	chem := &models.Subject{ID: uuid.New(), Name: "Chemistry"}

	m.UserRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	m.SubjectRepo.On("GetOrCreateByName", mock.Anything, "Math").Return(math, nil).Once()
	m.SubjectRepo.On("GetOrCreateByName", mock.Anything, "Chemistry").Return(chem, nil).Once()
	m.SubjectRepo.On("ReplaceUserSubjects", mock.Anything, user.ID, []uuid.UUID{math.ID, chem.ID}).Return(nil)

	got, err := NewSubjectService(m.Factory).ReplaceUserSubjects(context.Background(), user.ID,
		[]string{" Math ", "math", "", "Chemistry", "MATH"})

	require.NoError(t, err)
	assert.Equal(t, []*models.Subject{math, chem}, got)
	m.AssertAllExpectations(t)
}

func TestSubjectService_ReplaceUserSubjects_EmptyListClears(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(true)
	user := &models.User{ID: uuid.New()}

	m.UserRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	m.SubjectRepo.On("ReplaceUserSubjects", mock.Anything, user.ID, []uuid.UUID{}).Return(nil)

	got, err := NewSubjectService(m.Factory).ReplaceUserSubjects(context.Background(), user.ID, nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSubjectService_ReplaceUserSubjects_UnknownUser(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	id := uuid.New()
	m.UserRepo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := NewSubjectService(m.Factory).ReplaceUserSubjects(context.Background(), id, []string{"Art"})

	assert.ErrorIs(t, err, ErrUserNotFound)
	m.SubjectRepo.AssertNotCalled(t, "GetOrCreateByName", mock.Anything, mock.Anything)
}

func TestSubjectService_ListSubjects(t *testing.T) {
	m := NewTestMocks()
	m.ExpectTransaction(false)
	subjects := []*models.Subject{{ID: uuid.New(), Name: "Biology"}}
	m.SubjectRepo.On("List", mock.Anything).Return(subjects, nil)

	got, err := NewSubjectService(m.Factory).ListSubjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, subjects, got)
}
