package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"studyrace/models"
)

type subjectService struct {
	uowFactory UnitOfWorkFactory
}

// NewSubjectService creates a new subject catalog service
func NewSubjectService(uowFactory UnitOfWorkFactory) SubjectService {
	return &subjectService{uowFactory: uowFactory}
}

func (s *subjectService) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		subjects, err = uow.SubjectRepository().List(ctx)
		if err != nil {
			return persistenceError(err)
		}
		return nil
	})
	return subjects, err
}

func (s *subjectService) ListUserSubjects(ctx context.Context, userID uuid.UUID) ([]*models.Subject, error) {
	var subjects []*models.Subject
	err := readOnly(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		subjects, err = uow.SubjectRepository().ListByUser(ctx, userID)
		if err != nil {
			return persistenceError(err)
		}
		return nil
	})
	return subjects, err
}

// ReplaceUserSubjects sets the user's subjects by name in one transaction.
// Names are trimmed and deduplicated case-insensitively; unknown names are created.
func (s *subjectService) ReplaceUserSubjects(ctx context.Context, userID uuid.UUID, names []string) ([]*models.Subject, error) {
	cleaned := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, name)
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

	subjects := make([]*models.Subject, 0, len(cleaned))
	ids := make([]uuid.UUID, 0, len(cleaned))
	for _, name := range cleaned {
		subject, err := uow.SubjectRepository().GetOrCreateByName(ctx, name)
		if err != nil {
			return nil, persistenceError(err)
		}
		subjects = append(subjects, subject)
		ids = append(ids, subject.ID)
	}

	if err := uow.SubjectRepository().ReplaceUserSubjects(ctx, userID, ids); err != nil {
		return nil, persistenceError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError(err)
	}
	return subjects, nil
}
