package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyrace/database"
	"studyrace/models"
)

// SubjectRepository implements the SubjectRepository interface
type SubjectRepository struct {
	q queryable
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *database.DB) *SubjectRepository {
	return &SubjectRepository{q: db.Pool}
}

func newSubjectRepositoryWithTx(tx queryable) *SubjectRepository {
	return &SubjectRepository{q: tx}
}

func (r *SubjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subject, error) {
	var s models.Subject
	err := r.q.QueryRow(ctx, `SELECT id, name, created_at FROM subjects WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject %s: %w", id, err)
	}
	return &s, nil
}

func (r *SubjectRepository) List(ctx context.Context) ([]*models.Subject, error) {
	return r.list(ctx, `SELECT id, name, created_at FROM subjects ORDER BY name`)
}

func (r *SubjectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subject, error) {
	return r.list(ctx, `
		SELECT s.id, s.name, s.created_at
		FROM subjects s
		JOIN user_subjects us ON us.subject_id = s.id
		WHERE us.user_id = $1
		ORDER BY s.name
	`, userID)
}

func (r *SubjectRepository) list(ctx context.Context, query string, args ...any) ([]*models.Subject, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subjects: %w", err)
	}
	return subjects, nil
}

// GetOrCreateByName returns the subject whose name matches case-insensitively,
// creating it when none exists. The stored spelling of an existing subject wins.
func (r *SubjectRepository) GetOrCreateByName(ctx context.Context, name string) (*models.Subject, error) {
	query := `
		INSERT INTO subjects (id, name)
		VALUES ($1, $2)
		ON CONFLICT (LOWER(name)) DO UPDATE SET name = subjects.name
		RETURNING id, name, created_at
	`

	var s models.Subject
	err := r.q.QueryRow(ctx, query, uuid.New(), name).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create subject %q: %w", name, err)
	}
	return &s, nil
}

// ReplaceUserSubjects replaces the user's subject list
func (r *SubjectRepository) ReplaceUserSubjects(ctx context.Context, userID uuid.UUID, subjectIDs []uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_subjects WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear subjects for user %s: %w", userID, err)
	}
	if len(subjectIDs) == 0 {
		return nil
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO user_subjects (user_id, subject_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, userID, subjectIDs)
	if err != nil {
		return fmt.Errorf("failed to set subjects for user %s: %w", userID, err)
	}
	return nil
}
