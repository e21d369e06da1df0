package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studyrace/database"
	"studyrace/models"
)

// StudySessionRepository implements the StudySessionRepository interface
type StudySessionRepository struct {
	q queryable
}

// NewStudySessionRepository creates a new study session repository
func NewStudySessionRepository(db *database.DB) *StudySessionRepository {
	return &StudySessionRepository{q: db.Pool}
}

func newStudySessionRepositoryWithTx(tx queryable) *StudySessionRepository {
	return &StudySessionRepository{q: tx}
}

// Create inserts a session. The row is append-only.
func (r *StudySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (id, user_id, subject_id, duration_minutes, coins_earned, studied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		session.SubjectID,
		session.DurationMinutes,
		session.CoinsEarned,
		session.StudiedAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create study session for user %s: %w", session.UserID, err)
	}
	return nil
}

// ListByUserBetween returns sessions with studied_at in [from, to), newest first
func (r *StudySessionRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.StudySession, error) {
	query := `
		SELECT id, user_id, subject_id, duration_minutes, coins_earned, studied_at, created_at
		FROM study_sessions
		WHERE user_id = $1 AND studied_at >= $2 AND studied_at < $3
		ORDER BY studied_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	sessions := []*models.StudySession{}
	for rows.Next() {
		var s models.StudySession
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.SubjectID,
			&s.DurationMinutes,
			&s.CoinsEarned,
			&s.StudiedAt,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}
	return sessions, nil
}
