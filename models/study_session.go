package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CoinsPerMinute is the study reward rate
const CoinsPerMinute int64 = 1

// ErrNonPositiveDuration is returned when a session is built with a zero or negative duration
var ErrNonPositiveDuration = errors.New("duration must be a positive number of minutes")

// StudySession represents one completed timed study interval
type StudySession struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	SubjectID       uuid.UUID `db:"subject_id"`
	DurationMinutes int64     `db:"duration_minutes"`
	CoinsEarned     int64     `db:"coins_earned"`
	StudiedAt       time.Time `db:"studied_at"`
	CreatedAt       time.Time `db:"created_at"`
}

// NewStudySession builds a session with a fresh id and its coin reward
func NewStudySession(userID, subjectID uuid.UUID, durationMinutes int64, studiedAt time.Time) (*StudySession, error) {
	if durationMinutes <= 0 {
		return nil, ErrNonPositiveDuration
	}
	return &StudySession{
		ID:              uuid.New(),
		UserID:          userID,
		SubjectID:       subjectID,
		DurationMinutes: durationMinutes,
		CoinsEarned:     durationMinutes * CoinsPerMinute,
		StudiedAt:       studiedAt.UTC(),
	}, nil
}
