package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyrace/database"
	"studyrace/models"
)

const participantColumns = `p.id, p.race_id, p.user_id, u.username, p.study_minutes,
	COALESCE(p.position, 0), p.win_odds, p.place_odds, p.enrolled_at`

// RaceParticipantRepository implements the RaceParticipantRepository interface
type RaceParticipantRepository struct {
	q queryable
}

// NewRaceParticipantRepository creates a new race participant repository
func NewRaceParticipantRepository(db *database.DB) *RaceParticipantRepository {
	return &RaceParticipantRepository{q: db.Pool}
}

func newRaceParticipantRepositoryWithTx(tx queryable) *RaceParticipantRepository {
	return &RaceParticipantRepository{q: tx}
}

func scanParticipant(row scanner) (*models.RaceParticipant, error) {
	var p models.RaceParticipant
	err := row.Scan(
		&p.ID,
		&p.RaceID,
		&p.UserID,
		&p.Username,
		&p.StudyMinutes,
		&p.Position,
		&p.WinOdds,
		&p.PlaceOdds,
		&p.EnrolledAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RaceParticipantRepository) getOne(ctx context.Context, desc, where string, args ...any) (*models.RaceParticipant, error) {
	query := `SELECT ` + participantColumns + `
		FROM race_participants p
		JOIN users u ON u.id = p.user_id
		WHERE ` + where

	p, err := scanParticipant(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", desc, err)
	}
	return p, nil
}

// Create enrolls a participant with no position or odds
func (r *RaceParticipantRepository) Create(ctx context.Context, p *models.RaceParticipant) error {
	query := `
		INSERT INTO race_participants (id, race_id, user_id, study_minutes, enrolled_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.Exec(ctx, query, p.ID, p.RaceID, p.UserID, p.StudyMinutes, p.EnrolledAt)
	if err != nil {
		return fmt.Errorf("failed to enroll user %s in race %s: %w", p.UserID, p.RaceID, err)
	}
	return nil
}

func (r *RaceParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceParticipant, error) {
	return r.getOne(ctx, "participant "+id.String(), `p.id = $1`, id)
}

func (r *RaceParticipantRepository) GetByRaceAndUser(ctx context.Context, raceID, userID uuid.UUID) (*models.RaceParticipant, error) {
	return r.getOne(ctx, "participant of race "+raceID.String(), `p.race_id = $1 AND p.user_id = $2`, raceID, userID)
}

// ListByRace returns the roster of a race in storage order; callers rank it
func (r *RaceParticipantRepository) ListByRace(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	query := `SELECT ` + participantColumns + `
		FROM race_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.race_id = $1
		ORDER BY p.study_minutes DESC, p.enrolled_at, p.id
	`

	rows, err := r.q.Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of race %s: %w", raceID, err)
	}
	defer rows.Close()

	roster := []*models.RaceParticipant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		roster = append(roster, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return roster, nil
}

// UpdateStandings persists positions and odds of every participant in one batch
func (r *RaceParticipantRepository) UpdateStandings(ctx context.Context, roster []*models.RaceParticipant) error {
	if len(roster) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range roster {
		batch.Queue(`
			UPDATE race_participants
			SET position = NULLIF($2, 0), win_odds = $3, place_odds = $4
			WHERE id = $1
		`, p.ID, p.Position, p.WinOdds, p.PlaceOdds)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for _, p := range roster {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("failed to update standing of participant %s: %w", p.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("participant %s not found", p.ID)
		}
	}
	return nil
}

// CreditStudyMinutes adds minutes to every enrollment of the user whose race window contains at.
// Races that ended by now are finished and never credited.
func (r *RaceParticipantRepository) CreditStudyMinutes(ctx context.Context, userID uuid.UUID, at, now time.Time, minutes int64) ([]uuid.UUID, error) {
	query := `
		UPDATE race_participants p
		SET study_minutes = p.study_minutes + $3
		FROM races r
		WHERE r.id = p.race_id
		  AND p.user_id = $1
		  AND r.race_starts_at <= $2
		  AND r.race_ends_at > $2
		  AND r.race_ends_at > $4
		RETURNING p.race_id
	`

	rows, err := r.q.Query(ctx, query, userID, at, minutes, now)
	if err != nil {
		return nil, fmt.Errorf("failed to credit study minutes for user %s: %w", userID, err)
	}

	raceIDs, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to collect credited races: %w", err)
	}
	return raceIDs, nil
}
