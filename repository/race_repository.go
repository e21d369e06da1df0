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

const raceColumns = `id, name, status, race_starts_at, race_ends_at, betting_starts_at, betting_ends_at,
	total_pot, first_prize, second_prize, third_prize, created_at, updated_at`

// RaceRepository implements the RaceRepository interface
type RaceRepository struct {
	q queryable
}

// NewRaceRepository creates a new race repository
func NewRaceRepository(db *database.DB) *RaceRepository {
	return &RaceRepository{q: db.Pool}
}

func newRaceRepositoryWithTx(tx queryable) *RaceRepository {
	return &RaceRepository{q: tx}
}

func scanRace(row scanner) (*models.Race, error) {
	var race models.Race
	err := row.Scan(
		&race.ID,
		&race.Name,
		&race.Status,
		&race.RaceStartsAt,
		&race.RaceEndsAt,
		&race.BettingStartsAt,
		&race.BettingEndsAt,
		&race.TotalPot,
		&race.FirstPrize,
		&race.SecondPrize,
		&race.ThirdPrize,
		&race.CreatedAt,
		&race.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &race, nil
}

// Create inserts a race
func (r *RaceRepository) Create(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (id, name, status, race_starts_at, race_ends_at, betting_starts_at, betting_ends_at,
		                   total_pot, first_prize, second_prize, third_prize)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		race.ID,
		race.Name,
		race.Status,
		race.RaceStartsAt,
		race.RaceEndsAt,
		race.BettingStartsAt,
		race.BettingEndsAt,
		race.TotalPot,
		race.FirstPrize,
		race.SecondPrize,
		race.ThirdPrize,
	).Scan(&race.CreatedAt, &race.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create race %q: %w", race.Name, err)
	}
	return nil
}

// GetByID retrieves a race by id
func (r *RaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	race, err := scanRace(r.q.QueryRow(ctx, `SELECT `+raceColumns+` FROM races WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race %s: %w", id, err)
	}
	return race, nil
}

// List returns all races, latest start first
func (r *RaceRepository) List(ctx context.Context) ([]*models.Race, error) {
	rows, err := r.q.Query(ctx, `SELECT `+raceColumns+` FROM races ORDER BY race_starts_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}
	defer rows.Close()

	races := []*models.Race{}
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race: %w", err)
		}
		races = append(races, race)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate races: %w", err)
	}
	return races, nil
}

// UpdateStatus rewrites the stored status column
func (r *RaceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RaceStatus) error {
	result, err := r.q.Exec(ctx, `
		UPDATE races
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of race %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("race %s not found", id)
	}
	return nil
}
