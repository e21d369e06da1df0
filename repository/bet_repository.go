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

const betColumns = `id, bettor_id, race_id, participant_id, bet_type, amount, odds, expected_payout, created_at`

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

func scanBet(row scanner) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.BettorID,
		&bet.RaceID,
		&bet.ParticipantID,
		&bet.Type,
		&bet.Amount,
		&bet.Odds,
		&bet.ExpectedPayout,
		&bet.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create inserts a bet. Bets are never updated after placement.
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (id, bettor_id, race_id, participant_id, bet_type, amount, odds, expected_payout, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.BettorID,
		bet.RaceID,
		bet.ParticipantID,
		bet.Type,
		bet.Amount,
		bet.Odds,
		bet.ExpectedPayout,
		bet.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet for user %s: %w", bet.BettorID, err)
	}
	return nil
}

// GetByID retrieves a bet by id
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	bet, err := scanBet(r.q.QueryRow(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", id, err)
	}
	return bet, nil
}

// ListByBettor returns the user's bets, newest first
func (r *BetRepository) ListByBettor(ctx context.Context, bettorID uuid.UUID, limit int) ([]*models.Bet, error) {
	return r.list(ctx, `SELECT `+betColumns+`
		FROM bets
		WHERE bettor_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, bettorID, limit)
}

// ListByRace returns every bet placed on a race, oldest first
func (r *BetRepository) ListByRace(ctx context.Context, raceID uuid.UUID) ([]*models.Bet, error) {
	return r.list(ctx, `SELECT `+betColumns+`
		FROM bets
		WHERE race_id = $1
		ORDER BY created_at, id
	`, raceID)
}

func (r *BetRepository) list(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	bets := []*models.Bet{}
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}
