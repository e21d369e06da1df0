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

const userColumns = `id, username, discord_id, balance, total_study_minutes,
	period_study_minutes, period_goal_minutes, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DiscordID,
		&user.Balance,
		&user.TotalStudyMinutes,
		&user.PeriodStudyMinutes,
		&user.PeriodGoalMinutes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// getOne runs a single-row user query; a missing row is reported as nil, nil
func (r *UserRepository) getOne(ctx context.Context, desc, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", desc, err)
	}
	return user, nil
}

func (r *UserRepository) list(ctx context.Context, desc, query string, args ...any) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", desc, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "get user "+id.String(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, "lock user "+id.String(),
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "get user by username",
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetByDiscordID retrieves a user by their Discord ID
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	return r.getOne(ctx, fmt.Sprintf("get user by discord ID %d", discordID),
		`SELECT `+userColumns+` FROM users WHERE discord_id = $1`, discordID)
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, discord_id, balance, period_goal_minutes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING total_study_minutes, period_study_minutes, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.DiscordID,
		user.Balance,
		user.PeriodGoalMinutes,
	).Scan(
		&user.TotalStudyMinutes,
		&user.PeriodStudyMinutes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}

// AddStudyReward adds minutes to both study totals and coins to the balance in one statement
func (r *UserRepository) AddStudyReward(ctx context.Context, id uuid.UUID, minutes, coins int64) (*models.User, error) {
	if minutes <= 0 || coins < 0 {
		return nil, fmt.Errorf("study reward must be positive")
	}

	return r.getOne(ctx, "apply study reward for user "+id.String(), `
		UPDATE users
		SET total_study_minutes = total_study_minutes + $2,
		    period_study_minutes = period_study_minutes + $2,
		    balance = balance + $3,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, minutes, coins)
}

// DeductBalance deducts from a user's balance only if the balance covers it.
// A nil user means the user is missing or the balance is insufficient.
func (r *UserRepository) DeductBalance(ctx context.Context, id uuid.UUID, amount int64) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	return r.getOne(ctx, "deduct balance for user "+id.String(), `
		UPDATE users
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING `+userColumns, id, amount)
}

// UpdateGoal sets the current-period goal
func (r *UserRepository) UpdateGoal(ctx context.Context, id uuid.UUID, goalMinutes int64) (*models.User, error) {
	return r.getOne(ctx, "update goal for user "+id.String(), `
		UPDATE users
		SET period_goal_minutes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, goalMinutes)
}

// ResetPeriodMinutes zeroes every user's current-period minutes
func (r *UserRepository) ResetPeriodMinutes(ctx context.Context) (int64, error) {
	result, err := r.q.Exec(ctx, `
		UPDATE users
		SET period_study_minutes = 0, updated_at = NOW()
		WHERE period_study_minutes <> 0
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset period minutes: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListByBalance returns users ordered by balance descending
func (r *UserRepository) ListByBalance(ctx context.Context, limit int) ([]*models.User, error) {
	return r.list(ctx, "list users by balance", `
		SELECT `+userColumns+`
		FROM users
		ORDER BY balance DESC, created_at, id
		LIMIT $1
	`, limit)
}

// ListByStudyMinutes returns users ordered by total study minutes descending
func (r *UserRepository) ListByStudyMinutes(ctx context.Context, limit int) ([]*models.User, error) {
	return r.list(ctx, "list users by study minutes", `
		SELECT `+userColumns+`
		FROM users
		ORDER BY total_study_minutes DESC, created_at, id
		LIMIT $1
	`, limit)
}
