package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered student and their economy state
type User struct {
	ID                 uuid.UUID `db:"id"`
	Username           string    `db:"username"`
	DiscordID          *int64    `db:"discord_id"`
	Balance            int64     `db:"balance"`
	TotalStudyMinutes  int64     `db:"total_study_minutes"`
	PeriodStudyMinutes int64     `db:"period_study_minutes"`
	PeriodGoalMinutes  int64     `db:"period_goal_minutes"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// GoalProgressPercent returns how much of the period goal has been studied, capped at 100
func (u *User) GoalProgressPercent() int {
	if u.PeriodGoalMinutes <= 0 {
		return 0
	}
	pct := u.PeriodStudyMinutes * 100 / u.PeriodGoalMinutes
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// GoalReached reports whether the current-period goal has been met
func (u *User) GoalReached() bool {
	return u.PeriodGoalMinutes > 0 && u.PeriodStudyMinutes >= u.PeriodGoalMinutes
}
