package models

import (
	"time"

	"github.com/google/uuid"
)

// LeaderboardEntry is one row of a user leaderboard
type LeaderboardEntry struct {
	Rank              int       `json:"rank"`
	UserID            uuid.UUID `json:"user_id"`
	Username          string    `json:"username"`
	Balance           int64     `json:"balance"`
	TotalStudyMinutes int64     `json:"total_study_minutes"`
}

// SessionResult is the outcome of recording a study session (returned to the user)
type SessionResult struct {
	Session         *StudySession
	User            *User
	CreditedRaceIDs []uuid.UUID
}

// PeriodProgress summarises the current study week of a user
type PeriodProgress struct {
	User          *User
	PeriodStart   time.Time
	PeriodEnd     time.Time
	StudyMinutes  int64
	GoalMinutes   int64
	Percent       int
	TodayMinutes  int64
	TodaySessions int
}

// RaceInput carries the fields of a race created by the scheduler
type RaceInput struct {
	Name            string     `json:"name"`
	RaceStartsAt    time.Time  `json:"race_starts_at"`
	RaceEndsAt      time.Time  `json:"race_ends_at"`
	BettingStartsAt *time.Time `json:"betting_starts_at,omitempty"`
	BettingEndsAt   *time.Time `json:"betting_ends_at,omitempty"`
	FirstPrize      int64      `json:"first_prize"`
	SecondPrize     int64      `json:"second_prize"`
	ThirdPrize      int64      `json:"third_prize"`
}
