package common

import (
	"errors"

	"studyrace/service"
)

var userMessages = []struct {
	err error
	msg string
}{
	{service.ErrInsufficientBalance, "You don't have enough coins for that."},
	{service.ErrBelowMinimumStake, "That stake is below the minimum bet."},
	{service.ErrBettingClosed, "Betting is closed for this race."},
	{service.ErrInvalidParticipant, "That player isn't running in this race."},
	{service.ErrOddsNotAvailable, "Odds haven't been posted for that player yet."},
	{service.ErrInvalidBetType, "Bet type must be win, place or support."},
	{service.ErrAlreadyEnrolled, "You're already in this race."},
	{service.ErrRaceFinished, "That race has already finished."},
	{service.ErrRaceNotFound, "Race not found."},
	{service.ErrSubjectNotFound, "Subject not found."},
	{service.ErrUserNotFound, "That player hasn't studied with us yet."},
	{service.ErrZeroDuration, "Study time must be at least one minute."},
	{service.ErrFutureSession, "You can't log a session that hasn't happened yet."},
	{service.ErrSessionBeforePeriod, "Sessions from before this week can't be logged."},
	{service.ErrInvalidGoal, "Your goal must be at least one minute."},
}

// UserMessage turns a service error into text safe to show in Discord
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}

	switch service.CategoryOf(err) {
	case service.ErrValidation:
		return "That request isn't valid: " + err.Error()
	case service.ErrNotFound:
		return "Not found."
	case service.ErrPrecondition:
		return "That can't be done right now."
	}
	return "Something went wrong. Please try again."
}
