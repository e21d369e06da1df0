package service

import "errors"

// Error categories. Every named error below wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation error")
	ErrPrecondition = errors.New("precondition failed")
	ErrIntegrity    = errors.New("integrity error")
	ErrNotFound     = errors.New("not found")
)

// Error is a named failure belonging to one category
type Error struct {
	category error
	msg      string
}

func newError(category error, msg string) *Error {
	return &Error{category: category, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the category so errors.Is matches both the name and the category
func (e *Error) Unwrap() error { return e.category }

// Category returns the category sentinel of the error
func (e *Error) Category() error { return e.category }

var (
	// Validation errors: bad input, rejected before any store access
	ErrZeroDuration        = newError(ErrValidation, "study duration must be positive")
	ErrBelowMinimumStake   = newError(ErrValidation, "bet amount is below the minimum stake")
	ErrInvalidBetType      = newError(ErrValidation, "bet type must be win, place or support")
	ErrInvalidRace         = newError(ErrValidation, "invalid race definition")
	ErrInvalidGoal         = newError(ErrValidation, "period goal must be positive")
	ErrInvalidUsername     = newError(ErrValidation, "username must not be empty")
	ErrFutureSession       = newError(ErrValidation, "study session cannot be dated in the future")
	ErrSessionBeforePeriod = newError(ErrValidation, "study session predates the current period")

	// Precondition errors: state-dependent rejection
	ErrInsufficientBalance = newError(ErrPrecondition, "insufficient balance")
	ErrBettingClosed       = newError(ErrPrecondition, "betting is closed for this race")
	ErrInvalidParticipant  = newError(ErrPrecondition, "participant is not in this race")
	ErrOddsNotAvailable    = newError(ErrPrecondition, "odds have not been computed for this participant")
	ErrAlreadyEnrolled     = newError(ErrPrecondition, "user is already enrolled in this race")
	ErrRaceFinished        = newError(ErrPrecondition, "race has already finished")
	ErrUsernameTaken       = newError(ErrPrecondition, "username is already taken")

	// Integrity errors: nothing was committed
	ErrPersistence = newError(ErrIntegrity, "failed to persist changes")
	ErrInvalidOdds = newError(ErrIntegrity, "computed odds violate win >= place >= 1.00")

	// Not-found errors
	ErrUserNotFound    = newError(ErrNotFound, "user not found")
	ErrRaceNotFound    = newError(ErrNotFound, "race not found")
	ErrSubjectNotFound = newError(ErrNotFound, "subject not found")
)

// persistenceError marks a store failure as ErrPersistence while keeping the driver error
func persistenceError(err error) error {
	return errors.Join(ErrPersistence, err)
}

// CategoryOf returns the category sentinel of err, or nil for uncategorised errors
func CategoryOf(err error) error {
	for _, c := range []error{ErrValidation, ErrPrecondition, ErrNotFound, ErrIntegrity} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
