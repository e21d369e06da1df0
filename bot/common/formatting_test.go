package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"studyrace/service"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-2500, "-2,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBalance(tt.in), "FormatBalance(%d)", tt.in)
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "1h 00m", FormatMinutes(60))
	assert.Equal(t, "2h 05m", FormatMinutes(125))
}

func TestFormatOdds(t *testing.T) {
	assert.Equal(t, "-", FormatOdds(decimal.NullDecimal{}))
	assert.Equal(t, "2.50x", FormatOdds(decimal.NewNullDecimal(decimal.RequireFromString("2.5"))))
}

func TestMedalAndProgressBar(t *testing.T) {
	assert.Equal(t, "🥇", Medal(1))
	assert.Equal(t, "🥉", Medal(3))
	assert.Equal(t, "#4", Medal(4))

	assert.Equal(t, "░░░░░░░░░░", ProgressBar(0))
	assert.Equal(t, "████░░░░░░", ProgressBar(45))
	assert.Equal(t, "██████████", ProgressBar(140))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "You don't have enough coins for that.", UserMessage(service.ErrInsufficientBalance))
	assert.Equal(t, "Betting is closed for this race.", UserMessage(fmt.Errorf("place bet: %w", service.ErrBettingClosed)))
	assert.Equal(t, "Race not found.", UserMessage(service.ErrRaceNotFound))
	assert.Equal(t, "Sessions from before this week can't be logged.", UserMessage(service.ErrSessionBeforePeriod))

	// store failures never leak the driver error
	msg := UserMessage(errors.Join(service.ErrPersistence, errors.New("dial tcp 10.0.0.3:5432")))
	assert.Equal(t, "Something went wrong. Please try again.", msg)

	assert.Contains(t, UserMessage(fmt.Errorf("%w: unknown leaderboard", service.ErrValidation)), "unknown leaderboard")
}
