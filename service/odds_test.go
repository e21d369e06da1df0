package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrace/config"
	"studyrace/models"
)

func requireOdds(t *testing.T, p *models.RaceParticipant, win, place string) {
	t.Helper()
	require.True(t, p.HasOdds())
	assert.True(t, decimal.RequireFromString(win).Equal(p.WinOdds.Decimal), "win odds: want %s, got %s", win, p.WinOdds.Decimal)
	assert.True(t, decimal.RequireFromString(place).Equal(p.PlaceOdds.Decimal), "place odds: want %s, got %s", place, p.PlaceOdds.Decimal)
}

func TestOddsEngine_ComputeOdds_KnownRoster(t *testing.T) {
	engine := NewOddsEngine(config.NewTestConfig())

	roster := []*models.RaceParticipant{
		newParticipant(300, 0),
		newParticipant(200, 0),
		newParticipant(100, 0),
		newParticipant(50, 0),
		newParticipant(0, 0),
	}

	out, err := engine.ComputeOdds(roster)
	require.NoError(t, err)
	require.Len(t, out, 5)

	// strengths 360, 260, 160, 110, 60 out of 950 with a 10% margin
	requireOdds(t, roster[0], "2.37", "1.00")
	requireOdds(t, roster[1], "3.28", "1.09")
	requireOdds(t, roster[2], "5.34", "1.78")
	requireOdds(t, roster[3], "7.77", "2.59")
	requireOdds(t, roster[4], "14.25", "4.75")
}

func TestOddsEngine_ComputeOdds_SingleParticipantClampsToOne(t *testing.T) {
	engine := NewOddsEngine(config.NewTestConfig())
	solo := newParticipant(500, 0)

	_, err := engine.ComputeOdds([]*models.RaceParticipant{solo})
	require.NoError(t, err)
	requireOdds(t, solo, "1.00", "1.00")
}

func TestOddsEngine_ComputeOdds_ClampsToMax(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OddsPriorMinutes = 1
	engine := NewOddsEngine(cfg)

	favourite := newParticipant(10000, 0)
	outsider := newParticipant(0, 0)

	_, err := engine.ComputeOdds([]*models.RaceParticipant{favourite, outsider})
	require.NoError(t, err)
	requireOdds(t, outsider, "99.99", "99.99")
	requireOdds(t, favourite, "1.00", "1.00")
}

func TestOddsEngine_ComputeOdds_EmptyRoster(t *testing.T) {
	engine := NewOddsEngine(config.NewTestConfig())
	out, err := engine.ComputeOdds(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOddsEngine_WinNeverBelowPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	engine := NewOddsEngine(config.NewTestConfig())

	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(12)
		roster := make([]*models.RaceParticipant, n)
		for i := range roster {
			roster[i] = newParticipant(int64(rng.Intn(2000)), time.Duration(i)*time.Minute)
		}

		_, err := engine.ComputeOdds(Rank(roster))
		require.NoError(t, err)

		for _, p := range roster {
			assert.True(t, p.WinOdds.Decimal.GreaterThanOrEqual(p.PlaceOdds.Decimal))
			assert.True(t, p.PlaceOdds.Decimal.GreaterThanOrEqual(decimal.NewFromInt(1)))
			assert.True(t, p.WinOdds.Decimal.LessThanOrEqual(decimal.RequireFromString("99.99")))
		}
	}
}

func TestOddsEngine_LeaderHasShortestOdds(t *testing.T) {
	engine := NewOddsEngine(config.NewTestConfig())
	roster := Rank([]*models.RaceParticipant{
		newParticipant(45, 0),
		newParticipant(240, 0),
		newParticipant(120, 0),
	})

	_, err := engine.ComputeOdds(roster)
	require.NoError(t, err)

	for i := 1; i < len(roster); i++ {
		assert.True(t, roster[i-1].WinOdds.Decimal.LessThanOrEqual(roster[i].WinOdds.Decimal))
	}
}

func TestValidateOdds(t *testing.T) {
	p := newParticipant(0, 0)
	assert.ErrorIs(t, ValidateOdds(p), ErrInvalidOdds)

	p.WinOdds = decimal.NewNullDecimal(decimal.RequireFromString("1.50"))
	p.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("2.00"))
	assert.ErrorIs(t, ValidateOdds(p), ErrInvalidOdds)

	p.WinOdds = decimal.NewNullDecimal(decimal.RequireFromString("0.80"))
	p.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("0.50"))
	assert.ErrorIs(t, ValidateOdds(p), ErrInvalidOdds)

	p.WinOdds = decimal.NewNullDecimal(decimal.RequireFromString("2.00"))
	p.PlaceOdds = decimal.NewNullDecimal(decimal.RequireFromString("2.00"))
	assert.NoError(t, ValidateOdds(p))
}
