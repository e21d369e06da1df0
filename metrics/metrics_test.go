package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrace/events"
	"studyrace/models"
)

func scrape(t *testing.T, c *Collectors) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCollectors_Observe(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.Observe(ctx, events.SessionRecordedEvent{UserID: uuid.New(), DurationMinutes: 45, CoinsEarned: 45})
	c.Observe(ctx, events.SessionRecordedEvent{UserID: uuid.New(), DurationMinutes: 15, CoinsEarned: 15})
	c.Observe(ctx, events.BetPlacedEvent{BetType: models.BetTypeWin, Amount: 200})
	c.Observe(ctx, events.BetPlacedEvent{BetType: models.BetTypeSupport, Amount: 100})
	c.Observe(ctx, events.BalanceChangeEvent{TransactionType: models.TransactionTypeBetStake})
	c.Observe(ctx, events.OddsRefreshedEvent{RaceID: uuid.New(), Participants: 3})

	body := scrape(t, c)
	assert.Contains(t, body, "studyrace_sessions_recorded_total 2")
	assert.Contains(t, body, "studyrace_study_minutes_total 60")
	assert.Contains(t, body, `studyrace_bets_placed_total{bet_type="win"} 1`)
	assert.Contains(t, body, `studyrace_coins_staked_total{bet_type="support"} 100`)
	assert.Contains(t, body, `studyrace_balance_changes_total{transaction_type="bet_stake"} 1`)
	assert.Contains(t, body, "studyrace_odds_refreshes_total 1")
}

func TestCollectors_RegisterOnBus(t *testing.T) {
	c := New()
	bus := events.NewBus()
	c.Register(bus)

	bus.Emit(context.Background(), events.PeriodResetEvent{UsersAffected: 4})

	assert.Eventually(t, func() bool {
		return strings.Contains(scrape(t, c), "studyrace_period_resets_total 1")
	}, time.Second, 10*time.Millisecond)
}
