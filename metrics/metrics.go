// Package metrics exposes Prometheus collectors fed from committed domain events.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyrace/events"
)

// Collectors holds every metric the service exports
type Collectors struct {
	registry *prometheus.Registry

	UsersCreated         prometheus.Counter
	SessionsRecorded     prometheus.Counter
	StudyMinutes         prometheus.Counter
	CoinsAwarded         prometheus.Counter
	ParticipantsEnrolled prometheus.Counter
	OddsRefreshes        prometheus.Counter
	BetsPlaced           *prometheus.CounterVec
	CoinsStaked          *prometheus.CounterVec
	PeriodResets         prometheus.Counter
	BalanceChanges       *prometheus.CounterVec
}

// New creates the collectors on a private registry
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_users_created_total",
			Help: "Users registered",
		}),
		SessionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_sessions_recorded_total",
			Help: "Study sessions recorded",
		}),
		StudyMinutes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_study_minutes_total",
			Help: "Minutes of study recorded",
		}),
		CoinsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_coins_awarded_total",
			Help: "Coins earned from study sessions",
		}),
		ParticipantsEnrolled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_participants_enrolled_total",
			Help: "Race enrollments",
		}),
		OddsRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_odds_refreshes_total",
			Help: "Odds recomputations",
		}),
		BetsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyrace_bets_placed_total",
			Help: "Bets placed by type",
		}, []string{"bet_type"}),
		CoinsStaked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyrace_coins_staked_total",
			Help: "Coins staked by bet type",
		}, []string{"bet_type"}),
		PeriodResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyrace_period_resets_total",
			Help: "Study period resets",
		}),
		BalanceChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyrace_balance_changes_total",
			Help: "Ledger entries by transaction type",
		}, []string{"transaction_type"}),
	}

	c.registry.MustRegister(
		c.UsersCreated,
		c.SessionsRecorded,
		c.StudyMinutes,
		c.CoinsAwarded,
		c.ParticipantsEnrolled,
		c.OddsRefreshes,
		c.BetsPlaced,
		c.CoinsStaked,
		c.PeriodResets,
		c.BalanceChanges,
		prometheus.NewGoCollector(),
	)
	return c
}

// Register subscribes the collectors to the event bus
func (c *Collectors) Register(bus *events.Bus) {
	bus.SubscribeAll(c.Observe)
}

// Observe updates the collectors for one event
func (c *Collectors) Observe(_ context.Context, e events.Event) {
	switch ev := e.(type) {
	case events.UserCreatedEvent:
		c.UsersCreated.Inc()
	case events.SessionRecordedEvent:
		c.SessionsRecorded.Inc()
		c.StudyMinutes.Add(float64(ev.DurationMinutes))
		c.CoinsAwarded.Add(float64(ev.CoinsEarned))
	case events.ParticipantEnrolledEvent:
		c.ParticipantsEnrolled.Inc()
	case events.OddsRefreshedEvent:
		c.OddsRefreshes.Inc()
	case events.BetPlacedEvent:
		c.BetsPlaced.WithLabelValues(string(ev.BetType)).Inc()
		c.CoinsStaked.WithLabelValues(string(ev.BetType)).Add(float64(ev.Amount))
	case events.PeriodResetEvent:
		c.PeriodResets.Inc()
	case events.BalanceChangeEvent:
		c.BalanceChanges.WithLabelValues(string(ev.TransactionType)).Inc()
	}
}

// Handler serves the registry in the Prometheus text format
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
