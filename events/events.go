package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeUserCreated         EventType = "user_created"
	EventTypeSessionRecorded     EventType = "session_recorded"
	EventTypeParticipantEnrolled EventType = "participant_enrolled"
	EventTypeOddsRefreshed       EventType = "odds_refreshed"
	EventTypeBetPlaced           EventType = "bet_placed"
	EventTypePeriodReset         EventType = "period_reset"
)

// AllEventTypes lists every event type emitted by the services
var AllEventTypes = []EventType{
	EventTypeBalanceChange,
	EventTypeUserCreated,
	EventTypeSessionRecorded,
	EventTypeParticipantEnrolled,
	EventTypeOddsRefreshed,
	EventTypeBetPlaced,
	EventTypePeriodReset,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          uuid.UUID              `json:"user_id"`
	OldBalance      int64                  `json:"old_balance"`
	NewBalance      int64                  `json:"new_balance"`
	TransactionType models.TransactionType `json:"transaction_type"`
	ChangeAmount    int64                  `json:"change_amount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user registration
type UserCreatedEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	DiscordID      *int64    `json:"discord_id,omitempty"`
	InitialBalance int64     `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// SessionRecordedEvent represents a committed study session
type SessionRecordedEvent struct {
	UserID          uuid.UUID   `json:"user_id"`
	SessionID       uuid.UUID   `json:"session_id"`
	SubjectID       uuid.UUID   `json:"subject_id"`
	DurationMinutes int64       `json:"duration_minutes"`
	CoinsEarned     int64       `json:"coins_earned"`
	CreditedRaceIDs []uuid.UUID `json:"credited_race_ids"`
}

func (e SessionRecordedEvent) Type() EventType {
	return EventTypeSessionRecorded
}

// ParticipantEnrolledEvent represents a user joining a race
type ParticipantEnrolledEvent struct {
	RaceID        uuid.UUID `json:"race_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	UserID        uuid.UUID `json:"user_id"`
}

func (e ParticipantEnrolledEvent) Type() EventType {
	return EventTypeParticipantEnrolled
}

// OddsRefreshedEvent represents a ranking and odds pass persisted for a race
type OddsRefreshedEvent struct {
	RaceID       uuid.UUID `json:"race_id"`
	Participants int       `json:"participants"`
}

func (e OddsRefreshedEvent) Type() EventType {
	return EventTypeOddsRefreshed
}

// BetPlacedEvent represents a bet that was placed
type BetPlacedEvent struct {
	BetID          uuid.UUID      `json:"bet_id"`
	BettorID       uuid.UUID      `json:"bettor_id"`
	RaceID         uuid.UUID      `json:"race_id"`
	ParticipantID  uuid.UUID      `json:"participant_id"`
	BetType        models.BetType `json:"bet_type"`
	Amount         int64          `json:"amount"`
	Odds           string         `json:"odds"`
	ExpectedPayout int64          `json:"expected_payout"`
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// PeriodResetEvent represents the current-period minutes being zeroed
type PeriodResetEvent struct {
	UsersAffected int64 `json:"users_affected"`
}

func (e PeriodResetEvent) Type() EventType {
	return EventTypePeriodReset
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range AllEventTypes {
		b.Subscribe(t, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow subscriber never holds up the caller
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work.
// They reach the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Pending returns the events queued so far
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush emits the pending events. Called after a successful commit.
func (b *TransactionalBus) Flush() {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events to main event bus")

	// Handlers outlive the request, so they get a fresh context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops the pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
