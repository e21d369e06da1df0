package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const sourceService = "studyrace"

// Envelope wraps every forwarded event
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     EventType       `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// publisher is the subset of *nats.Conn the forwarder needs
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder republishes committed domain events to NATS
type NATSForwarder struct {
	conn publisher
}

// NewNATSForwarder creates a forwarder publishing on conn
func NewNATSForwarder(conn publisher) *NATSForwarder {
	return &NATSForwarder{conn: conn}
}

// ConnectNATS dials the NATS servers with reconnect handling
func ConnectNATS(servers string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(sourceService),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(servers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("servers", servers).Info("Connected to NATS")
	return nc, nil
}

// SubjectFor maps an event to its NATS subject
func SubjectFor(eventType EventType) string {
	switch eventType {
	case EventTypeBalanceChange:
		return "studyrace.users.balance_changed"
	case EventTypeUserCreated:
		return "studyrace.users.created"
	case EventTypeSessionRecorded:
		return "studyrace.study.session_recorded"
	case EventTypePeriodReset:
		return "studyrace.study.period_reset"
	case EventTypeParticipantEnrolled:
		return "studyrace.races.participant_enrolled"
	case EventTypeOddsRefreshed:
		return "studyrace.races.odds_refreshed"
	case EventTypeBetPlaced:
		return "studyrace.betting.placed"
	default:
		return fmt.Sprintf("studyrace.unknown.%s", eventType)
	}
}

// Register subscribes the forwarder to every event type on bus
func (f *NATSForwarder) Register(bus *Bus) {
	bus.SubscribeAll(f.Handle)
}

// Handle forwards one event. Failures are logged, never returned to the emitter.
func (f *NATSForwarder) Handle(ctx context.Context, event Event) {
	if err := f.Forward(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// Forward encodes event in an Envelope and publishes it
func (f *NATSForwarder) Forward(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:       uuid.New().String(),
		EventType:     event.Type(),
		Timestamp:     time.Now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectFor(event.Type())
	if err := f.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"subject":   subject,
	}).Debug("Forwarded event to NATS")
	return nil
}
