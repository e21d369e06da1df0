package cache

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"studyrace/events"
)

type invalidator interface {
	Invalidate(ctx context.Context, raceID uuid.UUID) error
}

// RegisterInvalidation drops cached standings whenever a committed event changes a roster
func RegisterInvalidation(bus *events.Bus, c invalidator) {
	drop := func(ctx context.Context, raceID uuid.UUID) {
		if err := c.Invalidate(ctx, raceID); err != nil {
			log.WithError(err).WithField("raceID", raceID).Error("Failed to invalidate cached standings")
		}
	}

	bus.Subscribe(events.EventTypeSessionRecorded, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.SessionRecordedEvent); ok {
			for _, raceID := range ev.CreditedRaceIDs {
				drop(ctx, raceID)
			}
		}
	})

	bus.Subscribe(events.EventTypeParticipantEnrolled, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.ParticipantEnrolledEvent); ok {
			drop(ctx, ev.RaceID)
		}
	})

	bus.Subscribe(events.EventTypeOddsRefreshed, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.OddsRefreshedEvent); ok {
			drop(ctx, ev.RaceID)
		}
	})
}
