// Package cache keeps ranked race standings in Redis so repeated reads skip the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"studyrace/models"
)

// NewRedisClient connects to addr and verifies the connection with a ping
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// StandingsCache stores one JSON snapshot per race under standings:{raceID}
type StandingsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStandingsCache creates a standings cache whose entries expire after ttl
func NewStandingsCache(rdb *redis.Client, ttl time.Duration) *StandingsCache {
	return &StandingsCache{rdb: rdb, ttl: ttl}
}

func standingsKey(raceID uuid.UUID) string { return "standings:" + raceID.String() }

// Get returns the cached standings, or nil on a miss
func (c *StandingsCache) Get(ctx context.Context, raceID uuid.UUID) ([]*models.RaceParticipant, error) {
	data, err := c.rdb.Get(ctx, standingsKey(raceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get standings %s: %w", raceID, err)
	}

	var standings []*models.RaceParticipant
	if err := json.Unmarshal(data, &standings); err != nil {
		return nil, fmt.Errorf("redis: unmarshal standings %s: %w", raceID, err)
	}
	return standings, nil
}

// Set stores a ranked roster snapshot
func (c *StandingsCache) Set(ctx context.Context, raceID uuid.UUID, standings []*models.RaceParticipant) error {
	data, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("redis: marshal standings %s: %w", raceID, err)
	}
	if err := c.rdb.Set(ctx, standingsKey(raceID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set standings %s: %w", raceID, err)
	}
	return nil
}

// Invalidate drops the snapshot of a race
func (c *StandingsCache) Invalidate(ctx context.Context, raceID uuid.UUID) error {
	if err := c.rdb.Del(ctx, standingsKey(raceID)).Err(); err != nil {
		return fmt.Errorf("redis: delete standings %s: %w", raceID, err)
	}
	return nil
}

// Noop is used when no Redis address is configured. Every read is a miss.
type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) ([]*models.RaceParticipant, error) { return nil, nil }

func (Noop) Set(context.Context, uuid.UUID, []*models.RaceParticipant) error { return nil }

func (Noop) Invalidate(context.Context, uuid.UUID) error { return nil }
