package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sportsbook-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// OddsCache implements ports.OddsCache using Redis. Snapshots are short
// lived; stale prices are caught by the odds validator, so the TTL only
// bounds upstream load.
type OddsCache struct {
	client *goredis.Client
	prefix string
}

// NewOddsCache creates a new Redis-backed odds snapshot cache.
func NewOddsCache(client *goredis.Client) *OddsCache {
	return &OddsCache{
		client: client,
		prefix: "odds:fixture:",
	}
}

// Get retrieves a cached snapshot for a fixture.
// Returns nil, nil if the key does not exist.
func (c *OddsCache) Get(ctx context.Context, fixtureID string) (*domain.OddsSnapshot, error) {
	val, err := c.client.Get(ctx, c.prefix+fixtureID).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis odds get: %w", err)
	}

	snap := &domain.OddsSnapshot{}
	if err := json.Unmarshal(val, snap); err != nil {
		return nil, fmt.Errorf("unmarshal cached snapshot: %w", err)
	}
	return snap, nil
}

// Set stores a snapshot with TTL.
func (c *OddsCache) Set(ctx context.Context, fixtureID string, snapshot *domain.OddsSnapshot, ttl time.Duration) error {
	val, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+fixtureID, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis odds set: %w", err)
	}
	return nil
}
