package ports

import (
	"context"
	"time"

	"sportsbook-ledger/internal/core/domain"
)

// OddsSource supplies fixture odds snapshots from the external sports
// data collaborator.
type OddsSource interface {
	Snapshot(ctx context.Context, fixtureID string) (*domain.OddsSnapshot, error)
}

// ProfileSource supplies the opaque wallet-profile document from the
// upstream wallet collaborator.
type ProfileSource interface {
	Profile(ctx context.Context, accountID string) (domain.WalletProfile, error)
}

// TokenClaims is the identity resolved from a bearer token.
type TokenClaims struct {
	AccountID string
	Username  string
}

// TokenVerifier resolves a bearer token to an account identity. Token
// issuance lives upstream; this core only verifies.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// IdempotencyCache is the fast-path replay cache in front of the
// authoritative ledger log. Best effort: a miss or error falls through
// to the database.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// OddsCache caches odds snapshots to spare the upstream feed.
type OddsCache interface {
	Get(ctx context.Context, fixtureID string) (*domain.OddsSnapshot, error)
	Set(ctx context.Context, fixtureID string, snapshot *domain.OddsSnapshot, ttl time.Duration) error
}

// EventPublisher emits bet lifecycle events for downstream consumers
// (reporting, retail ticketing). Nil publisher disables publishing.
type EventPublisher interface {
	PublishBetPlaced(ctx context.Context, bet *domain.Bet) error
	PublishBetSettled(ctx context.Context, bet *domain.Bet) error
}
