package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BetStatus is the lifecycle state of a bet. A bet starts PENDING and
// moves exactly once to one of the terminal states.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoid    BetStatus = "void"
)

// BetResult is a requested settlement outcome.
type BetResult string

const (
	BetResultWon  BetResult = "won"
	BetResultLost BetResult = "lost"
	BetResultVoid BetResult = "void"
)

// ParseBetResult validates a settlement outcome from the wire. Anything
// outside the closed set is rejected.
func ParseBetResult(s string) (BetResult, error) {
	switch BetResult(s) {
	case BetResultWon, BetResultLost, BetResultVoid:
		return BetResult(s), nil
	}
	return "", fmt.Errorf("invalid bet result %q", s)
}

// Status returns the terminal status a result settles into.
func (r BetResult) Status() BetStatus {
	return BetStatus(r)
}

// Selection is one leg of a bet: a specific market outcome at a specific
// price from a specific bookmaker. Immutable once embedded in a Bet.
type Selection struct {
	FixtureID   string  `json:"fixture_id"`
	MarketID    string  `json:"market_id"`
	Value       string  `json:"value"`
	Odd         float64 `json:"odd"`
	BookmakerID string  `json:"bookmaker_id"`
	Handicap    *string `json:"handicap,omitempty"`
}

// Bet is a placed wager. Created on successful placement, mutated only
// by settlement, never deleted.
type Bet struct {
	ID                 uuid.UUID   `json:"id"`
	Ref                string      `json:"ref"`
	AccountID          string      `json:"account_id"`
	StakeCents         int64       `json:"stake_cents"`
	Selections         []Selection `json:"selections"`
	Status             BetStatus   `json:"status"`
	DebitTransactionID string      `json:"debit_transaction_id"`
	PayoutCents        *int64      `json:"payout_cents,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	SettledAt          *time.Time  `json:"settled_at,omitempty"`
}

// IsSettled returns true once the bet has left PENDING.
func (b *Bet) IsSettled() bool {
	return b.Status != BetStatusPending
}

// SettlementTransactionID derives the ledger transaction id used for the
// settlement credit. Deriving it from the bet id keeps settlement retries
// idempotent: a replayed settle call produces the same credit id.
func (b *Bet) SettlementTransactionID() string {
	return b.ID.String() + ":settle"
}
