package ports

import (
	"context"

	"sportsbook-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DebitRequest asks the ledger to move stake out of an account, keyed by
// the caller-supplied transaction id.
type DebitRequest struct {
	AccountID     string
	Username      string
	AmountCents   int64
	Game          string
	RoundID       string
	TransactionID string
}

// CreditRequest asks the ledger to move winnings or a refund back into
// an account. DebitTransactionID couples the credit to its prior debit.
type CreditRequest struct {
	AccountID          string
	Username           string
	AmountCents        int64
	Game               string
	RoundID            string
	TransactionID      string
	DebitTransactionID string
}

// LedgerService is the transactional wallet core. Both operations are
// idempotent by transaction id: a replay returns the originally recorded
// entry without moving money again.
type LedgerService interface {
	Debit(ctx context.Context, req DebitRequest) (*domain.Transaction, error)
	// DebitTx applies a debit inside an existing database transaction,
	// so placement can pair the stake debit and the bet record
	// atomically.
	DebitTx(ctx context.Context, tx pgx.Tx, req DebitRequest) (*domain.Transaction, error)
	Credit(ctx context.Context, req CreditRequest) (*domain.Transaction, error)
	// CreditTx applies a credit inside an existing database transaction,
	// so settlement can pair the status transition and the credit
	// atomically.
	CreditTx(ctx context.Context, tx pgx.Tx, req CreditRequest) (*domain.Transaction, error)
	Balance(ctx context.Context, accountID string) (int64, error)
}

// SelectionResult is the per-selection outcome of bet slip validation.
// Failures are inline results the caller branches on, not fatal errors.
type SelectionResult struct {
	Selection domain.Selection `json:"selection"`
	OK        bool             `json:"ok"`
	ErrorCode string           `json:"error_code,omitempty"`
	Message   string           `json:"message,omitempty"`
	Context   map[string]any   `json:"context,omitempty"`
}

// BalanceCheck is the aggregate-stake outcome of bet slip validation.
type BalanceCheck struct {
	OK               bool           `json:"ok"`
	AvailableBalance float64        `json:"available_balance"`
	ErrorCode        string         `json:"error_code,omitempty"`
	Message          string         `json:"message,omitempty"`
	Context          map[string]any `json:"context,omitempty"`
}

// ValidationOutcome aggregates a full bet slip validation pass.
type ValidationOutcome struct {
	OK         bool              `json:"ok"`
	Selections []SelectionResult `json:"results"`
	Balance    BalanceCheck      `json:"balance"`
}

// PlaceRequest asks the orchestrator to place a bet. IdempotencyKey
// doubles as the debit transaction id, so a retried place call neither
// double-debits nor creates a second bet.
type PlaceRequest struct {
	AccountID      string
	Username       string
	Selections     []domain.Selection
	StakeCents     int64
	IdempotencyKey string
}

// BetService orchestrates the three request phases of a wager: validate
// (read-only), place (debit + bet creation) and settle (lifecycle
// transition + conditional credit).
type BetService interface {
	Validate(ctx context.Context, accountID string, selections []domain.Selection, stakeCents int64) (*ValidationOutcome, error)
	// Place returns a non-OK outcome instead of a bet when validation
	// fails; no money moves in that case.
	Place(ctx context.Context, req PlaceRequest) (*domain.Bet, *ValidationOutcome, error)
	Settle(ctx context.Context, betID uuid.UUID, result domain.BetResult, payoutCents int64, actor string) (*domain.Bet, error)
	Get(ctx context.Context, betID uuid.UUID) (*domain.Bet, error)
	List(ctx context.Context, params BetListParams) ([]domain.Bet, int64, error)
}
