package ports

import (
	"context"
	"time"

	"sportsbook-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for ledger accounts.
// Methods accepting pgx.Tx run inside transaction blocks so the balance
// read-check-mutate sequence is serialized per account.
type AccountRepository interface {
	Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balanceCents int64) error
}

// TransactionRepository defines persistence for the append-only ledger
// log. Entries are immutable once recorded; the id is the caller-supplied
// idempotency key and carries a unique constraint.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// GetByIDTx performs the idempotency lookup inside the locked
	// transaction so check-and-record is a single atomic step.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error)
	// GetCreditByRelatedIDTx finds the credit already referencing a
	// debit, inside the locked transaction. Guards one-credit-per-debit.
	GetCreditByRelatedIDTx(ctx context.Context, tx pgx.Tx, relatedTransactionID string) (*domain.Transaction, error)
}

// BetRepository defines persistence operations for bets.
type BetRepository interface {
	Create(ctx context.Context, tx pgx.Tx, bet *domain.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bet, error)
	GetByDebitTransactionID(ctx context.Context, debitTransactionID string) (*domain.Bet, error)
	UpdateSettlement(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BetStatus, payoutCents *int64, settledAt time.Time) error
	List(ctx context.Context, params BetListParams) ([]domain.Bet, int64, error)
}

// BetListParams holds filter + pagination for listing bets.
type BetListParams struct {
	AccountID string
	Status    *domain.BetStatus
	Page      int
	PageSize  int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
