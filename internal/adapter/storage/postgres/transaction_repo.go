package postgres

import (
	"context"
	"errors"
	"fmt"

	"sportsbook-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, kind, account_id, amount_cents, round_id, related_transaction_id, balance_after_cents, applied_at`

// TransactionRepo implements ports.TransactionRepository. The table is
// append-only with a unique constraint on id, which is the backstop
// against two concurrent first-writers of the same transaction id.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a ledger entry within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.Kind, t.AccountID, t.AmountCents, t.RoundID,
		t.RelatedTransactionID, t.BalanceAfterCents, t.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by its caller-supplied id.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDTx fetches a ledger entry inside an open transaction, after the
// account row is locked, so the idempotency check and the balance
// mutation are a single atomic step.
func (r *TransactionRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(tx.QueryRow(ctx, query, id))
}

// GetCreditByRelatedIDTx finds the credit already referencing a debit,
// inside the locked transaction. At most one such row can exist.
func (r *TransactionRepo) GetCreditByRelatedIDTx(ctx context.Context, tx pgx.Tx, relatedTransactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE related_transaction_id = $1 AND kind = $2`
	return scanTransaction(tx.QueryRow(ctx, query, relatedTransactionID, domain.TransactionKindCredit))
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Kind, &t.AccountID, &t.AmountCents, &t.RoundID,
		&t.RelatedTransactionID, &t.BalanceAfterCents, &t.AppliedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}
