package domain

import "time"

// TransactionKind represents the direction of a money movement.
type TransactionKind string

const (
	TransactionKindDebit  TransactionKind = "debit"
	TransactionKindCredit TransactionKind = "credit"
)

// Transaction is an immutable entry in the append-only wallet ledger.
// The ID is caller-supplied and doubles as the idempotency key: replaying
// an already-recorded ID returns this entry unchanged instead of moving
// money again.
type Transaction struct {
	ID                   string          `json:"id"`
	Kind                 TransactionKind `json:"kind"`
	AccountID            string          `json:"account_id"`
	AmountCents          int64           `json:"amount_cents"`
	RoundID              string          `json:"round_id"`
	RelatedTransactionID *string         `json:"related_transaction_id,omitempty"`
	BalanceAfterCents    int64           `json:"balance_after_cents"`
	AppliedAt            time.Time       `json:"applied_at"`
}

// IsDebit returns true for debit entries.
func (t *Transaction) IsDebit() bool {
	return t.Kind == TransactionKindDebit
}
