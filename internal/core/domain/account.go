package domain

import "time"

// Account holds the ledger-owned running balance for a user. It is the
// cached fold of the transaction log and is only mutated inside the same
// database transaction that appends a ledger entry.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	BalanceCents int64     `json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
