package postgres

import (
	"context"
	"errors"
	"fmt"

	"sportsbook-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new account within a database transaction. Accounts
// are provisioned lazily on their first ledger operation.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	query := `INSERT INTO accounts (id, username, balance_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, a.ID, a.Username, a.BalanceCents, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by id (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT id, username, balance_cents, created_at, updated_at
		FROM accounts WHERE id = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Username, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByIDForUpdate fetches an account with pessimistic locking. This
// MUST be called within a transaction; it serializes all balance
// mutations for the account until commit.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error) {
	query := `SELECT id, username, balance_cents, created_at, updated_at
		FROM accounts WHERE id = $1 FOR UPDATE`

	a := &domain.Account{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Username, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// UpdateBalance updates an account's balance within a transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balanceCents int64) error {
	query := `UPDATE accounts SET balance_cents = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, balanceCents, id)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", id)
	}
	return nil
}
