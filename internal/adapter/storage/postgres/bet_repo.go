package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const betColumns = `id, ref, account_id, stake_cents, selections, status, debit_transaction_id, payout_cents, created_at, settled_at`

// BetRepo implements ports.BetRepository. Selections are stored as a
// JSONB document; their order is part of the bet and survives the round
// trip.
type BetRepo struct {
	pool Pool
}

// NewBetRepo creates a new BetRepo.
func NewBetRepo(pool Pool) *BetRepo {
	return &BetRepo{pool: pool}
}

// Create inserts a bet within a database transaction.
func (r *BetRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.Bet) error {
	selections, err := json.Marshal(b.Selections)
	if err != nil {
		return fmt.Errorf("marshal selections: %w", err)
	}

	query := `INSERT INTO bets (` + betColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, query,
		b.ID, b.Ref, b.AccountID, b.StakeCents, selections,
		b.Status, b.DebitTransactionID, b.PayoutCents, b.CreatedAt, b.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

// GetByID fetches a bet by id (without locking).
func (r *BetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`
	return scanBet(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a bet with pessimistic locking. This MUST be
// called within a transaction; it serializes settlement per bet.
func (r *BetRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1 FOR UPDATE`
	return scanBet(tx.QueryRow(ctx, query, id))
}

// GetByDebitTransactionID fetches the bet created against a debit. Used
// to make a retried place call return the originally created bet.
func (r *BetRepo) GetByDebitTransactionID(ctx context.Context, debitTransactionID string) (*domain.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE debit_transaction_id = $1`
	return scanBet(r.pool.QueryRow(ctx, query, debitTransactionID))
}

// UpdateSettlement records a terminal status within a transaction.
func (r *BetRepo) UpdateSettlement(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BetStatus, payoutCents *int64, settledAt time.Time) error {
	query := `UPDATE bets SET status = $1, payout_cents = $2, settled_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, status, payoutCents, settledAt, id)
	if err != nil {
		return fmt.Errorf("update bet settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet not found: %s", id)
	}
	return nil
}

// List returns a page of an account's bets, newest first, plus the total
// count for pagination.
func (r *BetRepo) List(ctx context.Context, params ports.BetListParams) ([]domain.Bet, int64, error) {
	where := `WHERE account_id = $1`
	args := []any{params.AccountID}
	if params.Status != nil {
		where += ` AND status = $2`
		args = append(args, *params.Status)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM bets ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bets: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	query := fmt.Sprintf(`SELECT `+betColumns+` FROM bets %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, 0, err
		}
		bets = append(bets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bets: %w", err)
	}
	return bets, total, nil
}

func scanBet(row pgx.Row) (*domain.Bet, error) {
	b := &domain.Bet{}
	var selections []byte
	err := row.Scan(
		&b.ID, &b.Ref, &b.AccountID, &b.StakeCents, &selections,
		&b.Status, &b.DebitTransactionID, &b.PayoutCents, &b.CreatedAt, &b.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bet: %w", err)
	}
	if err := json.Unmarshal(selections, &b.Selections); err != nil {
		return nil, fmt.Errorf("unmarshal selections: %w", err)
	}
	return b, nil
}
