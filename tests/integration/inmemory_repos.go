package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; ok {
		return fmt.Errorf("account already exists")
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryAccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balanceCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.BalanceCents = balanceCents
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[string]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[t.ID]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "transactions_pkey"}
	}
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id string) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryTransactionRepo) GetCreditByRelatedIDTx(ctx context.Context, tx pgx.Tx, relatedTransactionID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.Kind == domain.TransactionKindCredit &&
			t.RelatedTransactionID != nil && *t.RelatedTransactionID == relatedTransactionID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Bet Repo ---

type inMemoryBetRepo struct {
	mu   sync.RWMutex
	bets map[uuid.UUID]*domain.Bet
}

func newInMemoryBetRepo() *inMemoryBetRepo {
	return &inMemoryBetRepo{bets: make(map[uuid.UUID]*domain.Bet)}
}

func (r *inMemoryBetRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bets {
		if existing.DebitTransactionID == b.DebitTransactionID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "bets_debit_transaction_id_key"}
		}
	}
	cp := *b
	r.bets[b.ID] = &cp
	return nil
}

func (r *inMemoryBetRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bets[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *inMemoryBetRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Bet, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryBetRepo) GetByDebitTransactionID(ctx context.Context, debitTransactionID string) (*domain.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bets {
		if b.DebitTransactionID == debitTransactionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryBetRepo) UpdateSettlement(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BetStatus, payoutCents *int64, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bets[id]
	if !ok {
		return fmt.Errorf("bet not found")
	}
	b.Status = status
	b.PayoutCents = payoutCents
	b.SettledAt = &settledAt
	return nil
}

func (r *inMemoryBetRepo) List(ctx context.Context, params ports.BetListParams) ([]domain.Bet, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Bet
	for _, b := range r.bets {
		if b.AccountID != params.AccountID {
			continue
		}
		if params.Status != nil && b.Status != *params.Status {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Bet{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- Serializing Transactor ---

// inMemoryTransactor hands out transactions guarded by a single mutex,
// standing in for row-level FOR UPDATE locks. Transactions here never
// nest, so one global lock preserves the serialization the services
// rely on.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &lockedTx{release: t.mu.Unlock}, nil
}

// lockedTx holds the transactor lock until Commit or Rollback,
// whichever comes first.
type lockedTx struct {
	once    sync.Once
	release func()
}

func (t *lockedTx) done() {
	t.once.Do(t.release)
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *lockedTx) Conn() *pgx.Conn { return nil }

// --- Stub collaborators ---

// stubOddsSource serves a fixed snapshot per fixture.
type stubOddsSource struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.OddsSnapshot
}

func newStubOddsSource() *stubOddsSource {
	return &stubOddsSource{snapshots: make(map[string]*domain.OddsSnapshot)}
}

func (s *stubOddsSource) set(fixtureID string, snap *domain.OddsSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[fixtureID] = snap
}

func (s *stubOddsSource) Snapshot(ctx context.Context, fixtureID string) (*domain.OddsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[fixtureID], nil
}

// stubProfileSource serves a fixed wallet profile per account.
type stubProfileSource struct {
	mu       sync.RWMutex
	profiles map[string]domain.WalletProfile
}

func newStubProfileSource() *stubProfileSource {
	return &stubProfileSource{profiles: make(map[string]domain.WalletProfile)}
}

func (s *stubProfileSource) set(accountID string, p domain.WalletProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[accountID] = p
}

func (s *stubProfileSource) Profile(ctx context.Context, accountID string) (domain.WalletProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[accountID], nil
}
