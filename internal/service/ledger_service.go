package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
	"sportsbook-ledger/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const idempotencyTTL = 24 * time.Hour

// LedgerServiceImpl implements ports.LedgerService with pessimistic
// per-account locking. The transactions table is the authoritative
// idempotency log; Redis is a best-effort fast path in front of it.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	idempCache  ports.IdempotencyCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		idempCache:  idempCache,
		transactor:  transactor,
		log:         log,
	}
}

// Debit moves stake out of an account, keyed by the caller-supplied
// transaction id. Replaying an already-recorded id returns the stored
// entry without re-checking balance or re-mutating.
func (s *LedgerServiceImpl) Debit(ctx context.Context, req ports.DebitRequest) (*domain.Transaction, error) {
	if err := validateLedgerRequest(req.AccountID, req.TransactionID, req.AmountCents); err != nil {
		return nil, err
	}

	if cached := s.cachedReplay(ctx, req.TransactionID); cached != nil {
		metrics.LedgerTransactions.WithLabelValues("debit", "replayed").Inc()
		return cached, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.DebitTx(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheResult(ctx, txn)
	return txn, nil
}

// DebitTx applies a debit inside an existing database transaction so
// callers can pair it atomically with their own writes (bet placement).
// The caller commits.
func (s *LedgerServiceImpl) DebitTx(ctx context.Context, dbTx pgx.Tx, req ports.DebitRequest) (*domain.Transaction, error) {
	if err := validateLedgerRequest(req.AccountID, req.TransactionID, req.AmountCents); err != nil {
		return nil, err
	}

	acct, err := s.lockOrProvisionAccount(ctx, dbTx, req.AccountID, req.Username)
	if err != nil {
		return nil, err
	}

	// Authoritative idempotency check, under the account lock so
	// check-and-record is atomic against concurrent replays.
	prior, err := s.txRepo.GetByIDTx(ctx, dbTx, req.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
	}
	if prior != nil {
		metrics.LedgerTransactions.WithLabelValues("debit", "replayed").Inc()
		return prior, nil
	}

	if acct.BalanceCents < req.AmountCents {
		metrics.LedgerTransactions.WithLabelValues("debit", "rejected").Inc()
		return nil, apperror.ErrInsufficientBalance(domain.Amount(acct.BalanceCents), domain.Amount(req.AmountCents))
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:                req.TransactionID,
		Kind:              domain.TransactionKindDebit,
		AccountID:         req.AccountID,
		AmountCents:       req.AmountCents,
		RoundID:           req.RoundID,
		BalanceAfterCents: acct.BalanceCents - req.AmountCents,
		AppliedAt:         now,
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, acct.ID, txn.BalanceAfterCents); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record debit: %w", err))
	}

	metrics.LedgerTransactions.WithLabelValues("debit", "applied").Inc()

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("account_id", req.AccountID).
		Str("round_id", req.RoundID).
		Int64("amount_cents", req.AmountCents).
		Int64("balance_after_cents", txn.BalanceAfterCents).
		Msg("debit applied")

	return txn, nil
}

// Credit moves winnings or a refund back into an account. The credit
// must reference an existing debit for the same account.
func (s *LedgerServiceImpl) Credit(ctx context.Context, req ports.CreditRequest) (*domain.Transaction, error) {
	if err := validateLedgerRequest(req.AccountID, req.TransactionID, req.AmountCents); err != nil {
		return nil, err
	}

	if cached := s.cachedReplay(ctx, req.TransactionID); cached != nil {
		metrics.LedgerTransactions.WithLabelValues("credit", "replayed").Inc()
		return cached, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.CreditTx(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheResult(ctx, txn)
	return txn, nil
}

// CreditTx applies a credit inside an existing database transaction so
// callers can pair it atomically with their own writes (settlement).
// The caller commits.
func (s *LedgerServiceImpl) CreditTx(ctx context.Context, dbTx pgx.Tx, req ports.CreditRequest) (*domain.Transaction, error) {
	if err := validateLedgerRequest(req.AccountID, req.TransactionID, req.AmountCents); err != nil {
		return nil, err
	}

	acct, err := s.lockOrProvisionAccount(ctx, dbTx, req.AccountID, req.Username)
	if err != nil {
		return nil, err
	}

	prior, err := s.txRepo.GetByIDTx(ctx, dbTx, req.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
	}
	if prior != nil {
		metrics.LedgerTransactions.WithLabelValues("credit", "replayed").Inc()
		return prior, nil
	}

	debit, err := s.txRepo.GetByIDTx(ctx, dbTx, req.DebitTransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find debit: %w", err))
	}
	if debit == nil || !debit.IsDebit() || debit.AccountID != req.AccountID {
		metrics.LedgerTransactions.WithLabelValues("credit", "rejected").Inc()
		return nil, apperror.ErrUnknownDebit(req.DebitTransactionID)
	}

	// One payout per debit. A replay carries the original transaction id
	// and is caught above; a different id on the same debit is a dispute.
	existing, err := s.txRepo.GetCreditByRelatedIDTx(ctx, dbTx, req.DebitTransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check prior credit: %w", err))
	}
	if existing != nil {
		metrics.LedgerTransactions.WithLabelValues("credit", "rejected").Inc()
		return nil, apperror.ErrDuplicateCredit(req.DebitTransactionID, existing.ID)
	}

	now := time.Now().UTC()
	related := req.DebitTransactionID
	txn := &domain.Transaction{
		ID:                   req.TransactionID,
		Kind:                 domain.TransactionKindCredit,
		AccountID:            req.AccountID,
		AmountCents:          req.AmountCents,
		RoundID:              req.RoundID,
		RelatedTransactionID: &related,
		BalanceAfterCents:    acct.BalanceCents + req.AmountCents,
		AppliedAt:            now,
	}

	if err := s.accountRepo.UpdateBalance(ctx, dbTx, acct.ID, txn.BalanceAfterCents); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record credit: %w", err))
	}

	metrics.LedgerTransactions.WithLabelValues("credit", "applied").Inc()

	s.log.Info().
		Str("tx_id", txn.ID).
		Str("account_id", req.AccountID).
		Str("debit_tx_id", req.DebitTransactionID).
		Int64("amount_cents", req.AmountCents).
		Int64("balance_after_cents", txn.BalanceAfterCents).
		Msg("credit applied")

	return txn, nil
}

// Balance returns the current ledger balance for an account. Unknown
// accounts report zero; they are provisioned on first money movement.
func (s *LedgerServiceImpl) Balance(ctx context.Context, accountID string) (int64, error) {
	acct, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		return 0, nil
	}
	return acct.BalanceCents, nil
}

func (s *LedgerServiceImpl) lockOrProvisionAccount(ctx context.Context, dbTx pgx.Tx, accountID, username string) (*domain.Account, error) {
	acct, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if acct != nil {
		return acct, nil
	}

	now := time.Now().UTC()
	acct = &domain.Account{
		ID:        accountID,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.Create(ctx, dbTx, acct); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("provision account: %w", err))
	}
	s.log.Info().Str("account_id", accountID).Msg("account provisioned")
	return acct, nil
}

// cachedReplay checks the Redis fast path. Errors fall through to the
// database; the cache is never authoritative.
func (s *LedgerServiceImpl) cachedReplay(ctx context.Context, transactionID string) *domain.Transaction {
	if s.idempCache == nil {
		return nil
	}
	cached, err := s.idempCache.Get(ctx, transactionID)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_id", transactionID).Msg("redis idempotency check failed, falling through to DB")
		return nil
	}
	if cached == nil {
		return nil
	}
	txn := &domain.Transaction{}
	if err := json.Unmarshal(cached, txn); err != nil {
		s.log.Warn().Err(err).Str("tx_id", transactionID).Msg("corrupt idempotency cache entry, falling through to DB")
		return nil
	}
	return txn
}

func (s *LedgerServiceImpl) cacheResult(ctx context.Context, txn *domain.Transaction) {
	if s.idempCache == nil {
		return
	}
	b, err := json.Marshal(txn)
	if err != nil {
		return
	}
	if err := s.idempCache.Set(ctx, txn.ID, b, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("tx_id", txn.ID).Msg("failed to cache ledger result")
	}
}

func validateLedgerRequest(accountID, transactionID string, amountCents int64) error {
	if accountID == "" {
		return apperror.Validation("account_id is required")
	}
	if transactionID == "" {
		return apperror.Validation("transaction_id is required")
	}
	if amountCents <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return nil
}
