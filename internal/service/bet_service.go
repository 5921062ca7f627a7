package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
	"sportsbook-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// BetServiceImpl orchestrates the bet lifecycle: slip validation against
// fresh odds and balance, placement through the ledger, and settlement.
type BetServiceImpl struct {
	betRepo    ports.BetRepository
	ledger     ports.LedgerService
	oddsSource ports.OddsSource
	profiles   ports.ProfileSource
	validator  *OddsValidator
	transactor ports.DBTransactor
	publisher  ports.EventPublisher
	log        zerolog.Logger
}

// NewBetService creates a new BetServiceImpl. publisher may be nil to
// disable event publishing.
func NewBetService(
	betRepo ports.BetRepository,
	ledger ports.LedgerService,
	oddsSource ports.OddsSource,
	profiles ports.ProfileSource,
	validator *OddsValidator,
	transactor ports.DBTransactor,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *BetServiceImpl {
	return &BetServiceImpl{
		betRepo:    betRepo,
		ledger:     ledger,
		oddsSource: oddsSource,
		profiles:   profiles,
		validator:  validator,
		transactor: transactor,
		publisher:  publisher,
		log:        log,
	}
}

// Validate checks every selection against a fresh odds snapshot and the
// aggregate stake against the account's wallet profile. Per-selection
// failures are inline results; only infrastructure faults are errors.
func (s *BetServiceImpl) Validate(ctx context.Context, accountID string, selections []domain.Selection, stakeCents int64) (*ports.ValidationOutcome, error) {
	if len(selections) == 0 {
		return nil, apperror.Validation("at least one selection is required")
	}
	if stakeCents <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	snapshots := make(map[string]*domain.OddsSnapshot)
	for _, sel := range selections {
		if _, ok := snapshots[sel.FixtureID]; ok {
			continue
		}
		snap, err := s.oddsSource.Snapshot(ctx, sel.FixtureID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("fetch odds for fixture %s: %w", sel.FixtureID, err))
		}
		snapshots[sel.FixtureID] = snap
	}

	outcome := &ports.ValidationOutcome{OK: true}
	for _, sel := range selections {
		res := s.validator.ValidateSelection(sel, snapshots[sel.FixtureID])
		if !res.OK {
			outcome.OK = false
		}
		outcome.Selections = append(outcome.Selections, res)
	}

	profile, err := s.profiles.Profile(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch wallet profile: %w", err))
	}
	outcome.Balance = EnsureSufficientBalance(profile, stakeCents)
	if !outcome.Balance.OK {
		outcome.OK = false
	}

	if outcome.OK {
		metrics.SlipValidations.WithLabelValues("accepted").Inc()
	} else {
		metrics.SlipValidations.WithLabelValues("rejected").Inc()
	}
	return outcome, nil
}

// Place validates the slip, debits the stake and records the bet. The
// idempotency key doubles as the debit transaction id, so a retried
// place call neither double-debits nor creates a second bet.
func (s *BetServiceImpl) Place(ctx context.Context, req ports.PlaceRequest) (*domain.Bet, *ports.ValidationOutcome, error) {
	if req.IdempotencyKey == "" {
		return nil, nil, apperror.Validation("idempotency key is required")
	}

	existing, err := s.betRepo.GetByDebitTransactionID(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
	}
	if existing != nil {
		s.log.Info().
			Str("bet_id", existing.ID.String()).
			Str("idempotency_key", req.IdempotencyKey).
			Msg("bet placement replayed")
		return existing, nil, nil
	}

	outcome, err := s.Validate(ctx, req.AccountID, req.Selections, req.StakeCents)
	if err != nil {
		return nil, nil, err
	}
	if !outcome.OK {
		return nil, outcome, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Debit and bet record commit together, so a crash mid-place leaves
	// no debit without its bet.
	betID := uuid.New()
	txn, err := s.ledger.DebitTx(ctx, dbTx, ports.DebitRequest{
		AccountID:     req.AccountID,
		Username:      req.Username,
		AmountCents:   req.StakeCents,
		Game:          "sportsbook",
		RoundID:       betID.String(),
		TransactionID: req.IdempotencyKey,
	})
	if err != nil {
		return nil, nil, err
	}

	bet := &domain.Bet{
		ID:                 betID,
		Ref:                buildBetRef(betID),
		AccountID:          req.AccountID,
		StakeCents:         req.StakeCents,
		Selections:         req.Selections,
		Status:             domain.BetStatusPending,
		DebitTransactionID: txn.ID,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.betRepo.Create(ctx, dbTx, bet); err != nil {
		// A concurrent place with the same key won the race after our
		// replay check. Roll back our uncommitted debit and return the
		// winner's bet.
		if isUniqueViolation(err) {
			_ = dbTx.Rollback(ctx)
			if prior, ferr := s.betRepo.GetByDebitTransactionID(ctx, req.IdempotencyKey); ferr == nil && prior != nil {
				return prior, nil, nil
			}
		}
		return nil, nil, apperror.InternalError(fmt.Errorf("record bet: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.BetsPlaced.Inc()
	s.log.Info().
		Str("bet_id", bet.ID.String()).
		Str("account_id", req.AccountID).
		Int64("stake_cents", req.StakeCents).
		Int("selections", len(req.Selections)).
		Msg("bet placed")

	s.publish(ctx, "bet_placed", func(p ports.EventPublisher) error {
		return p.PublishBetPlaced(ctx, bet)
	})
	return bet, outcome, nil
}

// Settle moves a pending bet to a terminal state and applies the coupled
// credit in the same database transaction. Re-settling with the same
// result replays; a different result is a conflict.
func (s *BetServiceImpl) Settle(ctx context.Context, betID uuid.UUID, result domain.BetResult, payoutCents int64, actor string) (*domain.Bet, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	bet, err := s.betRepo.GetByIDForUpdate(ctx, dbTx, betID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock bet: %w", err))
	}
	if bet == nil {
		return nil, apperror.ErrNotFound("bet")
	}

	target := result.Status()
	switch bet.Status {
	case domain.BetStatusPending:
		// Settleable.
	case target:
		s.log.Info().
			Str("bet_id", betID.String()).
			Str("result", string(result)).
			Msg("settlement replayed")
		return bet, nil
	case domain.BetStatusWon, domain.BetStatusLost, domain.BetStatusVoid:
		return nil, apperror.ErrSettlementConflict(string(bet.Status), string(result))
	default:
		return nil, apperror.ErrInvalidState(string(bet.Status))
	}

	var payout *int64
	switch result {
	case domain.BetResultWon:
		if payoutCents <= 0 {
			return nil, apperror.ErrInvalidAmount()
		}
		if err := s.settlementCredit(ctx, dbTx, bet, payoutCents); err != nil {
			return nil, err
		}
		payout = &payoutCents
	case domain.BetResultVoid:
		if err := s.settlementCredit(ctx, dbTx, bet, bet.StakeCents); err != nil {
			return nil, err
		}
	case domain.BetResultLost:
		// No money moves.
	default:
		return nil, apperror.Validation(fmt.Sprintf("invalid settlement result %q", result))
	}

	now := time.Now().UTC()
	if err := s.betRepo.UpdateSettlement(ctx, dbTx, betID, target, payout, now); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update settlement: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	bet.Status = target
	bet.PayoutCents = payout
	bet.SettledAt = &now

	metrics.BetsSettled.WithLabelValues(string(result)).Inc()
	s.log.Info().
		Str("bet_id", betID.String()).
		Str("result", string(result)).
		Str("actor", actor).
		Msg("bet settled")

	s.publish(ctx, "bet_settled", func(p ports.EventPublisher) error {
		return p.PublishBetSettled(ctx, bet)
	})
	return bet, nil
}

// Get returns a bet by id.
func (s *BetServiceImpl) Get(ctx context.Context, betID uuid.UUID) (*domain.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get bet: %w", err))
	}
	if bet == nil {
		return nil, apperror.ErrNotFound("bet")
	}
	return bet, nil
}

// List returns bets matching the filter, newest first.
func (s *BetServiceImpl) List(ctx context.Context, params ports.BetListParams) ([]domain.Bet, int64, error) {
	bets, total, err := s.betRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list bets: %w", err))
	}
	return bets, total, nil
}

// settlementCredit applies the settlement payout inside the settlement
// transaction. The credit id is derived from the bet id, so a retry
// after a crash between credit and commit replays cleanly.
func (s *BetServiceImpl) settlementCredit(ctx context.Context, dbTx pgx.Tx, bet *domain.Bet, amountCents int64) error {
	_, err := s.ledger.CreditTx(ctx, dbTx, ports.CreditRequest{
		AccountID:          bet.AccountID,
		AmountCents:        amountCents,
		Game:               "sportsbook",
		RoundID:            bet.ID.String(),
		TransactionID:      bet.SettlementTransactionID(),
		DebitTransactionID: bet.DebitTransactionID,
	})
	return err
}

func (s *BetServiceImpl) publish(ctx context.Context, event string, fn func(ports.EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(s.publisher); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("failed to publish event")
	}
}

func buildBetRef(id uuid.UUID) string {
	return "BET-" + id.String()[:8]
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
