package service

import (
	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
)

// OddsValidator compares a submitted selection against a freshly
// fetched odds snapshot. Stateless and read-only; safe to run
// repeatedly over the same inputs.
type OddsValidator struct{}

// NewOddsValidator creates a new OddsValidator.
func NewOddsValidator() *OddsValidator {
	return &OddsValidator{}
}

// ValidateSelection locates the selection's priced outcome inside the
// snapshot and compares prices. Prices are quoted upstream to a fixed
// decimal precision, so comparison is exact: any drift is a hard stop,
// because a stale price misrepresents the payout the bettor agreed to.
func (v *OddsValidator) ValidateSelection(sel domain.Selection, snapshot *domain.OddsSnapshot) ports.SelectionResult {
	if snapshot == nil {
		return failResult(sel, apperror.ErrSelectionUnavailable("no odds snapshot for fixture"))
	}

	bm := snapshot.Bookmaker(sel.BookmakerID)
	if bm == nil {
		return failResult(sel, apperror.ErrSelectionUnavailable("bookmaker not present in snapshot"))
	}

	mkt := bm.Market(sel.MarketID)
	if mkt == nil {
		return failResult(sel, apperror.ErrSelectionUnavailable("market not present for bookmaker"))
	}

	val := mkt.Find(sel.Value, sel.Handicap)
	if val == nil {
		return failResult(sel, apperror.ErrSelectionUnavailable("value not present in market"))
	}

	if val.Odd != sel.Odd {
		return failResult(sel, apperror.ErrOddsChanged(sel.Odd, val.Odd))
	}

	return ports.SelectionResult{Selection: sel, OK: true}
}

func failResult(sel domain.Selection, e *apperror.AppError) ports.SelectionResult {
	return ports.SelectionResult{
		Selection: sel,
		ErrorCode: e.Code,
		Message:   e.Message,
		Context:   e.Context,
	}
}
