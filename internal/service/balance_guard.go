package service

import (
	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
)

// EnsureSufficientBalance checks the balance resolved from an opaque
// wallet profile against a required stake. Advisory during validate;
// the ledger re-checks authoritatively under lock when money moves.
func EnsureSufficientBalance(profile domain.WalletProfile, stakeCents int64) ports.BalanceCheck {
	available := domain.ExtractBalance(profile)
	if domain.Cents(available) < stakeCents {
		e := apperror.ErrInsufficientBalance(available, domain.Amount(stakeCents))
		return ports.BalanceCheck{
			AvailableBalance: available,
			ErrorCode:        e.Code,
			Message:          e.Message,
			Context:          e.Context,
		}
	}
	return ports.BalanceCheck{
		OK:               true,
		AvailableBalance: available,
	}
}
