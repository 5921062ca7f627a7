package handler

import (
	"time"

	"sportsbook-ledger/internal/adapter/http/dto"
	"sportsbook-ledger/internal/adapter/http/middleware"
	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
	"sportsbook-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet ledger endpoints.
type WalletHandler struct {
	ledger   ports.LedgerService
	profiles ports.ProfileSource
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger ports.LedgerService, profiles ports.ProfileSource) *WalletHandler {
	return &WalletHandler{ledger: ledger, profiles: profiles}
}

// Debit handles POST /wallet/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	var req dto.WalletDebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledger.Debit(c.Request.Context(), ports.DebitRequest{
		AccountID:     req.AccountID,
		Username:      req.Username,
		AmountCents:   domain.Cents(req.Amount),
		Game:          req.Game,
		RoundID:       req.RoundID,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Credit handles POST /wallet/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	var req dto.WalletCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledger.Credit(c.Request.Context(), ports.CreditRequest{
		AccountID:          req.AccountID,
		Username:           req.Username,
		AmountCents:        domain.Cents(req.Amount),
		Game:               req.Game,
		RoundID:            req.RoundID,
		TransactionID:      req.TransactionID,
		DebitTransactionID: req.DebitTransactionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Profile handles GET /wallet/profile. The upstream profile document is
// proxied as-is with the authoritative ledger balance folded in, so
// callers reading any of the conventional balance locations see the
// ledger's number.
func (h *WalletHandler) Profile(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)
	if accountID == "" {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	profile, err := h.profiles.Profile(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if profile == nil {
		profile = domain.WalletProfile{}
	}

	cents, err := h.ledger.Balance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	balance := domain.Amount(cents)

	userData, _ := profile["userData"].(map[string]any)
	if userData == nil {
		userData = map[string]any{}
	}
	userData["realBalance"] = balance
	profile["userData"] = userData
	profile["realBalance"] = balance

	response.OK(c, profile)
}

func toTransactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                   txn.ID,
		Kind:                 string(txn.Kind),
		AccountID:            txn.AccountID,
		Amount:               domain.Amount(txn.AmountCents),
		RoundID:              txn.RoundID,
		RelatedTransactionID: txn.RelatedTransactionID,
		Balance:              domain.Amount(txn.BalanceAfterCents),
		AppliedAt:            txn.AppliedAt.Format(time.RFC3339),
	}
}
