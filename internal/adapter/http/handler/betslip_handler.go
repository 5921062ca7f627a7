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
	"github.com/google/uuid"
)

// HeaderIdempotencyKey carries the client's placement idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// BetSlipHandler handles bet slip validation and placement.
type BetSlipHandler struct {
	bets ports.BetService
}

// NewBetSlipHandler creates a new BetSlipHandler.
func NewBetSlipHandler(bets ports.BetService) *BetSlipHandler {
	return &BetSlipHandler{bets: bets}
}

// Validate handles POST /betslip/validate.
func (h *BetSlipHandler) Validate(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)
	if accountID == "" {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	var req dto.BetSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	outcome, err := h.bets.Validate(c.Request.Context(), accountID, toSelections(req.Selections), domain.Cents(req.Stake))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, outcome)
}

// Place handles POST /betslip/place. A missing Idempotency-Key header
// gets a generated one; retried clients must send their own.
func (h *BetSlipHandler) Place(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)
	if accountID == "" {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	var req dto.BetSlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	key := c.GetHeader(HeaderIdempotencyKey)
	if key == "" {
		key = uuid.New().String()
	}

	bet, outcome, err := h.bets.Place(c.Request.Context(), ports.PlaceRequest{
		AccountID:      accountID,
		Username:       c.GetString(middleware.CtxUsername),
		Selections:     toSelections(req.Selections),
		StakeCents:     domain.Cents(req.Stake),
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if bet == nil {
		// Validation rejected the slip; report per-selection results in
		// a success envelope so the client can reprice.
		response.OK(c, gin.H{"accepted": false, "validation": outcome})
		return
	}

	response.Created(c, gin.H{"accepted": true, "bet": toBetResponse(bet)})
}

func toSelections(in []dto.SelectionRequest) []domain.Selection {
	out := make([]domain.Selection, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Selection{
			FixtureID:   s.FixtureID,
			MarketID:    s.MarketID,
			Value:       s.Value,
			Odd:         s.Odd,
			BookmakerID: s.BookmakerID,
			Handicap:    s.Handicap,
		})
	}
	return out
}

func toBetResponse(bet *domain.Bet) dto.BetResponse {
	resp := dto.BetResponse{
		ID:        bet.ID.String(),
		Ref:       bet.Ref,
		AccountID: bet.AccountID,
		Stake:     domain.Amount(bet.StakeCents),
		Status:    string(bet.Status),
		CreatedAt: bet.CreatedAt.Format(time.RFC3339),
	}
	for _, s := range bet.Selections {
		resp.Selections = append(resp.Selections, dto.SelectionRequest{
			FixtureID:   s.FixtureID,
			MarketID:    s.MarketID,
			Value:       s.Value,
			Odd:         s.Odd,
			BookmakerID: s.BookmakerID,
			Handicap:    s.Handicap,
		})
	}
	if bet.PayoutCents != nil {
		payout := domain.Amount(*bet.PayoutCents)
		resp.Payout = &payout
	}
	if bet.SettledAt != nil {
		settledAt := bet.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &settledAt
	}
	return resp
}
