package handler

import (
	"strconv"

	"sportsbook-ledger/internal/adapter/http/dto"
	"sportsbook-ledger/internal/adapter/http/middleware"
	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/pkg/apperror"
	"sportsbook-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BetHandler handles settlement and bet reads.
type BetHandler struct {
	bets ports.BetService
}

// NewBetHandler creates a new BetHandler.
func NewBetHandler(bets ports.BetService) *BetHandler {
	return &BetHandler{bets: bets}
}

// Settle handles POST /bets/:id/settle.
func (h *BetHandler) Settle(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid bet id"))
		return
	}

	var req dto.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := domain.ParseBetResult(req.Result)
	if err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	actor := c.GetString(middleware.CtxUsername)
	if actor == "" {
		actor = c.GetString(middleware.CtxAccountID)
	}

	bet, err := h.bets.Settle(c.Request.Context(), betID, result, domain.Cents(req.Payout), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBetResponse(bet))
}

// Get handles GET /bets/:id.
func (h *BetHandler) Get(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid bet id"))
		return
	}

	bet, err := h.bets.Get(c.Request.Context(), betID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBetResponse(bet))
}

// List handles GET /bets for the authenticated account.
func (h *BetHandler) List(c *gin.Context) {
	accountID := c.GetString(middleware.CtxAccountID)
	if accountID == "" {
		response.Error(c, apperror.ErrUnauthorized())
		return
	}

	params := ports.BetListParams{
		AccountID: accountID,
		Page:      parseIntDefault(c.Query("page"), 1),
		PageSize:  parseIntDefault(c.Query("page_size"), 20),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.BetStatus(raw)
		switch status {
		case domain.BetStatusPending, domain.BetStatusWon, domain.BetStatusLost, domain.BetStatusVoid:
			params.Status = &status
		default:
			response.Error(c, apperror.Validation("invalid status filter"))
			return
		}
	}

	bets, total, err := h.bets.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.BetResponse, 0, len(bets))
	for i := range bets {
		items = append(items, toBetResponse(&bets[i]))
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize != 0 {
		totalPages++
	}

	response.OK(c, dto.BetListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
