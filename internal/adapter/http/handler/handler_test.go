package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sportsbook-ledger/internal/adapter/http/dto"
	"sportsbook-ledger/internal/adapter/http/middleware"
	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/internal/core/ports/mocks"
	"sportsbook-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Wallet Handler Tests ---

func TestWalletDebit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(ledger, mocks.NewMockProfileSource(ctrl))

	ledger.EXPECT().Debit(gomock.Any(), ports.DebitRequest{
		AccountID:     "acct-1",
		Username:      "punter01",
		AmountCents:   5000,
		Game:          "sportsbook",
		RoundID:       "round-9",
		TransactionID: "tx-1",
	}).Return(&domain.Transaction{
		ID:                "tx-1",
		Kind:              domain.TransactionKindDebit,
		AccountID:         "acct-1",
		AmountCents:       5000,
		RoundID:           "round-9",
		BalanceAfterCents: 5000,
		AppliedAt:         time.Now().UTC(),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/wallet/debit", dto.WalletDebitRequest{
		AccountID:     "acct-1",
		Username:      "punter01",
		Amount:        50,
		Game:          "sportsbook",
		RoundID:       "round-9",
		TransactionID: "tx-1",
	})

	h.Debit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "tx-1", data["id"])
	assert.Equal(t, 50.0, data["amount"])
	assert.Equal(t, 50.0, data["balance"])
}

func TestWalletDebit_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(ledger, mocks.NewMockProfileSource(ctrl))

	ledger.EXPECT().Debit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientBalance(40, 50))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/wallet/debit", dto.WalletDebitRequest{
		AccountID:     "acct-1",
		Amount:        50,
		TransactionID: "tx-2",
	})

	h.Debit(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_BALANCE", resp["error_code"])
	ctx := resp["context"].(map[string]any)
	assert.Equal(t, 40.0, ctx["available_balance"])
	assert.Equal(t, 50.0, ctx["required_stake"])
}

func TestWalletDebit_MissingTransactionID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockLedgerService(ctrl), mocks.NewMockProfileSource(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/wallet/debit", map[string]any{
		"account_id": "acct-1",
		"amount":     50,
	})

	h.Debit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestWalletCredit_UnknownDebit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(ledger, mocks.NewMockProfileSource(ctrl))

	ledger.EXPECT().Credit(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUnknownDebit("tx-ghost"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/wallet/credit", dto.WalletCreditRequest{
		AccountID:          "acct-1",
		Amount:             126,
		TransactionID:      "tx-3",
		DebitTransactionID: "tx-ghost",
	})

	h.Credit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_DEBIT")
}

func TestWalletProfile_FoldsLedgerBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerService(ctrl)
	profiles := mocks.NewMockProfileSource(ctrl)
	h := NewWalletHandler(ledger, profiles)

	profiles.EXPECT().Profile(gomock.Any(), "acct-1").Return(domain.WalletProfile{
		"userData": map[string]any{"realBalance": 999.0, "nickname": "punter01"},
	}, nil)
	ledger.EXPECT().Balance(gomock.Any(), "acct-1").Return(int64(12555), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/wallet/profile", nil)
	c.Set(middleware.CtxAccountID, "acct-1")

	h.Profile(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	userData := data["userData"].(map[string]any)
	// Ledger balance overrides whatever the upstream profile claimed.
	assert.Equal(t, 125.55, userData["realBalance"])
	assert.Equal(t, "punter01", userData["nickname"])
	assert.Equal(t, 125.55, data["realBalance"])
}

// --- BetSlip Handler Tests ---

func TestBetSlipValidate_InlineFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetSlipHandler(bets)

	bets.EXPECT().Validate(gomock.Any(), "acct-1", gomock.Any(), int64(5000)).Return(&ports.ValidationOutcome{
		OK: false,
		Selections: []ports.SelectionResult{{
			ErrorCode: "ODDS_CHANGED",
			Context:   map[string]any{"submitted_odd": 2.1, "current_odd": 1.8},
		}},
		Balance: ports.BalanceCheck{OK: true, AvailableBalance: 100},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/betslip/validate", dto.BetSlipRequest{
		Selections: []dto.SelectionRequest{{
			FixtureID: "fx-100", MarketID: "mkt-1", Value: "Home", Odd: 2.1, BookmakerID: "bk-6",
		}},
		Stake: 50,
	})
	c.Set(middleware.CtxAccountID, "acct-1")

	h.Validate(c)

	// Inline validation failures ride a 200 envelope.
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, false, data["ok"])
	results := data["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "ODDS_CHANGED", results[0].(map[string]any)["error_code"])
}

func TestBetSlipPlace_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetSlipHandler(bets)

	betID := uuid.New()
	bets.EXPECT().Place(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, req ports.PlaceRequest) (*domain.Bet, *ports.ValidationOutcome, error) {
			assert.Equal(t, "acct-1", req.AccountID)
			assert.Equal(t, "key-123", req.IdempotencyKey)
			assert.Equal(t, int64(5000), req.StakeCents)
			return &domain.Bet{
				ID:         betID,
				Ref:        "BET-" + betID.String()[:8],
				AccountID:  "acct-1",
				StakeCents: 5000,
				Status:     domain.BetStatusPending,
				CreatedAt:  time.Now().UTC(),
			}, &ports.ValidationOutcome{OK: true}, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/betslip/place", dto.BetSlipRequest{
		Selections: []dto.SelectionRequest{{
			FixtureID: "fx-100", MarketID: "mkt-1", Value: "Home", Odd: 2.1, BookmakerID: "bk-6",
		}},
		Stake: 50,
	})
	c.Request.Header.Set(HeaderIdempotencyKey, "key-123")
	c.Set(middleware.CtxAccountID, "acct-1")

	h.Place(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["accepted"])
	bet := data["bet"].(map[string]any)
	assert.Equal(t, betID.String(), bet["id"])
	assert.Equal(t, "pending", bet["status"])
	assert.Equal(t, 50.0, bet["stake"])
}

func TestBetSlipPlace_ValidationRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetSlipHandler(bets)

	bets.EXPECT().Place(gomock.Any(), gomock.Any()).Return(nil, &ports.ValidationOutcome{
		OK: false,
		Balance: ports.BalanceCheck{
			AvailableBalance: 40,
			ErrorCode:        "INSUFFICIENT_BALANCE",
		},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/betslip/place", dto.BetSlipRequest{
		Selections: []dto.SelectionRequest{{
			FixtureID: "fx-100", MarketID: "mkt-1", Value: "Home", Odd: 2.1, BookmakerID: "bk-6",
		}},
		Stake: 50,
	})
	c.Set(middleware.CtxAccountID, "acct-1")

	h.Place(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, false, data["accepted"])
}

func TestBetSlipPlace_EmptySelections(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewBetSlipHandler(mocks.NewMockBetService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/betslip/place", dto.BetSlipRequest{Stake: 50})
	c.Set(middleware.CtxAccountID, "acct-1")

	h.Place(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Bet Handler Tests ---

func TestSettle_Won(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetHandler(bets)

	betID := uuid.New()
	payout := int64(10500)
	now := time.Now().UTC()
	bets.EXPECT().Settle(gomock.Any(), betID, domain.BetResultWon, int64(10500), "trader-7").Return(&domain.Bet{
		ID:          betID,
		AccountID:   "acct-1",
		StakeCents:  5000,
		Status:      domain.BetStatusWon,
		PayoutCents: &payout,
		SettledAt:   &now,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bets/"+betID.String()+"/settle", dto.SettleRequest{
		Result: "won",
		Payout: 105,
	})
	c.Params = gin.Params{{Key: "id", Value: betID.String()}}
	c.Set(middleware.CtxUsername, "trader-7")

	h.Settle(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "won", data["status"])
	assert.Equal(t, 105.0, data["payout"])
}

func TestSettle_InvalidResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewBetHandler(mocks.NewMockBetService(ctrl))

	betID := uuid.New()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bets/"+betID.String()+"/settle", dto.SettleRequest{
		Result: "cancelled",
	})
	c.Params = gin.Params{{Key: "id", Value: betID.String()}}

	h.Settle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestSettle_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetHandler(bets)

	betID := uuid.New()
	bets.EXPECT().Settle(gomock.Any(), betID, domain.BetResultWon, gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrSettlementConflict("lost", "won"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bets/"+betID.String()+"/settle", dto.SettleRequest{
		Result: "won",
		Payout: 105,
	})
	c.Params = gin.Params{{Key: "id", Value: betID.String()}}

	h.Settle(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SETTLEMENT_CONFLICT")
}

func TestSettle_BadBetID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewBetHandler(mocks.NewMockBetService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/bets/not-a-uuid/settle", dto.SettleRequest{Result: "won"})
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Settle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetHandler(bets)

	betID := uuid.New()
	bets.EXPECT().Get(gomock.Any(), betID).Return(nil, apperror.ErrNotFound("bet"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/bets/"+betID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: betID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBets_Paginated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bets := mocks.NewMockBetService(ctrl)
	h := NewBetHandler(bets)

	bets.EXPECT().List(gomock.Any(), ports.BetListParams{
		AccountID: "acct-1",
		Page:      1,
		PageSize:  20,
	}).Return([]domain.Bet{
		{ID: uuid.New(), AccountID: "acct-1", StakeCents: 5000, Status: domain.BetStatusPending},
	}, int64(41), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/bets", nil)
	c.Set(middleware.CtxAccountID, "acct-1")

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, 41.0, data["total"])
	assert.Equal(t, 3.0, data["total_pages"])
	assert.Len(t, data["items"], 1)
}
