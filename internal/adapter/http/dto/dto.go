package dto

// WalletDebitRequest is the request body for a wallet debit. Amount is
// in currency units; amount validation happens in the ledger so a zero
// or negative amount maps to INVALID_AMOUNT rather than a bind error.
type WalletDebitRequest struct {
	AccountID     string  `json:"account_id" binding:"required,max=100,safe_id"`
	Username      string  `json:"username" binding:"max=100"`
	Amount        float64 `json:"amount"`
	Game          string  `json:"game" binding:"max=100"`
	RoundID       string  `json:"round_id" binding:"max=100"`
	TransactionID string  `json:"transaction_id" binding:"required,max=100,safe_id"`
}

// WalletCreditRequest is the request body for a wallet credit.
type WalletCreditRequest struct {
	AccountID          string  `json:"account_id" binding:"required,max=100,safe_id"`
	Username           string  `json:"username" binding:"max=100"`
	Amount             float64 `json:"amount"`
	Game               string  `json:"game" binding:"max=100"`
	RoundID            string  `json:"round_id" binding:"max=100"`
	TransactionID      string  `json:"transaction_id" binding:"required,max=100,safe_id"`
	DebitTransactionID string  `json:"debit_transaction_id" binding:"required,max=100,safe_id"`
}

// TransactionResponse is the response body for ledger operations.
type TransactionResponse struct {
	ID                   string  `json:"id"`
	Kind                 string  `json:"kind"`
	AccountID            string  `json:"account_id"`
	Amount               float64 `json:"amount"`
	RoundID              string  `json:"round_id,omitempty"`
	RelatedTransactionID *string `json:"related_transaction_id,omitempty"`
	Balance              float64 `json:"balance"`
	AppliedAt            string  `json:"applied_at"`
}

// SelectionRequest is one leg of a bet slip.
type SelectionRequest struct {
	FixtureID   string  `json:"fixture_id" binding:"required,max=100,safe_id"`
	MarketID    string  `json:"market_id" binding:"required,max=100,safe_id"`
	Value       string  `json:"value" binding:"required,max=200"`
	Odd         float64 `json:"odd" binding:"required,gt=0"`
	BookmakerID string  `json:"bookmaker_id" binding:"required,max=100,safe_id"`
	Handicap    *string `json:"handicap,omitempty"`
}

// BetSlipRequest is the request body for validate and place.
type BetSlipRequest struct {
	Selections []SelectionRequest `json:"selections" binding:"required,min=1,max=30,dive"`
	Stake      float64            `json:"stake"`
}

// SettleRequest is the request body for bet settlement. Payout is
// required for won, ignored for lost and void.
type SettleRequest struct {
	Result string  `json:"result" binding:"required"`
	Payout float64 `json:"payout"`
}

// BetResponse is the response body for bet reads, placement and
// settlement.
type BetResponse struct {
	ID         string             `json:"id"`
	Ref        string             `json:"ref"`
	AccountID  string             `json:"account_id"`
	Stake      float64            `json:"stake"`
	Selections []SelectionRequest `json:"selections"`
	Status     string             `json:"status"`
	Payout     *float64           `json:"payout,omitempty"`
	CreatedAt  string             `json:"created_at"`
	SettledAt  *string            `json:"settled_at,omitempty"`
}

// BetListResponse wraps a paginated bet list.
type BetListResponse struct {
	Items      []BetResponse `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}
