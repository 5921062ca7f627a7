package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string         `json:"error_code"`
	Message    string         `json:"message"`
	Context    map[string]any `json:"context,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithContext attaches structured context fields and returns the error.
func (e *AppError) WithContext(ctx map[string]any) *AppError {
	e.Context = ctx
	return e
}

// ---- Wallet ledger ----

func ErrInsufficientBalance(availableBalance, requiredStake float64) *AppError {
	return New("INSUFFICIENT_BALANCE", "Insufficient balance for the requested stake", http.StatusPaymentRequired).
		WithContext(map[string]any{
			"available_balance": availableBalance,
			"required_stake":    requiredStake,
		})
}

func ErrInvalidAmount() *AppError {
	return New("INVALID_AMOUNT", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrUnknownDebit(debitTransactionID string) *AppError {
	return New("UNKNOWN_DEBIT", "Referenced debit transaction does not exist", http.StatusBadRequest).
		WithContext(map[string]any{"debit_transaction_id": debitTransactionID})
}

func ErrDuplicateCredit(debitTransactionID, existingTransactionID string) *AppError {
	return New("DUPLICATE_CREDIT", "Referenced debit has already been credited", http.StatusConflict).
		WithContext(map[string]any{
			"debit_transaction_id":    debitTransactionID,
			"existing_transaction_id": existingTransactionID,
		})
}

// ---- Bet slip validation ----

func ErrOddsChanged(submittedOdd, currentOdd float64) *AppError {
	return New("ODDS_CHANGED", "Odds have changed since the selection was quoted", http.StatusConflict).
		WithContext(map[string]any{
			"submitted_odd": submittedOdd,
			"current_odd":   currentOdd,
		})
}

func ErrSelectionUnavailable(reason string) *AppError {
	return New("SELECTION_UNAVAILABLE", "Selection is not available in the current odds snapshot", http.StatusConflict).
		WithContext(map[string]any{"reason": reason})
}

// ---- Bet lifecycle ----

func ErrInvalidState(status string) *AppError {
	return New("INVALID_STATE", "Bet is not in a settleable state", http.StatusConflict).
		WithContext(map[string]any{"status": status})
}

func ErrSettlementConflict(recorded, requested string) *AppError {
	return New("SETTLEMENT_CONFLICT", "Bet has already been settled with a different result", http.StatusConflict).
		WithContext(map[string]any{
			"recorded_result":  recorded,
			"requested_result": requested,
		})
}

// ---- Request shape & auth ----

// Validation returns a VALIDATION_ERROR for malformed request shapes.
func Validation(message string) *AppError {
	return New("VALIDATION_ERROR", message, http.StatusBadRequest)
}

func ErrUnauthorized() *AppError {
	return New("UNAUTHORIZED", "Invalid or missing bearer token", http.StatusUnauthorized)
}

func ErrNotFound(entity string) *AppError {
	return New("NOT_FOUND", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- System & Infrastructure ----

// InternalError wraps an internal error as an INTERNAL_ERROR.
func InternalError(err error) *AppError {
	return Wrap("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError, err)
}
