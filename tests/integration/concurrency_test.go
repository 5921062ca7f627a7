package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"sportsbook-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The in-memory transactor serializes transactions the way row locks do
// against real PostgreSQL, so these tests assert the strict outcomes:
// contended debits never overdraw and retried placements never fork.

func postJSON(t *testing.T, url, token string, body any, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestIntegration_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedAccount("acct-1", "alice", 10000)
	token := signToken(t, "acct-1", "alice")

	// Two debits of 60 race against a balance of 100. Exactly one can
	// win; the loser must see INSUFFICIENT_BALANCE rather than pushing
	// the balance negative.
	var wg sync.WaitGroup
	var successes, insufficient atomic.Int32

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := postJSON(t, app.server.URL+"/wallet/debit", token, map[string]any{
				"account_id":     "acct-1",
				"amount":         60.0,
				"transaction_id": fmt.Sprintf("race-debit-%d", n),
			}, nil)
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				successes.Add(1)
			case http.StatusPaymentRequired:
				insufficient.Add(1)
			default:
				t.Errorf("unexpected status %d", resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(1), insufficient.Load())

	acct, err := app.accounts.GetByID(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), acct.BalanceCents)
}

func TestIntegration_ManyConcurrentDebitsDrainExactly(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedAccount("acct-1", "alice", 10000)
	token := signToken(t, "acct-1", "alice")

	// 20 debits of 10 against a balance of 100: exactly 10 succeed and
	// the account lands on zero.
	const workers = 20
	var wg sync.WaitGroup
	var successes atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := postJSON(t, app.server.URL+"/wallet/debit", token, map[string]any{
				"account_id":     "acct-1",
				"amount":         10.0,
				"transaction_id": fmt.Sprintf("drain-debit-%d", n),
			}, nil)
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(10), successes.Load())

	acct, err := app.accounts.GetByID(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.BalanceCents)
}

func TestIntegration_ConcurrentIdenticalDebitsApplyOnce(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedAccount("acct-1", "alice", 10000)
	token := signToken(t, "acct-1", "alice")

	// Same transaction id fired concurrently: one applies, the rest
	// replay the recorded entry. Only a single debit may land.
	const workers = 5
	var wg sync.WaitGroup
	var oks atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := postJSON(t, app.server.URL+"/wallet/debit", token, map[string]any{
				"account_id":     "acct-1",
				"amount":         25.0,
				"transaction_id": "same-key",
			}, nil)
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				oks.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(workers), oks.Load())

	acct, err := app.accounts.GetByID(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7500), acct.BalanceCents)
}

func TestIntegration_ConcurrentIdenticalPlacesCreateOneBet(t *testing.T) {
	app := newTestApp(t)
	defer app.close()
	app.seedAccount("acct-1", "alice", 10000)
	app.odds.set("fx-100", matchWinnerSnapshot("fx-100", 1.85))
	app.profiles.set("acct-1", domain.WalletProfile{"userData": map[string]any{"realBalance": 100.0}})
	token := signToken(t, "acct-1", "alice")

	const workers = 5
	var wg sync.WaitGroup
	var created atomic.Int32

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := postJSON(t, app.server.URL+"/betslip/place", token, map[string]any{
				"selections": []map[string]any{homeSelectionBody(1.85)},
				"stake":      20.0,
			}, map[string]string{"Idempotency-Key": "race-place-key"})
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	// Every retry resolves to a bet, but only one bet and one debit
	// exist afterwards.
	assert.Equal(t, int32(workers), created.Load())

	app.bets.mu.RLock()
	betCount := len(app.bets.bets)
	app.bets.mu.RUnlock()
	assert.Equal(t, 1, betCount)

	acct, err := app.accounts.GetByID(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8000), acct.BalanceCents)
}
