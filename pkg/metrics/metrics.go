package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LedgerTransactions counts applied ledger operations.
// kind: debit|credit; outcome: applied|replayed|rejected.
var LedgerTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ledger_transactions_total",
	Help: "Ledger operations by kind and outcome",
}, []string{"kind", "outcome"})

// BetsPlaced counts successfully placed bets.
var BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bets_placed_total",
	Help: "Bets placed",
})

// BetsSettled counts settled bets by result.
var BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bets_settled_total",
	Help: "Bets settled by result",
}, []string{"result"})

// SlipValidations counts bet slip validation outcomes.
var SlipValidations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "betslip_validations_total",
	Help: "Bet slip validations by outcome",
}, []string{"outcome"})
