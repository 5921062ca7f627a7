package service

import (
	"testing"

	"sportsbook-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFixture() *domain.OddsSnapshot {
	handicap := "-1.5"
	return &domain.OddsSnapshot{
		FixtureID: "fx-1",
		Bookmakers: []domain.Bookmaker{
			{
				ID: "bm-1",
				Bets: []domain.MarketOdds{
					{
						ID:   "mkt-1",
						Name: "Match Winner",
						Values: []domain.OddValue{
							{Value: "Home", Odd: 1.8},
							{Value: "Away", Odd: 4.2},
						},
					},
					{
						ID:   "mkt-2",
						Name: "Asian Handicap",
						Values: []domain.OddValue{
							{Value: "Home", Odd: 2.05, Handicap: &handicap},
						},
					},
				},
			},
		},
	}
}

func TestValidateSelection_OK(t *testing.T) {
	v := NewOddsValidator()
	sel := domain.Selection{FixtureID: "fx-1", MarketID: "mkt-1", Value: "Home", Odd: 1.8, BookmakerID: "bm-1"}

	res := v.ValidateSelection(sel, snapshotFixture())

	assert.True(t, res.OK)
	assert.Empty(t, res.ErrorCode)
}

func TestValidateSelection_OddsChanged(t *testing.T) {
	v := NewOddsValidator()
	sel := domain.Selection{FixtureID: "fx-1", MarketID: "mkt-1", Value: "Home", Odd: 2.1, BookmakerID: "bm-1"}

	res := v.ValidateSelection(sel, snapshotFixture())

	assert.False(t, res.OK)
	assert.Equal(t, "ODDS_CHANGED", res.ErrorCode)
	require.NotNil(t, res.Context)
	assert.Equal(t, 2.1, res.Context["submitted_odd"])
	assert.Equal(t, 1.8, res.Context["current_odd"])
}

func TestValidateSelection_Unavailable(t *testing.T) {
	v := NewOddsValidator()
	base := domain.Selection{FixtureID: "fx-1", MarketID: "mkt-1", Value: "Home", Odd: 1.8, BookmakerID: "bm-1"}

	tests := []struct {
		name   string
		mutate func(*domain.Selection)
	}{
		{"unknown bookmaker", func(s *domain.Selection) { s.BookmakerID = "bm-404" }},
		{"unknown market", func(s *domain.Selection) { s.MarketID = "mkt-404" }},
		{"unknown value", func(s *domain.Selection) { s.Value = "Draw" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := base
			tt.mutate(&sel)
			res := v.ValidateSelection(sel, snapshotFixture())
			assert.False(t, res.OK)
			assert.Equal(t, "SELECTION_UNAVAILABLE", res.ErrorCode)
		})
	}
}

func TestValidateSelection_NilSnapshot(t *testing.T) {
	v := NewOddsValidator()
	sel := domain.Selection{FixtureID: "fx-1", MarketID: "mkt-1", Value: "Home", Odd: 1.8, BookmakerID: "bm-1"}

	res := v.ValidateSelection(sel, nil)

	assert.False(t, res.OK)
	assert.Equal(t, "SELECTION_UNAVAILABLE", res.ErrorCode)
}

func TestValidateSelection_HandicapMismatch(t *testing.T) {
	v := NewOddsValidator()
	other := "+0.5"
	sel := domain.Selection{FixtureID: "fx-1", MarketID: "mkt-2", Value: "Home", Odd: 2.05, BookmakerID: "bm-1", Handicap: &other}

	res := v.ValidateSelection(sel, snapshotFixture())

	assert.Equal(t, "SELECTION_UNAVAILABLE", res.ErrorCode)
}

func TestValidateSelection_HandicapMatch(t *testing.T) {
	v := NewOddsValidator()
	handicap := "-1.5"
	sel := domain.Selection{FixtureID: "fx-1", MarketID: "mkt-2", Value: "Home", Odd: 2.05, BookmakerID: "bm-1", Handicap: &handicap}

	res := v.ValidateSelection(sel, snapshotFixture())

	assert.True(t, res.OK)
}
