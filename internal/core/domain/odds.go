package domain

import "time"

// OddValue is a single priced outcome inside a market.
type OddValue struct {
	Value    string  `json:"value"`
	Odd      float64 `json:"odd"`
	Handicap *string `json:"handicap,omitempty"`
}

// MarketOdds groups the priced outcomes of one market (betId upstream).
type MarketOdds struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Values []OddValue `json:"values"`
}

// Bookmaker is one bookmaker's markets within a fixture snapshot.
type Bookmaker struct {
	ID   string       `json:"id"`
	Bets []MarketOdds `json:"bets"`
}

// OddsSnapshot is a point-in-time view of a fixture's prices, sourced
// from the external odds collaborator. Advisory truth at validation time
// only; never mutated.
type OddsSnapshot struct {
	FixtureID  string      `json:"fixture_id"`
	Bookmakers []Bookmaker `json:"bookmakers"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

// Bookmaker returns the bookmaker with the given id, or nil.
func (s *OddsSnapshot) Bookmaker(id string) *Bookmaker {
	for i := range s.Bookmakers {
		if s.Bookmakers[i].ID == id {
			return &s.Bookmakers[i]
		}
	}
	return nil
}

// Market returns the market with the given id, or nil.
func (b *Bookmaker) Market(id string) *MarketOdds {
	for i := range b.Bets {
		if b.Bets[i].ID == id {
			return &b.Bets[i]
		}
	}
	return nil
}

// Find returns the priced outcome matching value and handicap, or nil.
// Handicap only participates in the match when the selection carries one.
func (m *MarketOdds) Find(value string, handicap *string) *OddValue {
	for i := range m.Values {
		v := &m.Values[i]
		if v.Value != value {
			continue
		}
		if handicap != nil {
			if v.Handicap == nil || *v.Handicap != *handicap {
				continue
			}
		}
		return v
	}
	return nil
}
