package redis

import (
	"context"
	"testing"
	"time"

	"sportsbook-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *domain.OddsSnapshot {
	return &domain.OddsSnapshot{
		FixtureID: "fx-1",
		Bookmakers: []domain.Bookmaker{
			{
				ID: "bm-1",
				Bets: []domain.MarketOdds{
					{ID: "mkt-1", Name: "Match Winner", Values: []domain.OddValue{
						{Value: "Home", Odd: 1.85},
					}},
				},
			},
		},
		FetchedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestOddsCache_SetGet(t *testing.T) {
	client := newTestClient(t)
	cache := NewOddsCache(client)
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, cache.Set(ctx, "fx-1", snap, time.Minute))

	got, err := cache.Get(ctx, "fx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fx-1", got.FixtureID)
	require.Len(t, got.Bookmakers, 1)
	assert.Equal(t, 1.85, got.Bookmakers[0].Bets[0].Values[0].Odd)
}

func TestOddsCache_Get_Miss(t *testing.T) {
	client := newTestClient(t)
	cache := NewOddsCache(client)

	got, err := cache.Get(context.Background(), "fx-404")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestOddsCache_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := NewOddsCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "fx-1", sampleSnapshot(), time.Second))

	mr.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, "fx-1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}
