package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sportsbook-ledger/internal/core/domain"
	"sportsbook-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// Client fetches odds snapshots from the external sports data proxy.
// An optional OddsCache fronts the feed; cache failures degrade to a
// direct fetch, never to an error.
type Client struct {
	baseURL  string
	apiKey   string
	httpc    *http.Client
	cache    ports.OddsCache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewClient creates a new odds feed client. cache may be nil.
func NewClient(baseURL, apiKey string, httpc *http.Client, cache ports.OddsCache, cacheTTL time.Duration, log zerolog.Logger) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		httpc:    httpc,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Snapshot implements ports.OddsSource.
func (c *Client) Snapshot(ctx context.Context, fixtureID string) (*domain.OddsSnapshot, error) {
	if c.cache != nil {
		snap, err := c.cache.Get(ctx, fixtureID)
		if err != nil {
			c.log.Warn().Err(err).Str("fixture_id", fixtureID).Msg("odds cache read failed, fetching upstream")
		}
		if snap != nil {
			return snap, nil
		}
	}

	snap, err := c.fetch(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, fixtureID, snap, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("fixture_id", fixtureID).Msg("odds cache write failed")
		}
	}
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, fixtureID string) (*domain.OddsSnapshot, error) {
	url := fmt.Sprintf("%s/fixtures/%s/odds", c.baseURL, fixtureID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build odds request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch odds snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds feed returned status %d for fixture %s", resp.StatusCode, fixtureID)
	}

	snap := &domain.OddsSnapshot{}
	if err := json.NewDecoder(resp.Body).Decode(snap); err != nil {
		return nil, fmt.Errorf("decode odds snapshot: %w", err)
	}
	if snap.FixtureID == "" {
		snap.FixtureID = fixtureID
	}
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}
