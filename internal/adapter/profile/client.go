package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sportsbook-ledger/internal/core/domain"
)

// Client fetches the opaque wallet-profile document from the upstream
// wallet collaborator. The document's shape is provider-specific; the
// core only reads it through domain.ExtractBalance.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a new profile source client.
func NewClient(baseURL, apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, httpc: httpc}
}

// Profile implements ports.ProfileSource.
func (c *Client) Profile(ctx context.Context, accountID string) (domain.WalletProfile, error) {
	url := fmt.Sprintf("%s/players/%s/profile", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch wallet profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile source returned status %d for account %s", resp.StatusCode, accountID)
	}

	var doc domain.WalletProfile
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode wallet profile: %w", err)
	}
	return doc, nil
}
