package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/basedrum/basedrum-api/internal/logger"
)

const fetchTimeout = 10 * time.Second

// Client fetches identity snapshots from the external data service.
// Fetch failures are recoverable by design: callers get a nil vector and
// generation proceeds with default constraints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given data-service base URL.
// An empty base URL yields a client whose Fetch always returns nil.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch retrieves the identity snapshot for a wallet address. Any failure
// (network, non-200, malformed body) is logged and returns nil - never an
// error that could block playback or generation.
func (c *Client) Fetch(ctx context.Context, address string) *Vector {
	if c.baseURL == "" || address == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/identity/%s", c.baseURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Warn("Identity fetch request build failed", logger.Fields{"address": address, "error": err.Error()})
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Identity fetch failed, using defaults", logger.Fields{"address": address, "error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Identity service returned non-200", logger.Fields{"address": address, "status": resp.StatusCode})
		return nil
	}

	var snap snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		logger.Warn("Identity snapshot decode failed", logger.Fields{"address": address, "error": err.Error()})
		return nil
	}

	v := vectorFromSnapshot(&snap)
	if v.Address == "" {
		v.Address = address
	}
	return v
}

// ParseSnapshot decodes a raw snapshot document (e.g. one posted directly
// by a client that already fetched its own data) into a Vector.
func ParseSnapshot(raw []byte) (*Vector, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("malformed identity snapshot: %w", err)
	}
	return vectorFromSnapshot(&snap), nil
}
