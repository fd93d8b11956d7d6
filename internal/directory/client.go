package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const syncPath = "/api/users/sync"

// Record is the address-keyed identity slice pushed to the companion
// directory. PublicAddress is the upsert key.
type Record struct {
	PublicAddress string  `json:"publicAddress"`
	Username      string  `json:"username,omitempty"`
	DisplayName   *string `json:"displayName,omitempty"`
	AvatarURL     *string `json:"avatarUrl,omitempty"`
	FarcasterID   int64   `json:"farcasterId,omitempty"`
}

// Result reports the directory's verdict on an upsert. The directory is
// the authority on whether the record was created or updated.
type Result struct {
	Created bool            `json:"created"`
	User    json.RawMessage `json:"user"`
}

// Client performs directory upserts. A client without a base URL or API
// key is disabled: Sync reports ok=false and no error, which callers treat
// as "nothing to do".
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a directory client. Empty baseURL or apiKey yields a
// disabled client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether the companion directory is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Sync upserts one record keyed by its public address. ok is false when
// the client is disabled.
func (c *Client) Sync(ctx context.Context, rec Record) (Result, bool, error) {
	if !c.Enabled() {
		return Result{}, false, nil
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return Result{}, true, fmt.Errorf("encode directory record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+syncPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, true, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, true, fmt.Errorf("directory request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, true, fmt.Errorf("directory sync returned %s", resp.Status)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, true, fmt.Errorf("decode directory response: %w", err)
	}
	return result, true, nil
}
