package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Store persists a binary payload and returns its public URL.
type Store interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// HTTPStore uploads payloads to the remote blob service. Single attempt,
// bounded timeout.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStore builds a blob client for the given base URL and API token.
func NewHTTPStore(baseURL, token string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Upload stores the payload under name and returns the served URL.
func (s *HTTPStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/upload?name=%s", s.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build blob request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("blob upload returned %s", resp.Status)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode blob response: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("blob response missing url")
	}
	return body.URL, nil
}

// MemoryStore keeps uploads in memory and serves deterministic URLs. Used
// in development when no blob service is configured, and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore builds an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = append([]byte(nil), data...)
	return "memory://" + name, nil
}
