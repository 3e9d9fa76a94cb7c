package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPFetcher fetches notifications from the notifications endpoint with a
// bearer token. The per-request deadline comes from the context the Poller
// passes in.
type HTTPFetcher struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for baseURL (e.g. "http://localhost:8080").
func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{},
	}
}

type listResponse struct {
	Data []Notice `json:"data"`
}

// Fetch returns the user's notifications, newest first.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Notice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/api/user/notifications", nil)
	if err != nil {
		return nil, err
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notifications fetch returned status %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return body.Data, nil
}
