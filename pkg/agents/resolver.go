package agents

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// URLResolver picks the agents backend to talk to. It probes the primary
// (usually local) backend's health endpoint first and falls back to the cloud
// deployment when the probe fails. The result is cached after the first
// successful resolution.
type URLResolver struct {
	primaryURL  string
	fallbackURL string
	client      *http.Client

	mu       sync.Mutex
	resolved string
}

func NewURLResolver(primaryURL, fallbackURL string, probeTimeout time.Duration) *URLResolver {
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}
	return &URLResolver{
		primaryURL:  primaryURL,
		fallbackURL: fallbackURL,
		client:      &http.Client{Timeout: probeTimeout},
	}
}

// Resolve returns the backend base URL to use for agent calls.
func (r *URLResolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != "" {
		return r.resolved, nil
	}

	if r.primaryURL != "" && r.probe(ctx, r.primaryURL) {
		r.resolved = r.primaryURL
		return r.resolved, nil
	}

	if r.fallbackURL != "" {
		r.resolved = r.fallbackURL
		return r.resolved, nil
	}

	if r.primaryURL == "" {
		return "", fmt.Errorf("no agents backend URL configured")
	}

	// No fallback configured; use the primary even though the probe failed so
	// the actual call surfaces a proper transport error.
	return r.primaryURL, nil
}

// Reset clears the cached URL so the next Resolve probes again.
func (r *URLResolver) Reset() {
	r.mu.Lock()
	r.resolved = ""
	r.mu.Unlock()
}

func (r *URLResolver) probe(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
