// Package healthcheck pings a healthchecks.io-style monitoring endpoint.
package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger signals run start, success, and failure to a monitoring URL.
// A nil Pinger (no URL configured) is valid and every ping is a no-op.
type Pinger struct {
	url        string
	httpClient *http.Client
}

// New creates a Pinger for the given base URL. Returns nil when the URL is
// empty, so callers can hold an unconfigured Pinger safely.
func New(url string) *Pinger {
	if url == "" {
		return nil
	}
	return &Pinger{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Start signals the beginning of a run
func (p *Pinger) Start(ctx context.Context) error {
	return p.ping(ctx, "/start")
}

// Success signals a successful run
func (p *Pinger) Success(ctx context.Context) error {
	return p.ping(ctx, "")
}

// Fail signals a failed run
func (p *Pinger) Fail(ctx context.Context) error {
	return p.ping(ctx, "/fail")
}

func (p *Pinger) ping(ctx context.Context, suffix string) error {
	if p == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+suffix, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping returned status %d", resp.StatusCode)
	}

	return nil
}
