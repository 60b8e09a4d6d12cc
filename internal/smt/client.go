// Package smt is a client for the Smart Meter Texas residential API.
package smt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"smtbudget/pkg/models"
)

const defaultBaseURL = "https://smartmetertexas.com/api"

// AuthError represents an authentication failure
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Client fetches billing data from the Smart Meter Texas API
type Client struct {
	baseURL    string
	username   string
	password   string
	token      string
	httpClient *http.Client
}

// NewClient creates a Smart Meter Texas client with account credentials
func NewClient(username, password string) *Client {
	return &Client{
		baseURL:  defaultBaseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetBaseURL overrides the API base URL (used in tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Authenticate exchanges the account credentials for a bearer token. It is
// called automatically by the fetch methods when no token is held yet.
func (c *Client) Authenticate(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/authorization", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		respBody, _ := io.ReadAll(resp.Body)
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("authentication failed (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("auth endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var authResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return fmt.Errorf("decoding auth response: %w", err)
	}
	if authResp.Token == "" {
		return fmt.Errorf("auth response contained no token")
	}

	c.token = authResp.Token
	return nil
}

// FetchMeters lists the meters attached to the account
func (c *Client) FetchMeters(ctx context.Context) ([]models.Meter, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/meters", nil)
	if err != nil {
		return nil, fmt.Errorf("creating meters request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meters request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var metersResp struct {
		Meters []models.Meter `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&metersResp); err != nil {
		return nil, fmt.Errorf("decoding meters response: %w", err)
	}

	return metersResp.Meters, nil
}

// monthlyBillingRequest is the body for the monthly billing sync endpoint
type monthlyBillingRequest struct {
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	ReportFormat string   `json:"reportFormat"`
	ESIID        []string `json:"ESIID"`
	TransID      string   `json:"trans_id"`
}

// MonthlyBilling fetches monthly billing records for a meter over a date range
func (c *Client) MonthlyBilling(ctx context.Context, esiid string, startDate, endDate time.Time) (*models.MonthlyBillingResponse, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(monthlyBillingRequest{
		StartDate:    startDate.Format(models.SMTDateFormat),
		EndDate:      endDate.Format(models.SMTDateFormat),
		ReportFormat: "JSON",
		ESIID:        []string{esiid},
		TransID:      uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding billing request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/adhoc/monthlysynch", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("creating billing request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var billingResp models.MonthlyBillingResponse
	if err := json.NewDecoder(resp.Body).Decode(&billingResp); err != nil {
		return nil, fmt.Errorf("decoding billing response: %w", err)
	}

	return &billingResp, nil
}

// ensureToken authenticates if no token is held yet
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" {
		return nil
	}
	return c.Authenticate(ctx)
}

// setHeaders applies the common headers for authenticated API calls
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

// checkStatus maps error status codes to errors, reading the body for context
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		respBody, _ := io.ReadAll(resp.Body)
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("authentication failed (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
