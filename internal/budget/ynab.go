package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultYNABBaseURL = "https://api.ynab.com/v1"

// YNABClient updates category goal targets through the YNAB API
type YNABClient struct {
	baseURL     string
	accessToken string
	budgetID    string
	categoryID  string
	httpClient  *http.Client
}

// NewYNABClient creates a client for a single budget category
func NewYNABClient(accessToken, budgetID, categoryID string) *YNABClient {
	return &YNABClient{
		baseURL:     defaultYNABBaseURL,
		accessToken: accessToken,
		budgetID:    budgetID,
		categoryID:  categoryID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL overrides the API base URL (used in tests)
func (c *YNABClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// saveCategory is the writable subset of a YNAB category
type saveCategory struct {
	GoalTarget int64  `json:"goal_target"`
	Note       string `json:"note"`
}

// patchCategoryWrapper wraps the category for the PATCH endpoint
type patchCategoryWrapper struct {
	Category saveCategory `json:"category"`
}

// UpdateCategoryTarget sets the category's goal target and note from a
// computed Target
func (c *YNABClient) UpdateCategoryTarget(ctx context.Context, target Target) error {
	apiURL := fmt.Sprintf("%s/budgets/%s/categories/%s", c.baseURL, c.budgetID, c.categoryID)

	body, err := json.Marshal(patchCategoryWrapper{
		Category: saveCategory{
			GoalTarget: target.Milliunits,
			Note:       target.Note,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding category payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
