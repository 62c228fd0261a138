// Package tinkoff implements the exchange capability over the Tinkoff
// Invest REST API v2.
package tinkoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// defaultBaseURL can be overridden for testing.
	defaultBaseURL = "https://invest-public-api.tinkoff.ru/rest"
)

// GetBaseURL returns the current base URL used by the client.
// Useful for testing to confirm the target URL.
func GetBaseURL() string {
	return defaultBaseURL
}

// SetBaseURL sets the base URL for the client.
// This is intended for use in tests to redirect requests to a mock server.
func SetBaseURL(url string) {
	defaultBaseURL = url
}

const (
	marketDataService = "/tinkoff.public.invest.api.contract.v1.MarketDataService"
	ordersService     = "/tinkoff.public.invest.api.contract.v1.OrdersService"
)

// Client provides methods to interact with the Tinkoff Invest API.
type Client struct {
	token      string
	accountID  string
	httpClient *http.Client
}

// NewClient creates a new Tinkoff Invest API client bound to one account.
func NewClient(token, accountID string) *Client {
	return &Client{
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// post performs one service call. Every Invest API method is an HTTP POST
// of a JSON body to <service>/<method>.
func (c *Client) post(ctx context.Context, endpoint string, reqBody, respBody interface{}) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request for %s: %w", endpoint, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, defaultBaseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request for %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body for %s (status: %d): %w", endpoint, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(bodyBytes, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}
	if err := json.Unmarshal(bodyBytes, respBody); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", endpoint, err)
	}
	return nil
}
