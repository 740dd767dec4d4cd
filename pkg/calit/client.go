// Package calit is the Go client for the cal.it food logging service. It
// wraps the REST API: send a free-text food message, confirm the pending
// estimate with a meal type, and read back persisted entries and summaries.
package calit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoPendingInteraction indicates no interpreted message is waiting for
// this user, either because none was sent or because it expired.
var ErrNoPendingInteraction = errors.New("no pending interaction for user")

// APIError is a non-2xx response decoded from the service's RFC 7807
// problem+json body.
type APIError struct {
	Status int      `json:"status"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Hints  []string `json:"hints,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("calit: %s (%d): %s", e.Title, e.Status, e.Detail)
	}
	return fmt.Sprintf("calit: %s (%d)", e.Title, e.Status)
}

// Client is the cal.it API client
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a new cal.it client
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("BaseURL is required")
	}

	// Set defaults
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Ping checks connectivity to the service
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// Health fetches the service health status
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogMessage submits a free-text food message for interpretation. On success
// the returned estimate is pending until ConfirmMeal is called (or it
// expires). When the service cannot interpret the message it responds 422;
// the returned *APIError carries clarification hints to relay to the user.
func (c *Client) LogMessage(ctx context.Context, userID, text string) (*Interpretation, error) {
	body := map[string]string{
		"user_id": userID,
		"text":    text,
	}

	var out Interpretation
	if err := c.do(ctx, http.MethodPost, "/api/v1/messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmMeal confirms the user's pending interpretation with a meal type
// and returns the persisted entry. Returns ErrNoPendingInteraction when
// nothing is waiting for the user.
func (c *Client) ConfirmMeal(ctx context.Context, userID string, mealType MealType) (*Entry, error) {
	body := map[string]string{
		"user_id":   userID,
		"meal_type": string(mealType),
	}

	var out Entry
	if err := c.do(ctx, http.MethodPost, "/api/v1/meals", body, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrNoPendingInteraction
		}
		return nil, err
	}
	return &out, nil
}

// Entries lists a user's persisted entries, newest first.
func (c *Client) Entries(ctx context.Context, query EntriesQuery) (*EntriesPage, error) {
	params := url.Values{}
	params.Set("user_id", query.UserID)
	if query.From != "" {
		params.Set("from", query.From)
	}
	if query.To != "" {
		params.Set("to", query.To)
	}
	if query.MealType != "" {
		params.Set("meal_type", string(query.MealType))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	var out EntriesPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/entries?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DailySummary fetches one user's totals for a day (YYYY-MM-DD). An empty
// date means today.
func (c *Client) DailySummary(ctx context.Context, userID, date string) (*DailySummary, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	if date != "" {
		params.Set("date", date)
	}

	var out DailySummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/summary?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends an authenticated request and decodes the JSON response into out.
// Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError reads a problem+json body into an APIError. A body that
// fails to decode still yields an APIError with the HTTP status.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status: resp.StatusCode,
		Title:  http.StatusText(resp.StatusCode),
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, apiErr)
	}
	// Trust the transport status over whatever the body claimed.
	apiErr.Status = resp.StatusCode
	return apiErr
}
