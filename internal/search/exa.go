// Package search provides a client for the Exa web search API, scoped to
// nutrition reference sites.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const exaBaseURL = "https://api.exa.ai"

// querySuffix steers keyword search toward nutrition-fact pages.
const querySuffix = " nutrition facts calories protein carbs fat"

// SummaryLimit caps how many results feed the extraction prompt.
const SummaryLimit = 5

// nutritionDomains restricts results to sites that publish nutrition data.
var nutritionDomains = []string{
	"nutrition.gov",
	"fdc.nal.usda.gov",
	"fatsecret.com",
	"myfitnesspal.com",
	"calorieking.com",
	"nutritionix.com",
	"webmd.com",
	"healthline.com",
}

// ErrUnavailable indicates the client has no API key configured.
var ErrUnavailable = errors.New("web search not configured")

// Result is one search hit. Text is empty unless the page content has been
// fetched separately through PageText.
type Result struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
	Author        string `json:"author"`
}

// Client calls the Exa search and contents endpoints.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates an Exa client. An empty API key yields an unavailable
// client rather than an error.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: exaBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Available reports whether an API key was configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// NutritionQuery builds the search query for a food, preferring the model's
// search terms over the bare food name.
func NutritionQuery(foodName string, terms []string) string {
	q := foodName
	if len(terms) > 0 {
		q = strings.Join(terms, " ")
	}
	return q + querySuffix
}

// Search runs a keyword search restricted to nutrition domains and returns
// up to ten results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	payload := map[string]any{
		"query":          query,
		"numResults":     10,
		"includeDomains": nutritionDomains,
		"useAutoprompt":  true,
		"type":           "keyword",
	}

	var response struct {
		Results []Result `json:"results"`
	}
	if err := c.post(ctx, "/search", payload, &response); err != nil {
		return nil, fmt.Errorf("exa search failed: %w", err)
	}
	return response.Results, nil
}

// PageText fetches the text content of a result page through the contents
// endpoint.
func (c *Client) PageText(ctx context.Context, pageURL string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	payload := map[string]any{
		"url":  pageURL,
		"type": "text",
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/contents", payload, &response); err != nil {
		return "", fmt.Errorf("exa contents failed: %w", err)
	}
	return response.Text, nil
}

// Summary renders the first results into the title/content block consumed by
// the nutrition extraction prompt.
func Summary(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		if i >= SummaryLimit {
			break
		}
		fmt.Fprintf(&b, "Title: %s\nContent: %s\n\n", r.Title, r.Text)
	}
	return b.String()
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
