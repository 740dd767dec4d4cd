package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

const usdaBaseURL = "https://api.nal.usda.gov/fdc/v1"

// FoodData Central nutrient IDs.
const (
	nutrientIDCalories = 1008
	nutrientIDProteins = 203
	nutrientIDFats     = 204
	nutrientIDCarbs    = 205
)

// USDAClient queries the USDA FoodData Central search API.
type USDAClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewUSDAClient creates a FoodData Central client. An empty API key
// produces a client that reports itself unavailable.
func NewUSDAClient(apiKey string) *USDAClient {
	return &USDAClient{
		apiKey:  apiKey,
		baseURL: usdaBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Available reports whether the client has credentials.
func (c *USDAClient) Available() bool {
	return c.apiKey != ""
}

type usdaSearchResponse struct {
	Foods []struct {
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientID int     `json:"nutrientId"`
			Value      float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// Lookup searches FoodData Central and maps the first hit's nutrients
// onto an estimate. First-result bias is intentional. Returns nil when
// the search has no results.
func (c *USDAClient) Lookup(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", foodName)
	q.Set("pageSize", "5")
	q.Add("dataType", "Foundation")
	q.Add("dataType", "SR Legacy")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/foods/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build usda request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usda search failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read usda response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("usda search returned %d: %s", resp.StatusCode, body)
	}

	var sr usdaSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parse usda response: %w", err)
	}
	if len(sr.Foods) == 0 {
		return nil, nil
	}

	food := sr.Foods[0]
	est := &types.NutritionEstimate{
		FoodName:   food.Description,
		Quantity:   1,
		Unit:       types.DefaultUnit,
		Source:     types.SourceUSDA,
		Confidence: types.ConfidenceHigh,
	}
	if est.FoodName == "" {
		est.FoodName = foodName
	}
	for _, n := range food.FoodNutrients {
		switch n.NutrientID {
		case nutrientIDCalories:
			est.Calories = n.Value
		case nutrientIDCarbs:
			est.Carbs = n.Value
		case nutrientIDProteins:
			est.Proteins = n.Value
		case nutrientIDFats:
			est.Fats = n.Value
		}
	}
	return est, nil
}
