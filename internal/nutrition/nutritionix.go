package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

const nutritionixBaseURL = "https://trackapi.nutritionix.com/v2"

// NutritionixClient queries the Nutritionix track API using its two-call
// protocol: an instant search to find a candidate name, then a
// natural-language nutrients call keyed on that name.
type NutritionixClient struct {
	appID   string
	appKey  string
	baseURL string
	client  *http.Client
}

// NewNutritionixClient creates a Nutritionix client. Missing credentials
// produce a client that reports itself unavailable.
func NewNutritionixClient(appID, appKey string) *NutritionixClient {
	return &NutritionixClient{
		appID:   appID,
		appKey:  appKey,
		baseURL: nutritionixBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Available reports whether the client has credentials.
func (c *NutritionixClient) Available() bool {
	return c.appID != "" && c.appKey != ""
}

type nutritionixInstantResponse struct {
	Common []struct {
		FoodName string `json:"food_name"`
	} `json:"common"`
	Branded []struct {
		FoodName string `json:"food_name"`
	} `json:"branded"`
}

type nutritionixNutrientsResponse struct {
	Foods []struct {
		FoodName     string  `json:"food_name"`
		Calories     float64 `json:"nf_calories"`
		Carbohydrate float64 `json:"nf_total_carbohydrate"`
		Protein      float64 `json:"nf_protein"`
		TotalFat     float64 `json:"nf_total_fat"`
	} `json:"foods"`
}

// Lookup resolves a food name to an estimate via the two-call protocol.
// Returns nil when the instant search finds no candidate or the
// nutrients call returns no foods.
func (c *NutritionixClient) Lookup(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	candidate, err := c.instantSearch(ctx, foodName)
	if err != nil {
		return nil, err
	}
	if candidate == "" {
		return nil, nil
	}
	return c.naturalNutrients(ctx, candidate)
}

func (c *NutritionixClient) instantSearch(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("detailed", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/instant?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build nutritionix request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("nutritionix instant search failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read nutritionix response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nutritionix instant search returned %d: %s", resp.StatusCode, body)
	}

	var ir nutritionixInstantResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return "", fmt.Errorf("parse nutritionix response: %w", err)
	}
	if len(ir.Common) > 0 {
		return ir.Common[0].FoodName, nil
	}
	if len(ir.Branded) > 0 {
		return ir.Branded[0].FoodName, nil
	}
	return "", nil
}

func (c *NutritionixClient) naturalNutrients(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	payload, err := json.Marshal(map[string]string{"query": foodName})
	if err != nil {
		return nil, fmt.Errorf("marshal nutritionix payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/natural/nutrients", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build nutritionix request: %w", err)
	}
	c.setAuth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nutritionix nutrients call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read nutritionix response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nutritionix nutrients call returned %d: %s", resp.StatusCode, body)
	}

	var nr nutritionixNutrientsResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("parse nutritionix response: %w", err)
	}
	if len(nr.Foods) == 0 {
		return nil, nil
	}

	food := nr.Foods[0]
	name := food.FoodName
	if name == "" {
		name = foodName
	}
	return &types.NutritionEstimate{
		FoodName:   name,
		Quantity:   1,
		Unit:       types.DefaultUnit,
		Calories:   food.Calories,
		Carbs:      food.Carbohydrate,
		Proteins:   food.Protein,
		Fats:       food.TotalFat,
		Source:     types.SourceNutritionix,
		Confidence: types.ConfidenceMedium,
	}, nil
}

func (c *NutritionixClient) setAuth(req *http.Request) {
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)
}
