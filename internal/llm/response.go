package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// jsonObjectRe finds the widest {...} span in a reply, tolerating models that
// wrap JSON in prose or markdown fences.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// analysisResponse mirrors the JSON schema requested by the analysis prompt.
type analysisResponse struct {
	FoodName    string   `json:"food_name"`
	Quantity    float64  `json:"quantity"`
	Unit        string   `json:"unit"`
	Calories    float64  `json:"calories"`
	Proteins    float64  `json:"proteins"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Confidence  string   `json:"confidence"`
	Notes       string   `json:"notes"`
	SearchTerms []string `json:"search_terms"`
}

// extractionResponse mirrors the JSON schema requested by the extraction prompt.
type extractionResponse struct {
	Calories    float64 `json:"calories"`
	Proteins    float64 `json:"proteins"`
	Carbs       float64 `json:"carbs"`
	Fats        float64 `json:"fats"`
	ServingSize string  `json:"serving_size"`
	Confidence  string  `json:"confidence"`
}

// parseAnalysis converts a first-pass model reply into a nutrition estimate.
// Missing optional fields fall back to defaults; a missing food name is an
// error because nothing downstream can use a nameless estimate.
func parseAnalysis(reply string) (*types.NutritionEstimate, error) {
	raw := jsonObjectRe.FindString(reply)
	if raw == "" {
		return nil, ErrNoJSONObject
	}

	var r analysisResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("malformed JSON in model reply: %w", err)
	}

	if strings.TrimSpace(r.FoodName) == "" {
		return nil, ErrMissingFoodName
	}

	est := &types.NutritionEstimate{
		FoodName:    strings.TrimSpace(r.FoodName),
		Quantity:    int(r.Quantity),
		Unit:        r.Unit,
		Calories:    r.Calories,
		Proteins:    r.Proteins,
		Carbs:       r.Carbs,
		Fats:        r.Fats,
		Source:      types.SourceAIAnalysis,
		Confidence:  types.Confidence(r.Confidence),
		Notes:       r.Notes,
		SearchTerms: r.SearchTerms,
	}
	if est.Quantity < 1 {
		est.Quantity = 1
	}
	if est.Unit == "" {
		est.Unit = types.DefaultUnit
	}
	if !types.ValidConfidence(est.Confidence) {
		est.Confidence = types.ConfidenceLow
	}
	return est, nil
}

// parseExtraction converts a second-pass model reply into a nutrition
// estimate for foodName. A reply without a JSON object (the model answered
// "null" or declined) is defined absence, not an error. Zero calories are
// treated the same way: the results held nothing usable.
func parseExtraction(reply, foodName string) (*types.NutritionEstimate, error) {
	raw := jsonObjectRe.FindString(reply)
	if raw == "" {
		return nil, nil
	}

	var r extractionResponse
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("malformed JSON in model reply: %w", err)
	}

	if r.Calories <= 0 {
		return nil, nil
	}

	est := &types.NutritionEstimate{
		FoodName:   foodName,
		Quantity:   1,
		Unit:       types.DefaultUnit,
		Calories:   r.Calories,
		Proteins:   r.Proteins,
		Carbs:      r.Carbs,
		Fats:       r.Fats,
		Source:     types.SourceWebSearch,
		Confidence: types.Confidence(r.Confidence),
	}
	if !types.ValidConfidence(est.Confidence) {
		est.Confidence = types.ConfidenceMedium
	}
	if r.ServingSize != "" {
		est.Notes = "Serving: " + r.ServingSize
	}
	return est, nil
}
