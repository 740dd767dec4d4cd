package llm

import (
	"context"
	"errors"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// Analyzer defines the interface contract for language-model food analysis.
type Analyzer interface {
	// Available reports whether the analyzer is configured with credentials.
	Available() bool

	// Analyze interprets a raw food message and returns a nutrition estimate
	// with per-unit macro values. The estimate carries the model's normalized
	// food name, quantity, and unit alongside the nutrition numbers.
	Analyze(ctx context.Context, message string) (*types.NutritionEstimate, error)

	// ExtractNutrition pulls nutrition values for a named food out of a block
	// of web search result text. Returns (nil, nil) when the model reports
	// that the results contain no reliable information.
	ExtractNutrition(ctx context.Context, foodName, results string) (*types.NutritionEstimate, error)

	// ModelName returns the name of the model used for analysis.
	ModelName() string
}

var (
	// ErrUnavailable indicates the analyzer has no API credentials configured.
	ErrUnavailable = errors.New("language model not configured")

	// ErrNoJSONObject indicates the model reply contained no JSON object.
	ErrNoJSONObject = errors.New("no JSON object in model reply")

	// ErrMissingFoodName indicates the model reply parsed but named no food.
	ErrMissingFoodName = errors.New("model reply missing food_name")
)
