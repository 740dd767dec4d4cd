package interpret

import (
	"context"

	"github.com/hardikSrivastav/cal.it/internal/estimate"
	"github.com/hardikSrivastav/cal.it/internal/llm"
	"github.com/hardikSrivastav/cal.it/internal/search"
	"github.com/hardikSrivastav/cal.it/internal/types"
)

// NutritionSource is one lookup backend in the structured-API chain.
type NutritionSource interface {
	Available() bool
	Lookup(ctx context.Context, foodName string) (*types.NutritionEstimate, error)
}

// Searcher finds nutrition reference pages on the web.
type Searcher interface {
	Available() bool
	Search(ctx context.Context, query string) ([]search.Result, error)
	PageText(ctx context.Context, pageURL string) (string, error)
}

// Backends collects the external clients the interpreter draws on. A nil
// field is an unavailable backend, not an error.
type Backends struct {
	Analyzer    llm.Analyzer
	Search      Searcher
	USDA        NutritionSource
	Nutritionix NutritionSource
	Scraper     NutritionSource
}

// Stage is one step of the fallback chain. Provider stages run while no
// candidate exists; enrich stages run while the candidate has no usable
// macro values. Run returns (nil, nil) when the stage has nothing to offer.
type Stage struct {
	Name      string
	Enrich    bool
	Available func() bool
	Run       func(ctx context.Context, message string, parsed *types.ParsedFood, candidate *types.NutritionEstimate) (*types.NutritionEstimate, error)
}

func (s Stage) runnable(candidate *types.NutritionEstimate) bool {
	if s.Enrich {
		return candidate == nil || !hasMacros(candidate)
	}
	return candidate == nil
}

// apiStages builds the structured-API chain: user-stated calories, then the
// nutrition databases in priority order, ending at the static table.
func apiStages(b Backends) []Stage {
	return []Stage{
		userCaloriesStage(),
		sourceStage("usda", b.USDA),
		sourceStage("nutritionix", b.Nutritionix),
		sourceStage("scraper", b.Scraper),
		estimateTableStage(),
	}
}

// aiStages builds the model-first chain: analysis, web-search enrichment,
// and the pattern fallback for deployments without a model.
func aiStages(b Backends) []Stage {
	return []Stage{
		aiAnalysisStage(b.Analyzer),
		webSearchStage(b.Analyzer, b.Search),
		patternFallbackStage(b.Analyzer),
	}
}

// userCaloriesStage turns explicit calorie tokens from the message into an
// estimate. The stated number covers everything eaten, so quantity scaling
// never applies to it.
func userCaloriesStage() Stage {
	return Stage{
		Name:      "user_calories",
		Available: func() bool { return true },
		Run: func(_ context.Context, _ string, parsed *types.ParsedFood, _ *types.NutritionEstimate) (*types.NutritionEstimate, error) {
			if parsed.TotalCalories == nil || *parsed.TotalCalories <= 0 {
				return nil, nil
			}
			return &types.NutritionEstimate{
				FoodName:   parsed.FoodName,
				Quantity:   parsed.Quantity,
				Unit:       parsed.Unit,
				Calories:   *parsed.TotalCalories,
				Source:     types.SourceUserProvided,
				Confidence: types.ConfidenceHigh,
			}, nil
		},
	}
}

// sourceStage wraps one nutrition lookup backend.
func sourceStage(name string, src NutritionSource) Stage {
	return Stage{
		Name:      name,
		Available: func() bool { return src != nil && src.Available() },
		Run: func(ctx context.Context, _ string, parsed *types.ParsedFood, _ *types.NutritionEstimate) (*types.NutritionEstimate, error) {
			return src.Lookup(ctx, parsed.FoodName)
		},
	}
}

// estimateTableStage is the always-available last resort of the API chain.
func estimateTableStage() Stage {
	return Stage{
		Name:      "estimate_table",
		Available: func() bool { return true },
		Run: func(_ context.Context, _ string, parsed *types.ParsedFood, _ *types.NutritionEstimate) (*types.NutritionEstimate, error) {
			return estimate.Lookup(parsed.FoodName), nil
		},
	}
}

// aiAnalysisStage asks the language model to read the raw message. On
// success the model's normalized food name, quantity, and unit replace the
// regex parse so downstream scaling follows the model's reading.
func aiAnalysisStage(analyzer llm.Analyzer) Stage {
	return Stage{
		Name:      "ai_analysis",
		Available: func() bool { return analyzer != nil && analyzer.Available() },
		Run: func(ctx context.Context, message string, parsed *types.ParsedFood, _ *types.NutritionEstimate) (*types.NutritionEstimate, error) {
			est, err := analyzer.Analyze(ctx, message)
			if err != nil {
				return nil, err
			}
			parsed.FoodName = est.FoodName
			parsed.Quantity = est.Quantity
			parsed.Unit = est.Unit
			return est, nil
		},
	}
}

// webSearchStage enriches a macro-less candidate by searching nutrition
// sites and asking the model to read the results. Needs both the search
// backend and the model.
func webSearchStage(analyzer llm.Analyzer, searcher Searcher) Stage {
	return Stage{
		Name:   "web_search",
		Enrich: true,
		Available: func() bool {
			return searcher != nil && searcher.Available() &&
				analyzer != nil && analyzer.Available()
		},
		Run: func(ctx context.Context, _ string, parsed *types.ParsedFood, candidate *types.NutritionEstimate) (*types.NutritionEstimate, error) {
			foodName := parsed.FoodName
			var terms []string
			if candidate != nil {
				foodName = candidate.FoodName
				terms = candidate.SearchTerms
			}

			results, err := searcher.Search(ctx, search.NutritionQuery(foodName, terms))
			if err != nil {
				return nil, err
			}
			if len(results) == 0 {
				return nil, nil
			}

			// Keyword search returns titles only; fetch page text for the
			// results that feed the prompt. A failed fetch leaves the
			// title, which still carries signal.
			for i := range results {
				if i >= search.SummaryLimit {
					break
				}
				if results[i].Text != "" {
					continue
				}
				if text, err := searcher.PageText(ctx, results[i].URL); err == nil {
					results[i].Text = text
				}
			}

			return analyzer.ExtractNutrition(ctx, foodName, search.Summary(results))
		},
	}
}

// patternFallbackStage serves deployments without a language model: the
// regex parse plus any explicit calorie tokens, macros zero.
func patternFallbackStage(analyzer llm.Analyzer) Stage {
	return Stage{
		Name:      "pattern_fallback",
		Available: func() bool { return analyzer == nil || !analyzer.Available() },
		Run: func(_ context.Context, _ string, parsed *types.ParsedFood, _ *types.NutritionEstimate) (*types.NutritionEstimate, error) {
			est := &types.NutritionEstimate{
				FoodName:   parsed.FoodName,
				Quantity:   parsed.Quantity,
				Unit:       parsed.Unit,
				Source:     types.SourceFallback,
				Confidence: types.ConfidenceLow,
			}
			if parsed.TotalCalories != nil {
				est.Calories = *parsed.TotalCalories
			}
			return est, nil
		},
	}
}
