// Package interpret turns free-text food messages into nutrition estimates
// by running a layered fallback chain over pattern extraction, a language
// model, and nutrition lookup backends.
package interpret

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hardikSrivastav/cal.it/internal/parse"
	"github.com/hardikSrivastav/cal.it/internal/types"
)

// Mode selects which fallback chain the interpreter runs.
type Mode string

const (
	// ModeAI interprets through the language model with web-search
	// enrichment, falling back to the pattern extractor only when no
	// model is configured.
	ModeAI Mode = "ai"

	// ModeAPI interprets through the structured nutrition backends in
	// strict priority order, ending at the static estimate table.
	ModeAPI Mode = "api"
)

// ErrNoEstimateFound indicates every stage was exhausted without producing a
// usable estimate. Callers should ask the user to clarify.
var ErrNoEstimateFound = errors.New("no nutrition estimate found")

// Result is a successful interpretation: the parsed reading of the message
// and the estimate that terminated the chain, already quantity-scaled.
type Result struct {
	Parsed   types.ParsedFood
	Estimate *types.NutritionEstimate
}

// Interpreter sequences the fallback stages for one operating mode.
type Interpreter struct {
	mode     Mode
	backends Backends
	stages   []Stage
	logger   *slog.Logger
}

// NewInterpreter builds the stage chain for mode. Unknown modes fall back to
// the structured-API chain, which works without any credentials.
func NewInterpreter(mode Mode, backends Backends, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	var stages []Stage
	switch mode {
	case ModeAI:
		stages = aiStages(backends)
	default:
		mode = ModeAPI
		stages = apiStages(backends)
	}
	return &Interpreter{
		mode:     mode,
		backends: backends,
		stages:   stages,
		logger:   logger.With(slog.String("component", "interpreter")),
	}
}

// Mode returns the active operating mode.
func (in *Interpreter) Mode() Mode {
	return in.mode
}

// Status reports which lookup backends are currently configured.
func (in *Interpreter) Status() types.BackendStatus {
	b := in.backends
	return types.BackendStatus{
		AI:          b.Analyzer != nil && b.Analyzer.Available(),
		WebSearch:   b.Search != nil && b.Search.Available(),
		USDA:        b.USDA != nil && b.USDA.Available(),
		Nutritionix: b.Nutritionix != nil && b.Nutritionix.Available(),
		Scraper:     b.Scraper != nil && b.Scraper.Available(),
	}
}

// Interpret parses the message and walks the stage chain until an estimate
// terminates it. Stage failures are logged and swallowed; the only failure a
// caller sees is ErrNoEstimateFound. The terminal estimate is scaled by the
// parsed quantity exactly once, except when its calories came straight from
// the user's own words.
func (in *Interpreter) Interpret(ctx context.Context, message string) (*Result, error) {
	parsed := parse.Parse(message)
	if parsed == nil {
		return nil, ErrNoEstimateFound
	}

	var candidate *types.NutritionEstimate
	for _, stage := range in.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if candidate != nil && candidate.Calories > 0 {
			break
		}
		if !stage.runnable(candidate) {
			continue
		}
		if !stage.Available() {
			in.logger.Debug("interpretation stage unavailable", slog.String("stage", stage.Name))
			continue
		}

		est, err := stage.Run(ctx, message, parsed, candidate)
		if err != nil {
			in.logger.Warn("interpretation stage failed",
				slog.String("stage", stage.Name),
				slog.String("error", err.Error()))
			continue
		}
		if est != nil {
			candidate = est
			in.logger.Debug("interpretation stage produced estimate",
				slog.String("stage", stage.Name),
				slog.Float64("calories", est.Calories))
		}
	}

	if candidate == nil {
		return nil, ErrNoEstimateFound
	}
	// In AI mode a zero-calorie candidate means every enrichment came up
	// empty; surface it as not found so the user gets asked to clarify.
	if in.mode == ModeAI && candidate.Calories <= 0 {
		return nil, ErrNoEstimateFound
	}

	scale(candidate, parsed)
	return &Result{Parsed: *parsed, Estimate: candidate}, nil
}

// scale applies the parsed quantity to the terminal estimate. User-stated
// calories already describe the full amount eaten, so user-provided and
// pattern-fallback estimates pass through unscaled.
func scale(est *types.NutritionEstimate, parsed *types.ParsedFood) {
	est.Quantity = parsed.Quantity
	est.Unit = parsed.Unit

	switch est.Source {
	case types.SourceUserProvided, types.SourceFallback:
		return
	}
	if parsed.Quantity <= 1 {
		return
	}

	q := float64(parsed.Quantity)
	est.Calories *= q
	est.Proteins *= q
	est.Carbs *= q
	est.Fats *= q
}

// hasMacros reports whether the estimate carries any usable macro values.
func hasMacros(est *types.NutritionEstimate) bool {
	return est.Calories > 0 || est.Proteins > 0 || est.Carbs > 0 || est.Fats > 0
}

// ClarificationHints suggests rephrasings for a message no stage could
// estimate. Suggestions vary with the kind of food mentioned.
func ClarificationHints(message string) []string {
	text := strings.ToLower(message)
	switch {
	case strings.Contains(text, "muffin"):
		return []string{"chocolate muffin", "blueberry muffin", "muffin (300 cals)"}
	case strings.Contains(text, "coffee"), strings.Contains(text, "cappuccino"):
		return []string{"coffee with milk", "cappuccino (150 cals)", "iced coffee"}
	case strings.Contains(text, " and "), strings.Contains(text, "&"):
		return []string{"chicken and rice", "pizza slice (300 cals) and coke (150 cals)", "salad and bread"}
	default:
		return []string{"chicken breast grilled", "white rice cooked", "dal makhani"}
	}
}
