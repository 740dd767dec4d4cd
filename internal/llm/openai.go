package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// Compile-time interface check
var _ Analyzer = (*OpenAI)(nil)

// maxResponseTokens bounds completion length; nutrition JSON is small.
const maxResponseTokens = 1000

// ChatService defines the interface for chat completion API calls.
// This abstraction enables testing without calling the real OpenAI API.
type ChatService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI analyzes food messages using OpenAI chat completions.
type OpenAI struct {
	chat  ChatService
	model openai.ChatModel
}

// NewOpenAI creates an analyzer backed by the OpenAI API. An empty API key
// yields an unavailable analyzer rather than an error so callers can treat
// the model as an optional backend.
func NewOpenAI(apiKey, model string) *OpenAI {
	o := &OpenAI{model: openai.ChatModel(model)}
	if apiKey != "" {
		client := openai.NewClient(option.WithAPIKey(apiKey))
		o.chat = client.Chat.Completions
	}
	return o
}

// Available reports whether an API key was configured.
func (o *OpenAI) Available() bool {
	return o.chat != nil
}

// Analyze sends the food message to the model and parses the JSON reply into
// a nutrition estimate with per-unit values.
func (o *OpenAI) Analyze(ctx context.Context, message string) (*types.NutritionEstimate, error) {
	if !o.Available() {
		return nil, ErrUnavailable
	}

	reply, err := o.complete(ctx, analysisPrompt(message))
	if err != nil {
		return nil, fmt.Errorf("food analysis failed: %w", err)
	}

	return parseAnalysis(reply)
}

// ExtractNutrition asks the model to read nutrition values for foodName out
// of the search result text. A reply without a JSON object means the model
// found nothing reliable and is reported as (nil, nil).
func (o *OpenAI) ExtractNutrition(ctx context.Context, foodName, results string) (*types.NutritionEstimate, error) {
	if !o.Available() {
		return nil, ErrUnavailable
	}

	reply, err := o.complete(ctx, extractionPrompt(foodName, results))
	if err != nil {
		return nil, fmt.Errorf("nutrition extraction failed: %w", err)
	}

	return parseExtraction(reply, foodName)
}

// ModelName returns the name of the model used for analysis.
func (o *OpenAI) ModelName() string {
	return string(o.model)
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:     openai.F(o.model),
		MaxTokens: openai.Int(maxResponseTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// analysisPrompt builds the first-pass prompt. Macro values are requested per
// single unit so quantity scaling happens exactly once downstream.
func analysisPrompt(message string) string {
	return fmt.Sprintf(`You are an expert nutritionist and food analyst. Parse the following food message and extract detailed nutritional information.

User message: %q

Respond with a JSON object using this structure:
{
    "food_name": "standardized food name",
    "quantity": number of units,
    "unit": "serving unit (piece, cup, gram, etc.)",
    "calories": calories per single unit,
    "proteins": grams of protein per single unit,
    "carbs": grams of carbohydrates per single unit,
    "fats": grams of fat per single unit,
    "confidence": "high/medium/low",
    "notes": "any relevant notes about the food or estimation",
    "search_terms": ["terms", "for", "a", "web", "lookup"]
}

Guidelines:
1. If the message states calories (e.g. "muffin 400 cals"), use those exact calories with quantity 1
2. Combine multiple items (e.g. "muffin and cappuccino") into one entry with quantity 1 and totalled nutrition
3. Report calories, proteins, carbs and fats per single unit: "chicken wing 6-piece" is quantity 6 with per-wing values
4. Standardize food names (e.g. "double choco chip muffin" becomes "chocolate chip muffin")
5. Estimate a reasonable portion when none is given
6. If you are not confident about the values, set confidence to "low" and provide search_terms

Respond only with valid JSON:`, message)
}

// extractionPrompt builds the second-pass prompt used after a web search.
func extractionPrompt(foodName, results string) string {
	return fmt.Sprintf(`Based on the following web search results, extract nutritional information for %q.

Search results:
%s

Respond with a JSON object using this structure:
{
    "calories": number,
    "proteins": grams of protein,
    "carbs": grams of carbohydrates,
    "fats": grams of fat,
    "serving_size": "serving description",
    "confidence": "high/medium/low"
}

If the results contain no reliable nutrition information, respond with null. Otherwise respond only with valid JSON:`, foodName, results)
}
