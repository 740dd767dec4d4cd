package types

import (
	"encoding/json"
	"time"
)

// DefaultUnit is the serving unit assumed when a message names none.
const DefaultUnit = "serving"

// Source identifies where a nutrition estimate came from.
type Source string

const (
	SourceUserProvided Source = "user_provided"
	SourceAIAnalysis   Source = "ai_analysis"
	SourceUSDA         Source = "usda"
	SourceNutritionix  Source = "nutritionix"
	SourceWebSearch    Source = "web_search"
	SourceScraped      Source = "scraped"
	SourceEstimated    Source = "estimated"
	SourceFallback     Source = "fallback"
)

// Confidence grades how much trust an estimate deserves.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ValidConfidence reports whether c is one of the known confidence grades.
func ValidConfidence(c Confidence) bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// MealType classifies a logged entry by meal.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

// MealTypes lists the valid meal types in presentation order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// MealTypeNames returns the valid meal types as plain strings.
func MealTypeNames() []string {
	names := make([]string, len(MealTypes))
	for i, mt := range MealTypes {
		names[i] = string(mt)
	}
	return names
}

// ValidMealType reports whether m is one of the known meal types.
func ValidMealType(m MealType) bool {
	for _, t := range MealTypes {
		if t == m {
			return true
		}
	}
	return false
}

// FoodItem is one segment of a compound food message.
type FoodItem struct {
	FoodName string   `json:"food_name"`
	Quantity int      `json:"quantity"`
	Calories *float64 `json:"calories,omitempty"`
}

// ParsedFood is the structured result of pattern-extracting a food message.
// When Items is non-empty, FoodName is the item names joined with " + " and
// Quantity equals len(Items).
type ParsedFood struct {
	FoodName        string     `json:"food_name"`
	Quantity        int        `json:"quantity"`
	Unit            string     `json:"unit"`
	OriginalMessage string     `json:"original_message"`
	Items           []FoodItem `json:"items,omitempty"`
	TotalCalories   *float64   `json:"total_calories,omitempty"`
}

// NutritionEstimate is a nutrition reading for one interpreted message.
type NutritionEstimate struct {
	FoodName    string     `json:"food_name"`
	Quantity    int        `json:"quantity"`
	Unit        string     `json:"unit"`
	Calories    float64    `json:"calories"`
	Proteins    float64    `json:"proteins"`
	Carbs       float64    `json:"carbs"`
	Fats        float64    `json:"fats"`
	Source      Source     `json:"source"`
	Confidence  Confidence `json:"confidence"`
	Notes       string     `json:"notes,omitempty"`
	SearchTerms []string   `json:"search_terms,omitempty"`
}

// PendingInteraction parks an interpretation while the user picks a meal type.
type PendingInteraction struct {
	UserID    string            `json:"user_id"`
	Parsed    ParsedFood        `json:"parsed"`
	Estimate  NutritionEstimate `json:"estimate"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Expired reports whether the interaction's TTL has elapsed at the given time.
func (p PendingInteraction) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// FoodEntry is a confirmed, persisted food log record.
// Calories are rounded to the nearest integer and macros to one decimal
// place at finalization time.
type FoodEntry struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	FoodName   string     `json:"food_name"`
	MealType   MealType   `json:"meal_type"`
	Calories   int        `json:"calories"`
	Proteins   float64    `json:"proteins"`
	Carbs      float64    `json:"carbs"`
	Fats       float64    `json:"fats"`
	Source     Source     `json:"source"`
	Confidence Confidence `json:"confidence"`
	LoggedAt   time.Time  `json:"logged_at"`
}

// DailySummary aggregates one user's entries for a single day.
type DailySummary struct {
	UserID     string  `json:"user_id"`
	Date       string  `json:"date"`
	EntryCount int64   `json:"entry_count"`
	Calories   int64   `json:"calories"`
	Proteins   float64 `json:"proteins"`
	Carbs      float64 `json:"carbs"`
	Fats       float64 `json:"fats"`
}

// StoreStats holds aggregate entry store statistics.
type StoreStats struct {
	EntryCount int64 `json:"entry_count"`
	SizeBytes  int64 `json:"size_bytes"`
}

// MessageRequest is the payload for submitting a food message.
type MessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// MessageResponse is returned after a message interprets successfully.
type MessageResponse struct {
	Parsed    ParsedFood        `json:"parsed"`
	Estimate  NutritionEstimate `json:"estimate"`
	MealTypes []MealType        `json:"meal_types"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// MealRequest is the payload for confirming a pending interaction.
type MealRequest struct {
	UserID   string   `json:"user_id"`
	MealType MealType `json:"meal_type"`
}

// EntriesResponse wraps a page of persisted entries.
type EntriesResponse struct {
	Entries []FoodEntry `json:"entries"`
	Count   int         `json:"count"`
}

// BackendStatus reports which nutrition backends are configured.
type BackendStatus struct {
	AI          bool `json:"ai"`
	WebSearch   bool `json:"web_search"`
	USDA        bool `json:"usda"`
	Nutritionix bool `json:"nutritionix"`
	Scraper     bool `json:"scraper"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status   string        `json:"status"`
	Version  string        `json:"version"`
	Database string        `json:"database"`
	Backends BackendStatus `json:"backends"`
}

// MarshalJSON ensures nil meal type lists marshal as [] not null.
func (m MessageResponse) MarshalJSON() ([]byte, error) {
	if m.MealTypes == nil {
		m.MealTypes = []MealType{}
	}
	type Alias MessageResponse
	return json.Marshal(Alias(m))
}

// MarshalJSON ensures nil entry slices marshal as [] not null.
func (e EntriesResponse) MarshalJSON() ([]byte, error) {
	if e.Entries == nil {
		e.Entries = []FoodEntry{}
	}
	type Alias EntriesResponse
	return json.Marshal(Alias(e))
}
