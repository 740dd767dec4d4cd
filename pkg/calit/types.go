package calit

import (
	"time"
)

// MealType classifies a logged entry by meal.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
)

// Config holds the cal.it client configuration
type Config struct {
	BaseURL string        // cal.it service URL, e.g. https://calit.example.com
	APIKey  string        // API key for authentication (optional in dev deployments)
	Timeout time.Duration // HTTP timeout (default: 30 seconds)
}

// FoodItem is one segment of a compound food message.
type FoodItem struct {
	FoodName string   `json:"food_name"`
	Quantity int      `json:"quantity"`
	Calories *float64 `json:"calories,omitempty"`
}

// ParsedFood is the service's structured reading of a food message.
type ParsedFood struct {
	FoodName        string     `json:"food_name"`
	Quantity        int        `json:"quantity"`
	Unit            string     `json:"unit"`
	OriginalMessage string     `json:"original_message"`
	Items           []FoodItem `json:"items,omitempty"`
	TotalCalories   *float64   `json:"total_calories,omitempty"`
}

// Estimate is a nutrition reading for one interpreted message.
type Estimate struct {
	FoodName    string   `json:"food_name"`
	Quantity    int      `json:"quantity"`
	Unit        string   `json:"unit"`
	Calories    float64  `json:"calories"`
	Proteins    float64  `json:"proteins"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Source      string   `json:"source"`
	Confidence  string   `json:"confidence"`
	Notes       string   `json:"notes,omitempty"`
	SearchTerms []string `json:"search_terms,omitempty"`
}

// Interpretation is returned after a message interprets successfully. The
// estimate stays pending until the caller confirms a meal type before
// ExpiresAt.
type Interpretation struct {
	Parsed    ParsedFood `json:"parsed"`
	Estimate  Estimate   `json:"estimate"`
	MealTypes []MealType `json:"meal_types"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Entry is a confirmed, persisted food log record.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FoodName   string    `json:"food_name"`
	MealType   MealType  `json:"meal_type"`
	Calories   int       `json:"calories"`
	Proteins   float64   `json:"proteins"`
	Carbs      float64   `json:"carbs"`
	Fats       float64   `json:"fats"`
	Source     string    `json:"source"`
	Confidence string    `json:"confidence"`
	LoggedAt   time.Time `json:"logged_at"`
}

// EntriesQuery narrows an entry listing. Zero-value fields are omitted.
type EntriesQuery struct {
	UserID   string   // required
	From     string   // inclusive start day, YYYY-MM-DD
	To       string   // inclusive end day, YYYY-MM-DD
	MealType MealType // filter by meal
	Limit    int      // page size
}

// EntriesPage is one page of persisted entries.
type EntriesPage struct {
	Entries []Entry `json:"entries"`
	Count   int     `json:"count"`
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

// BackendStatus reports which nutrition backends the service has configured.
type BackendStatus struct {
	AI          bool `json:"ai"`
	WebSearch   bool `json:"web_search"`
	USDA        bool `json:"usda"`
	Nutritionix bool `json:"nutritionix"`
	Scraper     bool `json:"scraper"`
}

// Health is the service health payload.
type Health struct {
	Status   string        `json:"status"`
	Version  string        `json:"version"`
	Database string        `json:"database"`
	Backends BackendStatus `json:"backends"`
}
