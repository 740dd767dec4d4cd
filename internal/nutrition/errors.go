// Package nutrition implements the structured nutrition lookup backends:
// the USDA FoodData Central client, the Nutritionix client, and the
// nutrition-site scraper. Each backend is an independent failure domain.
package nutrition

import "errors"

// ErrUnavailable indicates a backend was called without the credentials
// or configuration it needs. Callers skip the backend rather than fail.
var ErrUnavailable = errors.New("nutrition backend not configured")
