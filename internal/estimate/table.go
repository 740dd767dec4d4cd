// Package estimate provides a static per-100g nutrition table for common
// foods. Pure lookup, no I/O.
package estimate

import (
	"strings"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// Note is attached to every estimate produced from the table.
const Note = "Based on general food estimates"

type entry struct {
	key      string
	calories float64
	carbs    float64
	proteins float64
	fats     float64
}

// table is ordered: lookup walks it top to bottom and the first key
// contained in the food name wins, regardless of later, longer matches.
var table = []entry{
	{"rice", 130, 28, 2.7, 0.3},
	{"chicken", 165, 0, 31, 3.6},
	{"dal", 116, 20, 9, 0.4},
	{"roti", 264, 46, 8, 4.2},
	{"subzi", 50, 10, 2, 0.5},
	{"bread", 265, 49, 9, 3.2},
	{"milk", 42, 5, 3.4, 1},
	{"egg", 155, 1.1, 13, 11},
	{"banana", 89, 23, 1.1, 0.3},
	{"apple", 52, 14, 0.3, 0.2},
	{"potato", 77, 17, 2, 0.1},
	{"tomato", 18, 3.9, 0.9, 0.2},
	{"onion", 40, 9.3, 1.1, 0.1},
	{"carrot", 41, 10, 0.9, 0.2},
	{"spinach", 23, 3.6, 2.9, 0.4},
	{"yogurt", 59, 3.6, 10, 0.4},
	{"cheese", 113, 0.4, 7, 9},
	{"fish", 84, 0, 20, 0.5},
	{"beef", 250, 0, 26, 15},
	{"pork", 242, 0, 27, 14},
}

// Lookup matches the food name against the table by case-insensitive
// substring containment, first key in table order winning. Returns nil
// when no key occurs in the name.
func Lookup(foodName string) *types.NutritionEstimate {
	lower := strings.ToLower(foodName)
	for _, e := range table {
		if strings.Contains(lower, e.key) {
			return &types.NutritionEstimate{
				FoodName:   foodName,
				Quantity:   1,
				Unit:       types.DefaultUnit,
				Calories:   e.calories,
				Carbs:      e.carbs,
				Proteins:   e.proteins,
				Fats:       e.fats,
				Source:     types.SourceEstimated,
				Confidence: types.ConfidenceLow,
				Notes:      Note,
			}
		}
	}
	return nil
}
