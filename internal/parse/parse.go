// Package parse extracts structured food information from free-form chat
// messages using regex heuristics. It performs no network calls.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

var (
	prefixRe   = regexp.MustCompile(`^(i just ate|i ate|ate|just ate)\s+`)
	calorieRe  = regexp.MustCompile(`(\d+)\s*cals?`)
	parenCalRe = regexp.MustCompile(`\(\d+\s*cals?\)`)
	splitRe    = regexp.MustCompile(`\s+and\s+|\s*&\s*`)

	// Ordered quantity patterns; the first match wins and the matched
	// phrase is removed from the food name.
	quantityRes = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)-piece`),
		regexp.MustCompile(`(\d+)\s+piece`),
		regexp.MustCompile(`(\d+)\s+cups?`),
		regexp.MustCompile(`(\d+)\s+servings?`),
		regexp.MustCompile(`(\d+)\s+grams?`),
		regexp.MustCompile(`(\d+)\s+oz`),
		regexp.MustCompile(`(\d+)\s+medium`),
		regexp.MustCompile(`(\d+)\s+large`),
		regexp.MustCompile(`(\d+)\s+small`),
	}
)

// Parse lowercases the message, strips a leading consumption phrase and
// extracts food names, quantities and explicit calorie counts. It returns
// nil when no food name survives cleaning.
func Parse(text string) *types.ParsedFood {
	text = strings.ToLower(strings.TrimSpace(text))
	text = prefixRe.ReplaceAllString(text, "")

	if calorieRe.MatchString(text) {
		return parseWithCalories(text)
	}

	if strings.Contains(text, " and ") || strings.Contains(text, " & ") {
		return parseMultipleItems(text)
	}

	quantity := 1
	foodName := text
	for _, re := range quantityRes {
		if m := re.FindStringSubmatch(text); m != nil {
			quantity, _ = strconv.Atoi(m[1])
			foodName = strings.TrimSpace(re.ReplaceAllString(text, ""))
			break
		}
	}

	if foodName == "" {
		return nil
	}
	return &types.ParsedFood{
		FoodName:        foodName,
		Quantity:        quantity,
		Unit:            types.DefaultUnit,
		OriginalMessage: text,
	}
}

// parseWithCalories handles messages carrying explicit calorie tokens.
// Each "and"/"&" segment with its own token becomes an item; segments
// whose names come out empty are dropped along with their calories.
func parseWithCalories(text string) *types.ParsedFood {
	parts := splitRe.Split(text, -1)

	var items []types.FoodItem
	var total float64

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := calorieRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		calories, _ := strconv.Atoi(m[1])

		name := strings.TrimSpace(parenCalRe.ReplaceAllString(part, ""))
		name = strings.TrimSpace(calorieRe.ReplaceAllString(name, ""))
		if name == "" {
			continue
		}

		c := float64(calories)
		items = append(items, types.FoodItem{FoodName: name, Quantity: 1, Calories: &c})
		total += c
	}

	if len(items) == 0 {
		return nil
	}
	return &types.ParsedFood{
		FoodName:        joinNames(items),
		Quantity:        len(items),
		Unit:            types.DefaultUnit,
		OriginalMessage: text,
		Items:           items,
		TotalCalories:   &total,
	}
}

// parseMultipleItems handles compound messages without calorie tokens,
// extracting a per-segment quantity from the ordered patterns.
func parseMultipleItems(text string) *types.ParsedFood {
	parts := splitRe.Split(text, -1)

	var items []types.FoodItem
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		quantity := 1
		name := part
		for _, re := range quantityRes {
			if m := re.FindStringSubmatch(part); m != nil {
				quantity, _ = strconv.Atoi(m[1])
				name = strings.TrimSpace(re.ReplaceAllString(part, ""))
				break
			}
		}
		if name == "" {
			continue
		}
		items = append(items, types.FoodItem{FoodName: name, Quantity: quantity})
	}

	if len(items) == 0 {
		return nil
	}
	return &types.ParsedFood{
		FoodName:        joinNames(items),
		Quantity:        len(items),
		Unit:            types.DefaultUnit,
		OriginalMessage: text,
		Items:           items,
	}
}

func joinNames(items []types.FoodItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.FoodName
	}
	return strings.Join(names, " + ")
}
