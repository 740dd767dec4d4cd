package main

import (
	"time"

	"github.com/hardikSrivastav/cal.it/internal/config"
	"github.com/hardikSrivastav/cal.it/internal/interpret"
	"github.com/hardikSrivastav/cal.it/internal/llm"
	"github.com/hardikSrivastav/cal.it/internal/nutrition"
	"github.com/hardikSrivastav/cal.it/internal/search"
)

// buildBackends constructs every lookup backend from configuration. Clients
// with missing credentials report themselves unavailable and the interpreter
// skips their stages, so nothing here is conditional.
func buildBackends(cfg *config.Config) interpret.Backends {
	return interpret.Backends{
		Analyzer:    llm.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
		Search:      search.NewClient(cfg.Exa.APIKey),
		USDA:        nutrition.NewUSDAClient(cfg.USDA.APIKey),
		Nutritionix: nutrition.NewNutritionixClient(cfg.Nutritionix.AppID, cfg.Nutritionix.APIKey),
		Scraper:     nutrition.NewScraper(cfg.Scraper.Enabled, time.Duration(cfg.Scraper.Timeout)),
	}
}
