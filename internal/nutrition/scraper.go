package nutrition

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

const scraperUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var (
	fatSecretCaloriesRe = regexp.MustCompile(`Calories`)
	fatSecretProteinRe  = regexp.MustCompile(`Protein`)
	fatSecretCarbRe     = regexp.MustCompile(`Carbohydrate`)
	fatSecretFatRe      = regexp.MustCompile(`Fat`)

	mfpCaloriesRe = regexp.MustCompile(`(?i)calories`)
	mfpProteinRe  = regexp.MustCompile(`(?i)protein`)
	mfpCarbRe     = regexp.MustCompile(`(?i)carb`)
	mfpFatRe      = regexp.MustCompile(`(?i)fat`)

	wholeNumberRe = regexp.MustCompile(`(\d+)`)
	decimalRe     = regexp.MustCompile(`(\d+\.?\d*)`)
)

// Scraper extracts nutrition facts from public nutrition sites by
// label-adjacent text matching. Fragile by construction: a missing
// nutrient silently omits that field rather than failing.
type Scraper struct {
	enabled          bool
	fatSecretBase    string
	myFitnessPalBase string
	client           *http.Client
	politeDelay      time.Duration
}

// NewScraper creates the scraping backend. It needs no credentials;
// enabled=false turns it off entirely.
func NewScraper(enabled bool, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scraper{
		enabled:          enabled,
		fatSecretBase:    "https://www.fatsecret.com",
		myFitnessPalBase: "https://www.myfitnesspal.com",
		client:           &http.Client{Timeout: timeout},
		politeDelay:      time.Second,
	}
}

// Available reports whether scraping is enabled.
func (s *Scraper) Available() bool {
	return s.enabled
}

// Lookup tries FatSecret first, then MyFitnessPal after a polite pause.
// Returns nil when neither site yields any nutrient.
func (s *Scraper) Lookup(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	if !s.enabled {
		return nil, ErrUnavailable
	}

	est, fsErr := s.scrapeFatSecret(ctx, foodName)
	if est != nil {
		return est, nil
	}

	if err := s.pause(ctx); err != nil {
		return nil, err
	}

	est, mfpErr := s.scrapeMyFitnessPal(ctx, foodName)
	if est != nil {
		return est, nil
	}
	return nil, errors.Join(fsErr, mfpErr)
}

// scrapeFatSecret searches FatSecret, follows the first result link and
// reads the nutritionFacts block on the detail page.
func (s *Scraper) scrapeFatSecret(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	searchURL := s.fatSecretBase + "/calories-nutrition/search?q=" + strings.ReplaceAll(foodName, " ", "+")
	doc, err := s.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("fatsecret search: %w", err)
	}

	href, ok := doc.Find(`a[href*="/calories-nutrition/"]`).First().Attr("href")
	if !ok {
		return nil, nil
	}

	detail, err := s.fetchDocument(ctx, s.fatSecretBase+href)
	if err != nil {
		return nil, fmt.Errorf("fatsecret detail: %w", err)
	}

	section := detail.Find("div.nutritionFacts").First()
	if section.Length() == 0 {
		return nil, nil
	}

	est := &types.NutritionEstimate{
		FoodName:   foodName,
		Quantity:   1,
		Unit:       types.DefaultUnit,
		Source:     types.SourceScraped,
		Confidence: types.ConfidenceLow,
	}
	found := false

	if text := textAfterLabel(section, fatSecretCaloriesRe); text != "" {
		if v, ok := extractNumber(text, wholeNumberRe); ok {
			est.Calories = v
			found = true
		}
	}
	if text := textAfterLabel(section, fatSecretProteinRe); text != "" {
		if v, ok := extractNumber(text, decimalRe); ok {
			est.Proteins = v
			found = true
		}
	}
	if text := textAfterLabel(section, fatSecretCarbRe); text != "" {
		if v, ok := extractNumber(text, decimalRe); ok {
			est.Carbs = v
			found = true
		}
	}
	if text := textAfterLabel(section, fatSecretFatRe); text != "" {
		if v, ok := extractNumber(text, decimalRe); ok {
			est.Fats = v
			found = true
		}
	}

	if !found {
		return nil, nil
	}
	return est, nil
}

// scrapeMyFitnessPal reads nutrients off the search page itself; the
// values live in the same element as the label, so extraction is looser.
func (s *Scraper) scrapeMyFitnessPal(ctx context.Context, foodName string) (*types.NutritionEstimate, error) {
	searchURL := s.myFitnessPalBase + "/food/search?search=" + strings.ReplaceAll(foodName, " ", "+")
	doc, err := s.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("myfitnesspal search: %w", err)
	}

	est := &types.NutritionEstimate{
		FoodName:   foodName,
		Quantity:   1,
		Unit:       types.DefaultUnit,
		Source:     types.SourceScraped,
		Confidence: types.ConfidenceLow,
	}
	found := false

	if text := labelText(doc.Selection, mfpCaloriesRe); text != "" {
		if v, ok := extractNumber(text, wholeNumberRe); ok {
			est.Calories = v
			found = true
		}
	}
	if text := labelText(doc.Selection, mfpProteinRe); text != "" {
		if v, ok := extractNumber(text, decimalRe); ok {
			est.Proteins = v
			found = true
		}
	}
	if text := labelText(doc.Selection, mfpCarbRe); text != "" {
		if v, ok := extractNumber(text, decimalRe); ok {
			est.Carbs = v
			found = true
		}
	}
	if text := labelText(doc.Selection, mfpFatRe); text != "" {
		if v, ok := extractNumber(text, decimalRe); ok {
			est.Fats = v
			found = true
		}
	}

	if !found {
		return nil, nil
	}
	return est, nil
}

func (s *Scraper) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (s *Scraper) pause(ctx context.Context) error {
	if s.politeDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.politeDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// textAfterLabel finds the first leaf element whose text matches the
// label and returns the text of the element following it.
func textAfterLabel(section *goquery.Selection, label *regexp.Regexp) string {
	var out string
	section.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Children().Length() > 0 || !label.MatchString(sel.Text()) {
			return true
		}
		next := sel.Next()
		if next.Length() == 0 {
			next = sel.Parent().Next()
		}
		out = next.Text()
		return false
	})
	return out
}

// labelText finds the first leaf element whose text matches the label
// and returns that element's own text.
func labelText(root *goquery.Selection, label *regexp.Regexp) string {
	var out string
	root.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Children().Length() > 0 || !label.MatchString(sel.Text()) {
			return true
		}
		out = sel.Text()
		return false
	})
	return out
}

func extractNumber(text string, re *regexp.Regexp) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
