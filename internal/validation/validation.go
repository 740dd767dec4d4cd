package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// MaxMessageLength bounds the free-text message field, in runes.
const MaxMessageLength = 500

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidatePositiveInt returns an error if the value is zero or negative.
func ValidatePositiveInt(field string, value int) *ValidationError {
	if value <= 0 {
		return &ValidationError{
			Field:   field,
			Message: "must be a positive integer",
		}
	}
	return nil
}

// ValidateDate returns an error if the value is not a YYYY-MM-DD date.
func ValidateDate(field, value string) *ValidationError {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return &ValidationError{
			Field:   field,
			Message: "must be a date in YYYY-MM-DD form",
		}
	}
	return nil
}

// ValidateMessageRequest checks the fields of a message interpretation request.
func ValidateMessageRequest(req types.MessageRequest) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("user_id", req.UserID))
	c.Add(ValidateRequired("text", req.Text))
	if req.Text != "" {
		c.Add(ValidateUTF8("text", req.Text))
		c.Add(ValidateMaxLength("text", req.Text, MaxMessageLength))
	}
	return c.Errors()
}

// ValidateMealRequest checks the fields of a meal confirmation request.
func ValidateMealRequest(req types.MealRequest) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("user_id", req.UserID))
	c.Add(ValidateRequired("meal_type", string(req.MealType)))
	if req.MealType != "" {
		c.Add(ValidateEnum("meal_type", string(req.MealType), types.MealTypeNames()))
	}
	return c.Errors()
}
