package validation

import (
	"strings"
	"testing"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// --- ValidateRequired Tests ---

func TestValidateRequired_Present(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"plain", "2 rotis"},
		{"padded", "  dal  "},
		{"unicode", "पनीर टिक्का"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired("text", tt.value)
			if err != nil {
				t.Errorf("ValidateRequired(%q) = %v, want nil", tt.value, err)
			}
		})
	}
}

func TestValidateRequired_Missing(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired("user_id", tt.value)
			if err == nil {
				t.Errorf("ValidateRequired(%q) = nil, want error", tt.value)
				return
			}
			if err.Field != "user_id" {
				t.Errorf("error.Field = %q, want %q", err.Field, "user_id")
			}
		})
	}
}

// --- ValidateUTF8 Tests ---

func TestValidateUTF8_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ascii", "ate 2 eggs"},
		{"empty", ""},
		{"unicode", "खाया दाल चावल"},
		{"emoji", "pizza 🍕"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUTF8("text", tt.value)
			if err != nil {
				t.Errorf("ValidateUTF8(%q) = %v, want nil", tt.value, err)
			}
		})
	}
}

func TestValidateUTF8_Invalid(t *testing.T) {
	invalidUTF8 := string([]byte{0xff, 0xfe})

	err := ValidateUTF8("text", invalidUTF8)
	if err == nil {
		t.Error("ValidateUTF8(invalid) = nil, want error")
	}
	if err != nil && err.Field != "text" {
		t.Errorf("error.Field = %q, want %q", err.Field, "text")
	}
}

// --- ValidateMaxLength Tests ---

func TestValidateMaxLength_Within(t *testing.T) {
	value := strings.Repeat("a", 100)
	err := ValidateMaxLength("text", value, 500)
	if err != nil {
		t.Errorf("ValidateMaxLength(100 chars, max 500) = %v, want nil", err)
	}
}

func TestValidateMaxLength_AtLimit(t *testing.T) {
	value := strings.Repeat("a", 500)
	err := ValidateMaxLength("text", value, 500)
	if err != nil {
		t.Errorf("ValidateMaxLength(500 chars, max 500) = %v, want nil", err)
	}
}

func TestValidateMaxLength_Exceeds(t *testing.T) {
	value := strings.Repeat("a", 501)
	err := ValidateMaxLength("text", value, 500)
	if err == nil {
		t.Error("ValidateMaxLength(501 chars, max 500) = nil, want error")
	}
}

func TestValidateMaxLength_MultibyteRunes(t *testing.T) {
	// Each emoji is several bytes but one rune
	value := strings.Repeat("🍕", 500)
	err := ValidateMaxLength("text", value, 500)
	if err != nil {
		t.Errorf("ValidateMaxLength(500 emoji, max 500) = %v, want nil", err)
	}
}

// --- ValidateEnum Tests ---

func TestValidateEnum(t *testing.T) {
	allowed := []string{"Breakfast", "Lunch", "Dinner", "Snack"}

	if err := ValidateEnum("meal_type", "Lunch", allowed); err != nil {
		t.Errorf("ValidateEnum(Lunch) = %v, want nil", err)
	}

	err := ValidateEnum("meal_type", "Brunch", allowed)
	if err == nil {
		t.Fatal("ValidateEnum(Brunch) = nil, want error")
	}
	if !strings.Contains(err.Message, "Breakfast, Lunch, Dinner, Snack") {
		t.Errorf("error.Message = %q, want allowed values listed", err.Message)
	}
}

func TestValidateEnum_CaseSensitive(t *testing.T) {
	allowed := []string{"Breakfast", "Lunch"}
	if err := ValidateEnum("meal_type", "lunch", allowed); err == nil {
		t.Error("ValidateEnum(lunch) = nil, want error for wrong case")
	}
}

// --- ValidatePositiveInt Tests ---

func TestValidatePositiveInt(t *testing.T) {
	if err := ValidatePositiveInt("limit", 25); err != nil {
		t.Errorf("ValidatePositiveInt(25) = %v, want nil", err)
	}
	if err := ValidatePositiveInt("limit", 0); err == nil {
		t.Error("ValidatePositiveInt(0) = nil, want error")
	}
	if err := ValidatePositiveInt("limit", -5); err == nil {
		t.Error("ValidatePositiveInt(-5) = nil, want error")
	}
}

// --- ValidateDate Tests ---

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "2026-08-24", false},
		{"leap day", "2024-02-29", false},
		{"not a date", "yesterday", true},
		{"wrong order", "24-08-2026", true},
		{"impossible day", "2026-02-30", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate("date", tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateDate(%q) = nil, want error", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateDate(%q) = %v, want nil", tt.value, err)
			}
		})
	}
}

// --- Collector Tests ---

func TestCollector_AccumulatesErrors(t *testing.T) {
	var c Collector

	c.Add(ValidateRequired("user_id", ""))
	c.Add(ValidateRequired("text", "ate rice"))
	c.Add(ValidateMaxLength("text", strings.Repeat("a", 600), 500))

	if !c.HasErrors() {
		t.Fatal("expected collector to have errors")
	}
	errs := c.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Field != "user_id" || errs[1].Field != "text" {
		t.Errorf("unexpected error fields: %+v", errs)
	}
}

func TestCollector_Empty(t *testing.T) {
	var c Collector

	c.Add(nil)
	if c.HasErrors() {
		t.Error("expected no errors after adding nil")
	}
	if len(c.Errors()) != 0 {
		t.Errorf("expected empty error list, got %v", c.Errors())
	}
}

// --- ValidateMessageRequest Tests ---

func TestValidateMessageRequest_Valid(t *testing.T) {
	req := types.MessageRequest{
		UserID: "user-1",
		Text:   "I had 2 rotis and dal for lunch",
	}

	errs := ValidateMessageRequest(req)
	if len(errs) != 0 {
		t.Errorf("ValidateMessageRequest(valid) = %v, want no errors", errs)
	}
}

func TestValidateMessageRequest_MissingFields(t *testing.T) {
	errs := ValidateMessageRequest(types.MessageRequest{})

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	if !fields["user_id"] || !fields["text"] {
		t.Errorf("expected user_id and text errors, got: %v", errs)
	}
}

func TestValidateMessageRequest_TextTooLong(t *testing.T) {
	req := types.MessageRequest{
		UserID: "user-1",
		Text:   strings.Repeat("a", MaxMessageLength+1),
	}

	errs := ValidateMessageRequest(req)
	hasTextError := false
	for _, e := range errs {
		if e.Field == "text" && strings.Contains(e.Message, "maximum length") {
			hasTextError = true
			break
		}
	}
	if !hasTextError {
		t.Errorf("expected text length error, got: %v", errs)
	}
}

// --- ValidateMealRequest Tests ---

func TestValidateMealRequest_Valid(t *testing.T) {
	for _, mt := range types.MealTypes {
		req := types.MealRequest{UserID: "user-1", MealType: mt}
		if errs := ValidateMealRequest(req); len(errs) != 0 {
			t.Errorf("ValidateMealRequest(%s) = %v, want no errors", mt, errs)
		}
	}
}

func TestValidateMealRequest_UnknownMealType(t *testing.T) {
	req := types.MealRequest{UserID: "user-1", MealType: "Brunch"}

	errs := ValidateMealRequest(req)
	hasMealTypeError := false
	for _, e := range errs {
		if e.Field == "meal_type" {
			hasMealTypeError = true
			break
		}
	}
	if !hasMealTypeError {
		t.Errorf("expected meal_type error, got: %v", errs)
	}
}

func TestValidateMealRequest_MissingUserID(t *testing.T) {
	req := types.MealRequest{MealType: types.MealDinner}

	errs := ValidateMealRequest(req)
	hasUserIDError := false
	for _, e := range errs {
		if e.Field == "user_id" {
			hasUserIDError = true
			break
		}
	}
	if !hasUserIDError {
		t.Errorf("expected user_id error, got: %v", errs)
	}
}
