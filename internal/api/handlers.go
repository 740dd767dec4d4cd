package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hardikSrivastav/cal.it/internal/interpret"
	"github.com/hardikSrivastav/cal.it/internal/session"
	"github.com/hardikSrivastav/cal.it/internal/store"
	"github.com/hardikSrivastav/cal.it/internal/types"
	"github.com/hardikSrivastav/cal.it/internal/validation"
)

// Interpreter is the message interpretation surface the handlers depend on.
type Interpreter interface {
	Interpret(ctx context.Context, message string) (*interpret.Result, error)
	Status() types.BackendStatus
}

// SessionManager is the pending-interaction surface the handlers depend on.
type SessionManager interface {
	Create(ctx context.Context, userID string, parsed types.ParsedFood, estimate types.NutritionEstimate) (*types.PendingInteraction, error)
	Finalize(ctx context.Context, userID string, mealType types.MealType) (*types.FoodEntry, error)
}

// Handler implements the API handlers
type Handler struct {
	interpreter Interpreter
	sessions    SessionManager
	store       store.Store
	apiKey      string
	version     string
}

// NewHandler creates a new Handler wired to the interpretation pipeline.
func NewHandler(i Interpreter, s SessionManager, st store.Store, apiKey, version string) *Handler {
	return &Handler{
		interpreter: i,
		sessions:    s,
		store:       st,
		apiKey:      apiKey,
		version:     version,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	if _, err := h.store.GetStats(r.Context()); err != nil {
		slog.Error("health check: store unreachable", "error", err)
		database = "unavailable"
	}

	status := "healthy"
	if database != "ok" {
		status = "degraded"
	}

	resp := types.HealthResponse{
		Status:   status,
		Version:  h.version,
		Database: database,
		Backends: h.interpreter.Status(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Messages handles POST /api/v1/messages
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	var req types.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateMessageRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	result, err := h.interpreter.Interpret(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, interpret.ErrNoEstimateFound) {
			WriteProblemWithHints(w, r, "Could not estimate nutrition for this message",
				interpret.ClarificationHints(req.Text))
			return
		}
		slog.Error("interpretation failed", "error", err, "user_id", req.UserID)
		MapDomainError(w, r, err)
		return
	}

	pending, err := h.sessions.Create(r.Context(), req.UserID, result.Parsed, *result.Estimate)
	if err != nil {
		slog.Error("failed to stage pending interaction", "error", err, "user_id", req.UserID)
		MapDomainError(w, r, err)
		return
	}

	resp := types.MessageResponse{
		Parsed:    result.Parsed,
		Estimate:  *result.Estimate,
		MealTypes: types.MealTypes,
		ExpiresAt: pending.ExpiresAt,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Meals handles POST /api/v1/meals
func (h *Handler) Meals(w http.ResponseWriter, r *http.Request) {
	var req types.MealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateMealRequest(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	entry, err := h.sessions.Finalize(r.Context(), req.UserID, req.MealType)
	if err != nil {
		if !errors.Is(err, session.ErrNoPendingInteraction) {
			slog.Error("finalize failed", "error", err, "user_id", req.UserID)
		}
		MapDomainError(w, r, err)
		return
	}

	if err := h.store.SaveEntry(r.Context(), entry); err != nil {
		slog.Error("failed to persist entry", "error", err, "user_id", req.UserID)
		MapDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// Entries handles GET /api/v1/entries
func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var c validation.Collector
	c.Add(validation.ValidateRequired("user_id", q.Get("user_id")))

	filter := store.EntryFilter{UserID: q.Get("user_id")}

	if v := q.Get("from"); v != "" {
		if err := validation.ValidateDate("from", v); err != nil {
			c.Add(err)
		} else {
			filter.From, _ = time.Parse("2006-01-02", v)
		}
	}
	if v := q.Get("to"); v != "" {
		if err := validation.ValidateDate("to", v); err != nil {
			c.Add(err)
		} else {
			// "to" names the last day to include, so the bound is the
			// following midnight.
			day, _ := time.Parse("2006-01-02", v)
			filter.To = day.Add(24 * time.Hour)
		}
	}
	if v := q.Get("meal_type"); v != "" {
		c.Add(validation.ValidateEnum("meal_type", v, types.MealTypeNames()))
		filter.MealType = types.MealType(v)
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.Add(&validation.ValidationError{Field: "limit", Message: "must be a positive integer"})
		} else if verr := validation.ValidatePositiveInt("limit", n); verr != nil {
			c.Add(verr)
		} else {
			filter.Limit = n
		}
	}

	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	entries, err := h.store.ListEntries(r.Context(), filter)
	if err != nil {
		slog.Error("list entries failed", "error", err, "user_id", filter.UserID)
		MapDomainError(w, r, err)
		return
	}

	resp := types.EntriesResponse{
		Entries: entries,
		Count:   len(entries),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Summary handles GET /api/v1/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var c validation.Collector
	c.Add(validation.ValidateRequired("user_id", q.Get("user_id")))

	day := time.Now().UTC()
	if v := q.Get("date"); v != "" {
		if err := validation.ValidateDate("date", v); err != nil {
			c.Add(err)
		} else {
			day, _ = time.Parse("2006-01-02", v)
		}
	}

	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	summary, err := h.store.DailySummary(r.Context(), q.Get("user_id"), day)
	if err != nil {
		slog.Error("daily summary failed", "error", err, "user_id", q.Get("user_id"))
		MapDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
