// Package session tracks pending interactions: interpretations waiting for
// the user to pick a meal type before the entry is persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// ErrNoPendingInteraction indicates no interpretation is waiting for the
// user, either because none was created or because it expired.
var ErrNoPendingInteraction = errors.New("no pending interaction for user")

// ErrInvalidMealType indicates a finalize attempt with an unknown meal type.
// The pending interaction is left intact so the caller can retry.
var ErrInvalidMealType = errors.New("invalid meal type")

// Store holds at most one pending interaction per user. A second Put for the
// same user replaces the first; two rapid messages race on last-write-wins,
// which matches one-user-one-chat semantics.
type Store interface {
	// Get returns the user's pending interaction, or ErrNoPendingInteraction
	// if none exists or it has expired.
	Get(ctx context.Context, userID string) (*types.PendingInteraction, error)

	// Put stores the interaction, replacing any existing one for the user.
	Put(ctx context.Context, p *types.PendingInteraction) error

	// Delete removes the user's pending interaction if present.
	Delete(ctx context.Context, userID string) error
}

// Manager creates pending interactions after interpretation and finalizes
// them into food entries once the user picks a meal type.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a manager whose interactions expire after ttl.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Create stores a pending interaction for the user and returns it. The
// interaction expires ttl from now; an unconfirmed one simply ages out.
func (m *Manager) Create(ctx context.Context, userID string, parsed types.ParsedFood, estimate types.NutritionEstimate) (*types.PendingInteraction, error) {
	now := time.Now().UTC()
	p := &types.PendingInteraction{
		UserID:    userID,
		Parsed:    parsed,
		Estimate:  estimate,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Finalize consumes the user's pending interaction and builds the food
// entry to persist: calories rounded to a whole number, macros to one
// decimal. Fails with ErrNoPendingInteraction when nothing is waiting and
// with ErrInvalidMealType before consuming anything when the meal type is
// unknown.
func (m *Manager) Finalize(ctx context.Context, userID string, mealType types.MealType) (*types.FoodEntry, error) {
	if !types.ValidMealType(mealType) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMealType, mealType)
	}

	p, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	est := p.Estimate
	entry := &types.FoodEntry{
		ID:         ulid.Make().String(),
		UserID:     userID,
		FoodName:   p.Parsed.FoodName,
		MealType:   mealType,
		Calories:   int(math.Round(est.Calories)),
		Proteins:   round1(est.Proteins),
		Carbs:      round1(est.Carbs),
		Fats:       round1(est.Fats),
		Source:     est.Source,
		Confidence: est.Confidence,
		LoggedAt:   time.Now().UTC(),
	}

	if err := m.store.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return entry, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
