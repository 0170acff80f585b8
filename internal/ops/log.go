package ops

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/nutrient"
)

// MaxPortionGrams bounds a single logged portion.
const MaxPortionGrams = 5000

// LogFoodInput contains parameters for LogFood.
type LogFoodInput struct {
	Profile nutrient.Profile `json:"profile"`
	// Name overrides the profile name.
	Name string `json:"name,omitempty"`
	// Grams defaults to the profile's default serving.
	Grams float64 `json:"grams,omitempty"`
	// Meal defaults to the meal of the current time of day.
	Meal string `json:"meal,omitempty"`
	// Day is YYYY-MM-DD, "today" or "yesterday"; it defaults to today.
	Day string `json:"day,omitempty"`
	// Now is the logging time; zero means time.Now().
	Now time.Time `json:"-"`
}

// LogFoodOutput contains the result of LogFood.
type LogFoodOutput struct {
	ID    string    `json:"id"`
	Entry *db.Entry `json:"entry"`
}

// LogFood stores a portion of a normalized profile in the food log.
func LogFood(ctx context.Context, database *sql.DB, input LogFoodInput) (*LogFoodOutput, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSpace(input.Profile.Name())
	}
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	grams := input.Grams
	if grams == 0 {
		grams = input.Profile.DefaultServingGrams()
	}
	if grams <= 0 || math.IsNaN(grams) || math.IsInf(grams, 0) {
		return nil, errors.NewInvalidRequest("grams must be positive")
	}
	if grams > MaxPortionGrams {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("grams must not exceed %d", MaxPortionGrams))
	}

	meal := diet.MealFor(now)
	if strings.TrimSpace(input.Meal) != "" {
		m, err := diet.ParseMeal(input.Meal)
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
		meal = m
	}

	day, err := diet.ParseDay(input.Day, now)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	entry := &db.Entry{
		ID:           newID(now),
		Name:         name,
		Meal:         meal,
		Day:          day,
		LoggedAt:     now.Unix(),
		PortionGrams: grams,
		Amounts:      diet.ToStored(input.Profile, grams),
	}
	if err := db.InsertEntry(ctx, database, entry); err != nil {
		return nil, err
	}
	return &LogFoodOutput{ID: entry.ID, Entry: entry}, nil
}

// RelogInput contains parameters for Relog. Zero values fall back to the
// original entry's portion and meal, and to today.
type RelogInput struct {
	ID    string    `json:"id"`
	Grams float64   `json:"grams,omitempty"`
	Meal  string    `json:"meal,omitempty"`
	Day   string    `json:"day,omitempty"`
	Now   time.Time `json:"-"`
}

// Relog logs a stored entry again, rebuilding its profile from the stored
// amounts.
func Relog(ctx context.Context, database *sql.DB, input RelogInput) (*LogFoodOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	orig, err := db.GetEntry(ctx, database, id)
	if err != nil {
		return nil, err
	}

	meal := input.Meal
	if strings.TrimSpace(meal) == "" {
		meal = string(orig.Meal)
	}
	return LogFood(ctx, database, LogFoodInput{
		Profile: diet.ProfileFromAmounts(orig.Name, orig.PortionGrams, orig.Amounts),
		Grams:   input.Grams,
		Meal:    meal,
		Day:     input.Day,
		Now:     input.Now,
	})
}

// DeleteInput contains parameters for DeleteEntry.
type DeleteInput struct {
	ID string `json:"id"`
}

// DeleteOutput contains the result of DeleteEntry.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteEntry removes a log entry permanently.
func DeleteEntry(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.DeleteEntry(ctx, database, id); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: id}, nil
}
