package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
)

// DayInput contains parameters for ListDay.
type DayInput struct {
	// Day is YYYY-MM-DD, "today" or "yesterday".
	Day string    `json:"day,omitempty"`
	Now time.Time `json:"-"`
}

// MealGroup is one meal of a day with its entries and subtotal.
type MealGroup struct {
	Meal    diet.Meal    `json:"meal"`
	Entries []db.Entry   `json:"entries"`
	Totals  diet.Amounts `json:"totals"`
}

// Progress compares one nutrient's day total to its goal. Percent is 0 when
// the goal is not positive.
type Progress struct {
	Key     diet.Key `json:"key"`
	Unit    string   `json:"unit"`
	Value   float64  `json:"value"`
	Goal    float64  `json:"goal"`
	Percent float64  `json:"percent"`
}

// DayOutput contains the result of ListDay.
type DayOutput struct {
	Day      string       `json:"day"`
	Meals    []MealGroup  `json:"meals"`
	Totals   diet.Amounts `json:"totals"`
	Goals    diet.Amounts `json:"goals"`
	Progress []Progress   `json:"progress"`
	Count    int          `json:"count"`
}

// ListDay returns a day's entries grouped by meal, with totals and progress
// against the stored goals. Every meal is present even when empty.
func ListDay(ctx context.Context, database *sql.DB, input DayInput) (*DayOutput, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	day, err := diet.ParseDay(input.Day, now)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	entries, err := db.ListEntriesForDay(ctx, database, day)
	if err != nil {
		return nil, err
	}
	goals, err := db.GetGoals(ctx, database)
	if err != nil {
		return nil, err
	}

	groups := make([]MealGroup, len(diet.Meals))
	index := make(map[diet.Meal]int, len(diet.Meals))
	for i, m := range diet.Meals {
		groups[i] = MealGroup{Meal: m, Entries: []db.Entry{}}
		index[m] = i
	}

	var totals diet.Amounts
	for _, e := range entries {
		i, ok := index[e.Meal]
		if !ok {
			i = index[diet.Snacks]
		}
		groups[i].Entries = append(groups[i].Entries, e)
		groups[i].Totals = groups[i].Totals.Add(e.Amounts)
		totals = totals.Add(e.Amounts)
	}

	return &DayOutput{
		Day:      day,
		Meals:    groups,
		Totals:   totals,
		Goals:    goals,
		Progress: progressOf(totals, goals),
		Count:    len(entries),
	}, nil
}

func progressOf(totals, goals diet.Amounts) []Progress {
	out := make([]Progress, len(diet.Keys))
	for i, k := range diet.Keys {
		p := Progress{Key: k, Unit: k.StoredUnit(), Value: totals.Get(k), Goal: goals.Get(k)}
		if p.Goal > 0 {
			p.Percent = p.Value / p.Goal * 100
		}
		out[i] = p
	}
	return out
}
