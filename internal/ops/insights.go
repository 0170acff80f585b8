package ops

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/suggest"
)

// WindowDay is one day of the suggestion window.
type WindowDay struct {
	Day    string       `json:"day"`
	Totals diet.Amounts `json:"totals"`
}

// GatherWindow loads the totals of the suggest.WindowDays days before today,
// oldest first. The day queries run concurrently; any failure cancels the
// rest and fails the whole window.
func GatherWindow(ctx context.Context, database *sql.DB, today string) ([]WindowDay, error) {
	days, err := diet.Window(today, suggest.WindowDays)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	out := make([]WindowDay, len(days))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range days {
		i, d := i, d
		g.Go(func() error {
			totals, err := db.DayTotals(gctx, database, d)
			if err != nil {
				return err
			}
			out[i] = WindowDay{Day: d, Totals: totals}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SuggestionsInput contains parameters for Suggestions.
type SuggestionsInput struct {
	// Today is YYYY-MM-DD, "today" or "yesterday"; the window ends the day
	// before it.
	Today string    `json:"today,omitempty"`
	Now   time.Time `json:"-"`
}

// SuggestionsOutput contains the result of Suggestions.
type SuggestionsOutput struct {
	Today       string               `json:"today"`
	Window      []WindowDay          `json:"window"`
	Goals       diet.Amounts         `json:"goals"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// Suggestions gathers the trailing window and runs the suggestion engine
// against the stored goals.
func Suggestions(ctx context.Context, database *sql.DB, input SuggestionsInput) (*SuggestionsOutput, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	today, err := diet.ParseDay(input.Today, now)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	window, err := GatherWindow(ctx, database, today)
	if err != nil {
		return nil, err
	}
	goals, err := db.GetGoals(ctx, database)
	if err != nil {
		return nil, err
	}

	var totals []suggest.DailyTotal
	for _, w := range window {
		totals = append(totals, suggest.FromAmounts(w.Day, w.Totals)...)
	}
	found := suggest.Compute(totals, goals)
	if found == nil {
		found = []suggest.Suggestion{}
	}
	return &SuggestionsOutput{
		Today:       today,
		Window:      window,
		Goals:       goals,
		Suggestions: found,
	}, nil
}
