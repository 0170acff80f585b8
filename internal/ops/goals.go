package ops

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/hpungsan/citrus/internal/db"
	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/errors"
)

// GoalsOutput describes the stored goal set. Style and CalorieTarget are
// empty when no diet style was ever applied.
type GoalsOutput struct {
	Goals         diet.Amounts `json:"goals"`
	Style         diet.Style   `json:"style,omitempty"`
	CalorieTarget float64      `json:"calorie_target,omitempty"`
}

// GetGoals returns the stored goals and the diet style they came from.
func GetGoals(ctx context.Context, database *sql.DB) (*GoalsOutput, error) {
	goals, err := db.GetGoals(ctx, database)
	if err != nil {
		return nil, err
	}
	out := &GoalsOutput{Goals: goals}

	style, ok, err := db.GetSetting(ctx, database, db.SettingDietStyle)
	if err != nil {
		return nil, err
	}
	if ok {
		out.Style = diet.Style(style)
	}
	kcal, ok, err := db.GetCalorieTarget(ctx, database)
	if err != nil {
		return nil, err
	}
	if ok {
		out.CalorieTarget = kcal
	}
	return out, nil
}

// SetGoalsInput contains partial goal overrides keyed by stored key.
type SetGoalsInput struct {
	Values map[string]float64 `json:"values"`
}

// SetGoals overrides individual goals and keeps the rest.
func SetGoals(ctx context.Context, database *sql.DB, input SetGoalsInput) (*GoalsOutput, error) {
	if len(input.Values) == 0 {
		return nil, errors.NewInvalidRequest("at least one goal value is required")
	}
	goals, err := db.GetGoals(ctx, database)
	if err != nil {
		return nil, err
	}
	for name, v := range input.Values {
		k, err := diet.ParseKey(strings.TrimSpace(name))
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("goal %s must be a non-negative number", k))
		}
		goals.Set(k, v)
	}
	if err := db.SaveGoals(ctx, database, goals); err != nil {
		return nil, err
	}
	return GetGoals(ctx, database)
}

// StyleInput contains parameters for ApplyDietStyle.
type StyleInput struct {
	Calories float64 `json:"calories"`
	Style    string  `json:"style"`
}

// ApplyDietStyle derives a full goal set from a calorie target and a diet
// style, stores it and remembers the choice.
func ApplyDietStyle(ctx context.Context, database *sql.DB, input StyleInput) (*GoalsOutput, error) {
	style, err := diet.ParseStyle(input.Style)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	goals, err := diet.GoalsFor(input.Calories, style)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if err := saveStyled(ctx, database, goals, style, input.Calories); err != nil {
		return nil, err
	}
	return GetGoals(ctx, database)
}

// ImportGoals reads a YAML goal file and stores it.
func ImportGoals(ctx context.Context, database *sql.DB, r io.Reader) (*GoalsOutput, error) {
	f, err := diet.ReadGoals(r)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if f.Style != "" {
		if err := saveStyled(ctx, database, f.Goals, f.Style, f.Calories); err != nil {
			return nil, err
		}
	} else if err := db.SaveGoals(ctx, database, f.Goals); err != nil {
		return nil, err
	}
	return GetGoals(ctx, database)
}

// ExportGoals writes the stored goals as a YAML goal file.
func ExportGoals(ctx context.Context, database *sql.DB, w io.Writer) error {
	out, err := GetGoals(ctx, database)
	if err != nil {
		return err
	}
	f := diet.GoalFile{Style: out.Style, Calories: out.CalorieTarget, Goals: out.Goals}
	if err := diet.WriteGoals(w, f); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func saveStyled(ctx context.Context, database *sql.DB, goals diet.Amounts, style diet.Style, kcal float64) error {
	if err := db.SaveGoals(ctx, database, goals); err != nil {
		return err
	}
	if err := db.SetSetting(ctx, database, db.SettingDietStyle, string(style)); err != nil {
		return err
	}
	if kcal > 0 {
		return db.SetSetting(ctx, database, db.SettingCalorieTarget, strconv.FormatFloat(kcal, 'f', -1, 64))
	}
	return nil
}
