package diet

import (
	"fmt"
	"strings"
	"time"
)

// Meal groups log entries within a day.
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
	Snacks    Meal = "snacks"
)

// Meals lists meals in display order.
var Meals = []Meal{Breakfast, Lunch, Dinner, Snacks}

// ParseMeal accepts a meal name case-insensitively; "snack" is accepted for
// Snacks.
func ParseMeal(s string) (Meal, error) {
	switch m := Meal(strings.ToLower(strings.TrimSpace(s))); m {
	case Breakfast, Lunch, Dinner, Snacks:
		return m, nil
	case "snack":
		return Snacks, nil
	}
	return "", fmt.Errorf("unknown meal %q (want breakfast, lunch, dinner or snacks)", s)
}

// MealFor picks a meal from the local clock: breakfast before 11:00, lunch
// before 16:00, dinner before 22:00, snacks otherwise.
func MealFor(t time.Time) Meal {
	switch h := t.Hour(); {
	case h < 11:
		return Breakfast
	case h < 16:
		return Lunch
	case h < 22:
		return Dinner
	}
	return Snacks
}

// DayLayout is the calendar-day format used for log entries.
const DayLayout = "2006-01-02"

// Day formats t as a calendar day in t's location.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay resolves "today", "yesterday" or a YYYY-MM-DD date relative to now.
func ParseDay(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return Day(now), nil
	case "yesterday":
		return Day(now.AddDate(0, 0, -1)), nil
	}
	t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), now.Location())
	if err != nil {
		return "", fmt.Errorf("invalid day %q (want YYYY-MM-DD, today or yesterday)", s)
	}
	return Day(t), nil
}

// Window returns the n calendar days before today, oldest first. Today is
// not included.
func Window(today string, n int) ([]string, error) {
	t, err := time.Parse(DayLayout, today)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", today, err)
	}
	days := make([]string, n)
	for i := 0; i < n; i++ {
		days[n-1-i] = Day(t.AddDate(0, 0, -(i + 1)))
	}
	return days, nil
}
