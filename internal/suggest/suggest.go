// Package suggest compares the trailing days of logged intake against goals
// and produces ranked, human-readable suggestions.
//
// Compute is pure: it reads no clock, store or network. Callers gather the
// window (see ops.GatherWindow) and pass it in.
package suggest

import (
	"fmt"
	"sort"

	"github.com/hpungsan/citrus/internal/diet"
	"github.com/hpungsan/citrus/internal/nutrient"
)

const (
	// WindowDays is the number of trailing days a window covers.
	WindowDays = 10
	// MaxSuggestions caps the output of Compute.
	MaxSuggestions = 10
	// LowFactor scales a goal into the "not reached" threshold.
	LowFactor = 0.9
	// Tag is attached to every suggestion.
	Tag = "body"
)

// Direction says which side of the goal a suggestion is about.
type Direction string

const (
	TooLow  Direction = "too_low"
	TooHigh Direction = "too_high"
)

// DailyTotal is one nutrient's total for one calendar day.
type DailyTotal struct {
	Date  string   `json:"date"`
	Key   diet.Key `json:"key"`
	Value float64  `json:"value"`
}

// FromAmounts expands one day's totals into a DailyTotal per rule nutrient.
func FromAmounts(date string, a diet.Amounts) []DailyTotal {
	out := make([]DailyTotal, len(Rules))
	for i, r := range Rules {
		out[i] = DailyTotal{Date: date, Key: r.Key, Value: a.Get(r.Key)}
	}
	return out
}

// Point is one day on a suggestion chart.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Band is the acceptable range drawn behind a chart.
type Band struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// Suggestion is one finding about the window.
type Suggestion struct {
	ID          string    `json:"id"`
	Key         diet.Key  `json:"key"`
	Title       string    `json:"title"`
	Direction   Direction `json:"direction"`
	Tag         string    `json:"tag"`
	DayCount    int       `json:"day_count"`
	Importance  float64   `json:"importance"`
	Description string    `json:"description"`
	Answer      string    `json:"answer"`
	Graph       []Point   `json:"graph"`
	SafeBand    Band      `json:"safe_band"`
}

// Rule holds the thresholds for one nutrient.
type Rule struct {
	Key diet.Key
	// Upper scales the goal into the "exceeded" threshold.
	Upper float64
	// MinDays is the breach count needed before a suggestion is emitted.
	MinDays int
	Weight  float64
	// Label is used in titles, Noun in descriptions.
	Label string
	Noun  string
}

// Rules covers every nutrient the engine checks, in no particular order;
// output order comes from sorting.
var Rules = []Rule{
	{diet.Calories, 1.10, 3, 1.0, "calories", "calorie"},
	{diet.Carbs, 1.15, 3, 0.7, "carbs", "carbs"},
	{diet.Protein, 1.20, 3, 0.9, "protein", "protein"},
	{diet.Fat, 1.15, 3, 0.8, "fat", "fat"},
	{diet.Fiber, 1.25, 4, 0.6, "fiber", "fiber"},
	{diet.Sugar, 1.00, 2, 0.5, "sugar", "sugar"},
	{diet.SaturatedFat, 1.00, 2, 0.6, "saturated fat", "saturated fat"},
	{diet.MonounsaturatedFat, 1.25, 4, 0.4, "monounsaturated fat", "monounsaturated fat"},
	{diet.Cholesterol, 1.00, 2, 0.3, "cholesterol", "cholesterol"},
	{diet.Sodium, 1.00, 2, 0.4, "sodium", "sodium"},
	{diet.Potassium, 1.10, 4, 0.5, "potassium", "potassium"},
	{diet.VitaminA, 1.10, 4, 0.3, "vitamin A", "vitamin A"},
	{diet.VitaminC, 1.25, 4, 0.3, "vitamin C", "vitamin C"},
	{diet.Calcium, 1.10, 4, 0.6, "calcium", "calcium"},
	{diet.Iron, 1.10, 4, 0.6, "iron", "iron"},
}

// Compute scans a window of daily totals against goals.
//
// Days whose calorie total is zero, or that carry no calorie entry, count as
// "nothing logged" and never contribute a breach. A nutrient is "not reached"
// on a day when its total is strictly below goal*LowFactor and "exceeded"
// when strictly above goal*Upper. Each direction that reaches the rule's
// MinDays yields one suggestion. Results are sorted by title, then by
// importance descending, and capped at MaxSuggestions. Nutrients with a
// non-positive goal are skipped.
func Compute(window []DailyTotal, goals diet.Amounts) []Suggestion {
	byDay := make(map[string]map[diet.Key]float64)
	for _, t := range window {
		m, ok := byDay[t.Date]
		if !ok {
			m = make(map[diet.Key]float64)
			byDay[t.Date] = m
		}
		m[t.Key] += t.Value
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	logged := make(map[string]bool, len(dates))
	for _, d := range dates {
		if kcal, ok := byDay[d][diet.Calories]; ok && kcal != 0 {
			logged[d] = true
		}
	}

	var out []Suggestion
	for _, r := range Rules {
		goal := goals.Get(r.Key)
		if goal <= 0 {
			continue
		}
		lower := goal * LowFactor
		upper := goal * r.Upper

		graph := make([]Point, len(dates))
		low, high := 0, 0
		for i, d := range dates {
			v := byDay[d][r.Key]
			graph[i] = Point{Date: d, Value: v}
			if !logged[d] {
				continue
			}
			if v < lower {
				low++
			}
			if v > upper {
				high++
			}
		}

		band := Band{Upper: upper, Lower: lower}
		if low >= r.MinDays {
			out = append(out, r.suggestion(TooLow, low, graph, band))
		}
		if high >= r.MinDays {
			out = append(out, r.suggestion(TooHigh, high, graph, band))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].Importance > out[j].Importance
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func (r Rule) suggestion(dir Direction, days int, graph []Point, band Band) Suggestion {
	name := nutrient.TitleCase(r.Label)
	s := Suggestion{
		Key:        r.Key,
		Direction:  dir,
		Tag:        Tag,
		DayCount:   days,
		Importance: r.Weight * float64(days),
		Graph:      append([]Point(nil), graph...),
		SafeBand:   band,
	}
	switch dir {
	case TooLow:
		s.ID = string(r.Key) + ".little"
		s.Title = name + " not reached"
		s.Description = fmt.Sprintf("In the past %d days, you didn't reach your %s goal %d times.", WindowDays, r.Noun, days)
	case TooHigh:
		s.ID = string(r.Key) + ".much"
		s.Title = name + " exceeded"
		s.Description = fmt.Sprintf("In the past %d days, you exceeded your %s goal %d times.", WindowDays, r.Noun, days)
	}
	s.Answer = answers[s.ID]
	return s
}

// RuleFor returns the rule of a key.
func RuleFor(k diet.Key) (Rule, bool) {
	for _, r := range Rules {
		if r.Key == k {
			return r, true
		}
	}
	return Rule{}, false
}
