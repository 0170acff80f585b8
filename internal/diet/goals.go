package diet

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultGoals is the goal set used before the user picks anything.
func DefaultGoals() Amounts {
	return Amounts{
		Calories:           2200,
		Carbs:              275,
		Protein:            110,
		Fat:                73,
		SaturatedFat:       22,
		MonounsaturatedFat: 34,
		PolyunsaturatedFat: 17,
		Fiber:              30,
		Sugar:              50,
		Sodium:             2.3,
		Potassium:          3.4,
		Calcium:            1.0,
		Iron:               0.018,
		VitaminA:           0.0009,
		VitaminC:           0.09,
		Cholesterol:        0.3,
	}
}

// Style is a named macro split.
type Style string

const (
	Balanced      Style = "balanced"
	MildKeto      Style = "mild_keto"
	Keto          Style = "keto"
	LowCarb       Style = "low_carb"
	Mediterranean Style = "mediterranean"
	Vegan         Style = "vegan"
	Vegetarian    Style = "vegetarian"
	Paleo         Style = "paleo"
	HighProtein   Style = "high_protein"
)

type split struct {
	carbsPct, proteinPct, fatPct float64
	satFrac, monoFrac, polyFrac  float64
	sugarPctKcal                 float64
	sodiumG, potassiumG          float64
}

var splits = map[Style]split{
	Balanced:      {50, 20, 30, .30, .50, .20, .10, 2.3, 3.4},
	Keto:          {5, 20, 75, .15, .50, .35, .03, 4.0, 4.7},
	MildKeto:      {10, 25, 65, .10, .50, .40, .05, 4.0, 4.7},
	LowCarb:       {25, 25, 50, .20, .50, .30, .07, 3.0, 4.0},
	Vegan:         {55, 20, 25, .10, .55, .35, .10, 2.3, 4.7},
	Vegetarian:    {50, 20, 30, .12, .50, .38, .10, 2.3, 4.7},
	Paleo:         {30, 30, 40, .20, .50, .30, .07, 3.0, 4.7},
	Mediterranean: {45, 15, 40, .10, .60, .30, .10, 2.3, 4.7},
	HighProtein:   {40, 30, 30, .20, .50, .30, .10, 2.3, 4.7},
}

// Styles returns all styles sorted by name.
func Styles() []Style {
	out := make([]Style, 0, len(splits))
	for s := range splits {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseStyle accepts "mild_keto", "mild-keto" or "Mild keto".
func ParseStyle(s string) (Style, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	st := Style(norm)
	if _, ok := splits[st]; !ok {
		return "", fmt.Errorf("unknown diet style %q", s)
	}
	return st, nil
}

// GoalsFor derives a goal set from a daily calorie target and a diet style.
func GoalsFor(calories float64, style Style) (Amounts, error) {
	sp, ok := splits[style]
	if !ok {
		return Amounts{}, fmt.Errorf("unknown diet style %q", style)
	}
	if calories <= 0 {
		return Amounts{}, fmt.Errorf("calorie target must be positive, got %v", calories)
	}

	fat := calories * sp.fatPct / 100 / 9
	return Amounts{
		Calories:           calories,
		Carbs:              calories * sp.carbsPct / 100 / 4,
		Protein:            calories * sp.proteinPct / 100 / 4,
		Fat:                fat,
		SaturatedFat:       fat * sp.satFrac,
		MonounsaturatedFat: fat * sp.monoFrac,
		PolyunsaturatedFat: fat * sp.polyFrac,
		Fiber:              calories / 1000 * 14,
		Sugar:              calories * sp.sugarPctKcal / 4,
		Sodium:             sp.sodiumG,
		Potassium:          sp.potassiumG,
		Calcium:            1.0,
		Iron:               0.018,
		VitaminA:           0.0009,
		VitaminC:           0.09,
		Cholesterol:        0.3,
	}, nil
}

// GoalFile is the YAML document written by WriteGoals.
type GoalFile struct {
	Style    Style   `yaml:"style,omitempty"`
	Calories float64 `yaml:"calorie_target,omitempty"`
	Goals    Amounts `yaml:"goals"`
}

// ReadGoals parses a YAML goal file. When the file names a style and calorie
// target without explicit goals, the goals are derived.
func ReadGoals(r io.Reader) (GoalFile, error) {
	var f GoalFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return GoalFile{}, fmt.Errorf("decode goals: %w", err)
	}
	if f.Goals == (Amounts{}) && f.Style != "" {
		g, err := GoalsFor(f.Calories, f.Style)
		if err != nil {
			return GoalFile{}, err
		}
		f.Goals = g
	}
	for _, k := range Keys {
		if f.Goals.Get(k) < 0 {
			return GoalFile{}, fmt.Errorf("goal %s must not be negative", k)
		}
	}
	return f, nil
}

// WriteGoals writes a YAML goal file.
func WriteGoals(w io.Writer, f GoalFile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	return enc.Close()
}
