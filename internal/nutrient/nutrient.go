// Package nutrient defines the canonical nutrient identifiers, their unit
// classes, unit conversion, and the per-100g Profile every food source is
// normalized into.
package nutrient

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ID is a nutrient identifier. Values are FoodData Central nutrient numbers so
// that first-party payloads map without translation.
type ID int

const (
	EnergyKcal  ID = 1008
	Protein     ID = 1003
	Fat         ID = 1004
	Carbs       ID = 1005
	Fiber       ID = 1079
	Sugars      ID = 2000
	SatFat      ID = 1258
	MonoFat     ID = 1292
	PolyFat     ID = 1293
	Cholesterol ID = 1253
	Sodium      ID = 1093
	Potassium   ID = 1092
	Calcium     ID = 1087
	Iron        ID = 1089
	VitaminA    ID = 1106
	VitaminC    ID = 1162
	VitaminD    ID = 1114
	VitaminE    ID = 1109
	Thiamin     ID = 1165
	Riboflavin  ID = 1166
	Niacin      ID = 1167
	VitaminB6   ID = 1175
	Folate      ID = 1177
	VitaminB12  ID = 1178
)

// Class is the unit family a nutrient is stored in.
type Class int

const (
	Grams Class = iota
	Milligrams
	Micrograms
	Kilocalories
)

// Canonical unit strings.
const (
	UnitG    = "g"
	UnitMg   = "mg"
	UnitUg   = "µg"
	UnitKcal = "kcal"
)

// Unit returns the canonical unit string of the class.
func (c Class) Unit() string {
	switch c {
	case Milligrams:
		return UnitMg
	case Micrograms:
		return UnitUg
	case Kilocalories:
		return UnitKcal
	default:
		return UnitG
	}
}

type info struct {
	key   string
	label string
	class Class
}

var table = map[ID]info{
	EnergyKcal:  {"energy_kcal", "energy", Kilocalories},
	Protein:     {"protein", "protein", Grams},
	Fat:         {"fat", "fat", Grams},
	Carbs:       {"carbs", "carbohydrates", Grams},
	Fiber:       {"fiber", "fiber", Grams},
	Sugars:      {"sugars", "sugars", Grams},
	SatFat:      {"saturated_fat", "saturated fat", Grams},
	MonoFat:     {"monounsaturated_fat", "monounsaturated fat", Grams},
	PolyFat:     {"polyunsaturated_fat", "polyunsaturated fat", Grams},
	Cholesterol: {"cholesterol", "cholesterol", Milligrams},
	Sodium:      {"sodium", "sodium", Milligrams},
	Potassium:   {"potassium", "potassium", Milligrams},
	Calcium:     {"calcium", "calcium", Milligrams},
	Iron:        {"iron", "iron", Milligrams},
	VitaminA:    {"vitamin_a", "vitamin A", Micrograms},
	VitaminC:    {"vitamin_c", "vitamin C", Milligrams},
	VitaminD:    {"vitamin_d", "vitamin D", Micrograms},
	VitaminE:    {"vitamin_e", "vitamin E", Milligrams},
	Thiamin:     {"thiamin", "thiamin", Milligrams},
	Riboflavin:  {"riboflavin", "riboflavin", Milligrams},
	Niacin:      {"niacin", "niacin", Milligrams},
	VitaminB6:   {"vitamin_b6", "vitamin B6", Milligrams},
	Folate:      {"folate", "folate", Micrograms},
	VitaminB12:  {"vitamin_b12", "vitamin B12", Micrograms},
}

// order is the display order used by AllNutrients and JSON output.
var order = []ID{
	EnergyKcal, Protein, Carbs, Fat, Fiber, Sugars, SatFat, MonoFat, PolyFat,
	Cholesterol, Sodium, Potassium, Calcium, Iron,
	VitaminA, VitaminC, VitaminD, VitaminE,
	Thiamin, Riboflavin, Niacin, VitaminB6, Folate, VitaminB12,
}

var byKey = func() map[string]ID {
	m := make(map[string]ID, len(table))
	for id, in := range table {
		m[in.key] = id
	}
	return m
}()

// All returns every known nutrient in display order.
func All() []ID {
	out := make([]ID, len(order))
	copy(out, order)
	return out
}

// Valid reports whether id is a tracked nutrient.
func (id ID) Valid() bool {
	_, ok := table[id]
	return ok
}

// Class returns the unit class of the nutrient. Unknown IDs report Grams.
func (id ID) Class() Class {
	return table[id].class
}

// Unit returns the canonical unit of the nutrient.
func (id ID) Unit() string {
	return id.Class().Unit()
}

// Key returns the snake_case key used in JSON output.
func (id ID) Key() string {
	return table[id].key
}

// Label returns the lowercase human name ("saturated fat").
func (id ID) Label() string {
	return table[id].label
}

// DisplayName returns the title-cased human name ("Saturated Fat").
func (id ID) DisplayName() string {
	return TitleCase(id.Label())
}

// ParseKey resolves a snake_case key back to its ID.
func ParseKey(key string) (ID, bool) {
	id, ok := byKey[strings.ToLower(strings.TrimSpace(key))]
	return id, ok
}

// TitleCase upper-cases the first letter of every word.
// A Caser is stateful, so a fresh one is made per call.
func TitleCase(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}
