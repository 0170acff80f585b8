package normalize

import (
	"math"
	"sort"
	"strings"

	"github.com/hpungsan/citrus/internal/nutrient"
)

// FoodRecord is one first-party food record (search result or EAN hit).
type FoodRecord struct {
	Description     string         `json:"description"`
	FoodDescription string         `json:"foodDescription"`
	FoodMeasures    []FoodMeasure  `json:"foodMeasures"`
	ServingSize     Number         `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []FoodNutrient `json:"foodNutrients"`
}

// FoodMeasure is a household measure with its weight.
type FoodMeasure struct {
	GramWeight        Number `json:"gramWeight"`
	Rank              Number `json:"rank"`
	DisseminationText string `json:"disseminationText"`
	Modifier          string `json:"modifier"`
}

// FoodNutrient is one nutrient value keyed by FoodData Central number.
type FoodNutrient struct {
	NutrientID Number `json:"nutrientId"`
	Value      Number `json:"value"`
	UnitName   string `json:"unitName"`
}

// FromFoodRecord maps a record directly: nutrient IDs already match.
// Unknown or non-integer IDs and missing values are skipped.
func (n *Normalizer) FromFoodRecord(rec FoodRecord) nutrient.Profile {
	name := strings.TrimSpace(rec.Description)
	if name == "" {
		name = strings.TrimSpace(rec.FoodDescription)
	}

	per100g := make(map[nutrient.ID]nutrient.Amount, len(rec.FoodNutrients))
	for _, fn := range rec.FoodNutrients {
		id, ok := fn.id()
		if !ok || !fn.Value.Set {
			continue
		}
		n.addConverted(per100g, id, fn.Value.Value, fn.UnitName)
	}

	serving := DefaultServingGrams(rec.FoodMeasures, rec.ServingSize, rec.ServingSizeUnit)
	return nutrient.NewProfile(name, serving, per100g)
}

// id returns the nutrient ID when it is a whole, known number.
func (fn FoodNutrient) id() (nutrient.ID, bool) {
	v := fn.NutrientID.Value
	if !fn.NutrientID.Set || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	id := nutrient.ID(int(v))
	return id, id.Valid()
}

// DefaultServingGrams infers a serving size in grams.
//
// With measures: sort by rank (missing rank last), take the first one whose
// text looks like a single serving, else the first by rank; its gramWeight
// defaults to 100. Without measures: convert servingSize/servingSizeUnit
// through ServingGrams. Otherwise 100.
func DefaultServingGrams(measures []FoodMeasure, size Number, unit string) float64 {
	if len(measures) > 0 {
		sorted := make([]FoodMeasure, len(measures))
		copy(sorted, measures)
		sort.SliceStable(sorted, func(i, j int) bool {
			return rankOf(sorted[i]) < rankOf(sorted[j])
		})

		chosen := sorted[0]
		for _, m := range sorted {
			if looksSingle(m.DisseminationText) || looksSingle(m.Modifier) {
				chosen = m
				break
			}
		}
		if chosen.GramWeight.Set {
			return chosen.GramWeight.Value
		}
		return 100
	}

	if size.Set && strings.TrimSpace(unit) != "" {
		return ServingGrams(size.Value, unit)
	}
	return 100
}

func rankOf(m FoodMeasure) float64 {
	if !m.Rank.Set {
		return math.MaxFloat64
	}
	return m.Rank.Value
}

func looksSingle(s string) bool {
	t := strings.ToLower(s)
	return strings.Contains(t, "1 ") || strings.Contains(t, "single")
}

// ServingGrams converts a serving size to grams. Millilitres are taken as
// grams (density of water). Unknown units yield 100.
func ServingGrams(value float64, unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g":
		return value
	case "mg":
		return value / 1000
	case "kg":
		return value * 1000
	case "oz":
		return value * 28.349523125
	case "lb":
		return value * 453.59237
	case "ml":
		return value
	}
	return 100
}
