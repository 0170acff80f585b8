// Package diet holds the stored amount model shared by log entries, daily
// totals, and goals, plus the diet-style goal derivation.
//
// Stored amounts follow one convention: calories in kcal, every other
// nutrient in grams.
package diet

import (
	"fmt"

	"github.com/hpungsan/citrus/internal/nutrient"
)

// Key names a stored nutrient.
type Key string

const (
	Calories           Key = "calories"
	Carbs              Key = "carbs"
	Protein            Key = "protein"
	Fat                Key = "fat"
	Fiber              Key = "fiber"
	Sugar              Key = "sugar"
	SaturatedFat       Key = "saturatedFat"
	MonounsaturatedFat Key = "monounsaturatedFat"
	PolyunsaturatedFat Key = "polyunsaturatedFat"
	Cholesterol        Key = "cholesterol"
	Sodium             Key = "sodium"
	Potassium          Key = "potassium"
	VitaminA           Key = "vitaminA"
	VitaminC           Key = "vitaminC"
	Calcium            Key = "calcium"
	Iron               Key = "iron"
)

// Keys lists every stored key.
var Keys = []Key{
	Calories, Carbs, Protein, Fat, Fiber, Sugar,
	SaturatedFat, MonounsaturatedFat, PolyunsaturatedFat,
	Cholesterol, Sodium, Potassium, VitaminA, VitaminC, Calcium, Iron,
}

// nutrientOf maps stored keys to the profile nutrient they come from.
var nutrientOf = map[Key]nutrient.ID{
	Calories:           nutrient.EnergyKcal,
	Carbs:              nutrient.Carbs,
	Protein:            nutrient.Protein,
	Fat:                nutrient.Fat,
	Fiber:              nutrient.Fiber,
	Sugar:              nutrient.Sugars,
	SaturatedFat:       nutrient.SatFat,
	MonounsaturatedFat: nutrient.MonoFat,
	PolyunsaturatedFat: nutrient.PolyFat,
	Cholesterol:        nutrient.Cholesterol,
	Sodium:             nutrient.Sodium,
	Potassium:          nutrient.Potassium,
	VitaminA:           nutrient.VitaminA,
	VitaminC:           nutrient.VitaminC,
	Calcium:            nutrient.Calcium,
	Iron:               nutrient.Iron,
}

// ParseKey validates a key string.
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if _, ok := nutrientOf[k]; !ok {
		return "", fmt.Errorf("unknown nutrient key %q", s)
	}
	return k, nil
}

// Nutrient returns the profile nutrient behind the key.
func (k Key) Nutrient() nutrient.ID { return nutrientOf[k] }

// StoredUnit is "kcal" for calories and "g" for everything else.
func (k Key) StoredUnit() string {
	if k == Calories {
		return nutrient.UnitKcal
	}
	return nutrient.UnitG
}

// Amounts is one value per stored key.
type Amounts struct {
	Calories           float64 `json:"calories" yaml:"calories"`
	Carbs              float64 `json:"carbs" yaml:"carbs"`
	Protein            float64 `json:"protein" yaml:"protein"`
	Fat                float64 `json:"fat" yaml:"fat"`
	Fiber              float64 `json:"fiber" yaml:"fiber"`
	Sugar              float64 `json:"sugar" yaml:"sugar"`
	SaturatedFat       float64 `json:"saturatedFat" yaml:"saturatedFat"`
	MonounsaturatedFat float64 `json:"monounsaturatedFat" yaml:"monounsaturatedFat"`
	PolyunsaturatedFat float64 `json:"polyunsaturatedFat" yaml:"polyunsaturatedFat"`
	Cholesterol        float64 `json:"cholesterol" yaml:"cholesterol"`
	Sodium             float64 `json:"sodium" yaml:"sodium"`
	Potassium          float64 `json:"potassium" yaml:"potassium"`
	VitaminA           float64 `json:"vitaminA" yaml:"vitaminA"`
	VitaminC           float64 `json:"vitaminC" yaml:"vitaminC"`
	Calcium            float64 `json:"calcium" yaml:"calcium"`
	Iron               float64 `json:"iron" yaml:"iron"`
}

func (a *Amounts) field(k Key) *float64 {
	switch k {
	case Calories:
		return &a.Calories
	case Carbs:
		return &a.Carbs
	case Protein:
		return &a.Protein
	case Fat:
		return &a.Fat
	case Fiber:
		return &a.Fiber
	case Sugar:
		return &a.Sugar
	case SaturatedFat:
		return &a.SaturatedFat
	case MonounsaturatedFat:
		return &a.MonounsaturatedFat
	case PolyunsaturatedFat:
		return &a.PolyunsaturatedFat
	case Cholesterol:
		return &a.Cholesterol
	case Sodium:
		return &a.Sodium
	case Potassium:
		return &a.Potassium
	case VitaminA:
		return &a.VitaminA
	case VitaminC:
		return &a.VitaminC
	case Calcium:
		return &a.Calcium
	case Iron:
		return &a.Iron
	}
	return nil
}

// Get returns the value for k; unknown keys report 0.
func (a Amounts) Get(k Key) float64 {
	if f := a.field(k); f != nil {
		return *f
	}
	return 0
}

// Set assigns the value for k. Unknown keys are ignored.
func (a *Amounts) Set(k Key, v float64) {
	if f := a.field(k); f != nil {
		*f = v
	}
}

// Add returns the key-wise sum.
func (a Amounts) Add(b Amounts) Amounts {
	out := a
	for _, k := range Keys {
		out.Set(k, a.Get(k)+b.Get(k))
	}
	return out
}

// Scale returns every value multiplied by f.
func (a Amounts) Scale(f float64) Amounts {
	var out Amounts
	for _, k := range Keys {
		out.Set(k, a.Get(k)*f)
	}
	return out
}

// ToStored converts a portion of a normalized profile into stored amounts.
// Nutrients the profile lacks are stored as 0: a log entry is a dense record.
func ToStored(p nutrient.Profile, grams float64) Amounts {
	var out Amounts
	for _, k := range Keys {
		id := k.Nutrient()
		v, ok := p.Amount(id, grams)
		if !ok {
			continue
		}
		unit := id.Unit()
		if k != Calories {
			v, _ = nutrient.Convert(v, unit, nutrient.Grams)
		}
		out.Set(k, v)
	}
	return out
}

// ProfileFromAmounts rebuilds a per-100g profile from stored amounts of a
// portion. A non-positive portion is taken as 100 g.
func ProfileFromAmounts(name string, portionGrams float64, a Amounts) nutrient.Profile {
	if portionGrams <= 0 {
		portionGrams = 100
	}
	scale := 100 / portionGrams
	per100g := make(map[nutrient.ID]nutrient.Amount, len(Keys))
	for _, k := range Keys {
		id := k.Nutrient()
		per100g[id] = nutrient.Amount{Value: a.Get(k) * scale, Unit: k.StoredUnit()}
	}
	return nutrient.NewProfile(name, portionGrams, per100g)
}
