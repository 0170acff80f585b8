package nutrient

import (
	"encoding/json"
	"fmt"
)

// Amount is a value in the nutrient's canonical unit.
type Amount struct {
	Value float64
	Unit  string
}

// Profile is one food item normalized to a per-100g basis.
//
// Storage is sparse: a nutrient the source did not report is absent, never
// zero. A Profile is a value; every method returns fresh data and the
// underlying map is never exposed.
type Profile struct {
	name         string
	servingGrams float64
	per100g      map[ID]Amount
}

// NewProfile builds a profile from per-100g amounts. Unknown IDs are dropped
// and every value is re-expressed in its nutrient's canonical unit, so raw
// source units never leak into a Profile.
func NewProfile(name string, defaultServingGrams float64, per100g map[ID]Amount) Profile {
	m := make(map[ID]Amount, len(per100g))
	for id, a := range per100g {
		if !id.Valid() {
			continue
		}
		v, u := Convert(a.Value, a.Unit, id.Class())
		m[id] = Amount{Value: v, Unit: u}
	}
	if defaultServingGrams <= 0 {
		defaultServingGrams = 100
	}
	return Profile{name: name, servingGrams: defaultServingGrams, per100g: m}
}

// Name returns the display name.
func (p Profile) Name() string { return p.name }

// DefaultServingGrams returns the inferred serving size.
func (p Profile) DefaultServingGrams() float64 { return p.servingGrams }

// WithName returns a copy with a user-edited name.
func (p Profile) WithName(name string) Profile {
	q := p
	q.name = name
	q.per100g = make(map[ID]Amount, len(p.per100g))
	for id, a := range p.per100g {
		q.per100g[id] = a
	}
	return q
}

// Per100g returns the stored per-100g amount of a nutrient.
func (p Profile) Per100g(id ID) (Amount, bool) {
	a, ok := p.per100g[id]
	return a, ok
}

// Has reports whether the nutrient is present.
func (p Profile) Has(id ID) bool {
	_, ok := p.per100g[id]
	return ok
}

// Len is the number of nutrients present.
func (p Profile) Len() int { return len(p.per100g) }

// Amount scales a nutrient to grams of food. ok is false when the source did
// not report the nutrient; callers decide what absence means.
func (p Profile) Amount(id ID, grams float64) (float64, bool) {
	a, ok := p.per100g[id]
	if !ok {
		return 0, false
	}
	return a.Value * grams / 100, true
}

// Calories is Amount for energy.
func (p Profile) Calories(grams float64) (float64, bool) {
	return p.Amount(EnergyKcal, grams)
}

// orZero is the presentation boundary where absence becomes 0.
func (p Profile) orZero(id ID, grams float64) float64 {
	v, _ := p.Amount(id, grams)
	return v
}

// Macros are the macronutrients of a portion, in grams.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarsG  float64 `json:"sugars_g"`
	SatFatG  float64 `json:"saturated_fat_g"`
	MonoFatG float64 `json:"monounsaturated_fat_g"`
	PolyFatG float64 `json:"polyunsaturated_fat_g"`
}

// Macros returns a dense macro summary; absent nutrients report 0.
func (p Profile) Macros(grams float64) Macros {
	return Macros{
		ProteinG: p.orZero(Protein, grams),
		CarbsG:   p.orZero(Carbs, grams),
		FatG:     p.orZero(Fat, grams),
		FiberG:   p.orZero(Fiber, grams),
		SugarsG:  p.orZero(Sugars, grams),
		SatFatG:  p.orZero(SatFat, grams),
		MonoFatG: p.orZero(MonoFat, grams),
		PolyFatG: p.orZero(PolyFat, grams),
	}
}

// Micros are the minerals and vitamins of a portion, in canonical units.
type Micros struct {
	SodiumMg      float64 `json:"sodium_mg"`
	PotassiumMg   float64 `json:"potassium_mg"`
	CalciumMg     float64 `json:"calcium_mg"`
	IronMg        float64 `json:"iron_mg"`
	CholesterolMg float64 `json:"cholesterol_mg"`
	VitaminAUg    float64 `json:"vitamin_a_ug"`
	VitaminCMg    float64 `json:"vitamin_c_mg"`
	VitaminDUg    float64 `json:"vitamin_d_ug"`
	VitaminEMg    float64 `json:"vitamin_e_mg"`
	ThiaminMg     float64 `json:"thiamin_mg"`
	RiboflavinMg  float64 `json:"riboflavin_mg"`
	NiacinMg      float64 `json:"niacin_mg"`
	VitaminB6Mg   float64 `json:"vitamin_b6_mg"`
	FolateUg      float64 `json:"folate_ug"`
	VitaminB12Ug  float64 `json:"vitamin_b12_ug"`
}

// Micros returns a dense micronutrient summary; absent nutrients report 0.
func (p Profile) Micros(grams float64) Micros {
	return Micros{
		SodiumMg:      p.orZero(Sodium, grams),
		PotassiumMg:   p.orZero(Potassium, grams),
		CalciumMg:     p.orZero(Calcium, grams),
		IronMg:        p.orZero(Iron, grams),
		CholesterolMg: p.orZero(Cholesterol, grams),
		VitaminAUg:    p.orZero(VitaminA, grams),
		VitaminCMg:    p.orZero(VitaminC, grams),
		VitaminDUg:    p.orZero(VitaminD, grams),
		VitaminEMg:    p.orZero(VitaminE, grams),
		ThiaminMg:     p.orZero(Thiamin, grams),
		RiboflavinMg:  p.orZero(Riboflavin, grams),
		NiacinMg:      p.orZero(Niacin, grams),
		VitaminB6Mg:   p.orZero(VitaminB6, grams),
		FolateUg:      p.orZero(Folate, grams),
		VitaminB12Ug:  p.orZero(VitaminB12, grams),
	}
}

// Quantity is one present nutrient scaled to a portion.
type Quantity struct {
	ID    ID      `json:"id"`
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// AllNutrients lists only the nutrients present in the profile, in display order.
func (p Profile) AllNutrients(grams float64) []Quantity {
	out := make([]Quantity, 0, len(p.per100g))
	for _, id := range order {
		a, ok := p.per100g[id]
		if !ok {
			continue
		}
		out = append(out, Quantity{
			ID:    id,
			Key:   id.Key(),
			Name:  id.DisplayName(),
			Value: a.Value * grams / 100,
			Unit:  a.Unit,
		})
	}
	return out
}

type amountJSON struct {
	ID    ID      `json:"id"`
	Key   string  `json:"key,omitempty"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type profileJSON struct {
	Name                string       `json:"name"`
	DefaultServingGrams float64      `json:"default_serving_grams"`
	Per100g             []amountJSON `json:"per_100g"`
}

// MarshalJSON implements json.Marshaler.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := profileJSON{
		Name:                p.name,
		DefaultServingGrams: p.servingGrams,
		Per100g:             make([]amountJSON, 0, len(p.per100g)),
	}
	for _, id := range order {
		if a, ok := p.per100g[id]; ok {
			out.Per100g = append(out.Per100g, amountJSON{ID: id, Key: id.Key(), Value: a.Value, Unit: a.Unit})
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Entries may be addressed by
// numeric id or by key; units are re-normalized.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var in profileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m := make(map[ID]Amount, len(in.Per100g))
	for _, a := range in.Per100g {
		id := a.ID
		if !id.Valid() && a.Key != "" {
			var ok bool
			if id, ok = ParseKey(a.Key); !ok {
				return fmt.Errorf("unknown nutrient key %q", a.Key)
			}
		}
		if !id.Valid() {
			return fmt.Errorf("unknown nutrient id %d", a.ID)
		}
		m[id] = Amount{Value: a.Value, Unit: a.Unit}
	}
	*p = NewProfile(in.Name, in.DefaultServingGrams, m)
	return nil
}
