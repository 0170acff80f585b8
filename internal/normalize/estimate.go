package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/nutrient"
)

// Estimate is the JSON object a language model returns for a meal
// description. Totals are absolute for PortionGrams, not per 100 g.
type Estimate struct {
	Name         string        `json:"name"`
	Calories     Number        `json:"calories"`
	PortionGrams Number        `json:"portion_grams"`
	Protein      Number        `json:"protein"`
	Carbs        Number        `json:"carbs"`
	Fat          Number        `json:"fat"`
	Fiber        Number        `json:"fiber"`
	Sugar        Number        `json:"sugar"`
	MonoFat      Number        `json:"monoFat_g"`
	SaturatedFat Number        `json:"saturatedFat_g"`
	PolyFat      Number        `json:"polyFat_g"`
	Micros       EstimateMicro `json:"micronutrients"`
}

// EstimateMicro holds the nested micronutrient totals.
type EstimateMicro struct {
	SodiumMg      Number `json:"sodium_mg"`
	PotassiumMg   Number `json:"potassium_mg"`
	IronMg        Number `json:"iron_mg"`
	CalciumMg     Number `json:"calcium_mg"`
	VitaminCMg    Number `json:"vitaminC_mg"`
	VitaminAUg    Number `json:"vitaminA_ug"`
	CholesterolMg Number `json:"cholesterol_mg"`
}

// NotFood reports the model's out-of-domain sentinel: empty name, zero
// calories and zero portion.
func (e Estimate) NotFood() bool {
	return strings.TrimSpace(e.Name) == "" && e.Calories.Value == 0 && e.PortionGrams.Value == 0
}

// ExtractJSON returns the substring between the first '{' and the last '}'.
// Models wrap their answer in prose or code fences often enough that the raw
// text can't be decoded directly.
func ExtractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func (n *Normalizer) fromEstimate(payload []byte) (nutrient.Profile, error) {
	raw, ok := ExtractJSON(string(payload))
	if !ok {
		return nutrient.Profile{}, errors.NewMalformedResponse(string(KindEstimate), fmt.Errorf("no JSON object in model output"))
	}
	var est Estimate
	if err := json.Unmarshal([]byte(raw), &est); err != nil {
		return nutrient.Profile{}, errors.NewMalformedResponse(string(KindEstimate), err)
	}
	if est.NotFood() {
		return nutrient.Profile{}, errors.NewNoFoodDetected()
	}
	return n.FromEstimate(est), nil
}

// FromEstimate rescales absolute totals to per 100 g. A non-positive portion
// leaves the totals untouched and the serving at 100 g.
func (n *Normalizer) FromEstimate(est Estimate) nutrient.Profile {
	scale, serving := 1.0, 100.0
	if est.PortionGrams.Set && est.PortionGrams.Value > 0 {
		scale = 100 / est.PortionGrams.Value
		serving = est.PortionGrams.Value
	}

	fields := []struct {
		id   nutrient.ID
		v    Number
		unit string
	}{
		{nutrient.EnergyKcal, est.Calories, nutrient.UnitKcal},
		{nutrient.Protein, est.Protein, nutrient.UnitG},
		{nutrient.Carbs, est.Carbs, nutrient.UnitG},
		{nutrient.Fat, est.Fat, nutrient.UnitG},
		{nutrient.Fiber, est.Fiber, nutrient.UnitG},
		{nutrient.Sugars, est.Sugar, nutrient.UnitG},
		{nutrient.MonoFat, est.MonoFat, nutrient.UnitG},
		{nutrient.SatFat, est.SaturatedFat, nutrient.UnitG},
		{nutrient.PolyFat, est.PolyFat, nutrient.UnitG},
		{nutrient.Sodium, est.Micros.SodiumMg, nutrient.UnitMg},
		{nutrient.Potassium, est.Micros.PotassiumMg, nutrient.UnitMg},
		{nutrient.Iron, est.Micros.IronMg, nutrient.UnitMg},
		{nutrient.Calcium, est.Micros.CalciumMg, nutrient.UnitMg},
		{nutrient.VitaminC, est.Micros.VitaminCMg, nutrient.UnitMg},
		{nutrient.VitaminA, est.Micros.VitaminAUg, nutrient.UnitUg},
		{nutrient.Cholesterol, est.Micros.CholesterolMg, nutrient.UnitMg},
	}

	per100g := make(map[nutrient.ID]nutrient.Amount, len(fields))
	for _, f := range fields {
		if !f.v.Set {
			continue
		}
		n.addConverted(per100g, f.id, f.v.Value*scale, f.unit)
	}
	return nutrient.NewProfile(strings.TrimSpace(est.Name), serving, per100g)
}
