package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/nutrient"
)

// offField maps an open-food-database nutriment key to a nutrient.
type offField struct {
	key         string
	id          nutrient.ID
	altUnitKeys []string
}

var offFields = []offField{
	{"energy-kcal", nutrient.EnergyKcal, []string{"energy_unit"}},
	{"proteins", nutrient.Protein, nil},
	{"fat", nutrient.Fat, nil},
	{"carbohydrates", nutrient.Carbs, nil},
	{"fiber", nutrient.Fiber, nil},
	{"sugars", nutrient.Sugars, nil},
	{"saturated-fat", nutrient.SatFat, nil},
	{"monounsaturated-fat", nutrient.MonoFat, nil},
	{"polyunsaturated-fat", nutrient.PolyFat, nil},
	{"cholesterol", nutrient.Cholesterol, nil},
	{"sodium", nutrient.Sodium, nil},
	{"potassium", nutrient.Potassium, nil},
	{"calcium", nutrient.Calcium, nil},
	{"iron", nutrient.Iron, nil},
	{"vitamin-a", nutrient.VitaminA, nil},
	{"vitamin-c", nutrient.VitaminC, nil},
	{"vitamin-d", nutrient.VitaminD, nil},
	{"vitamin-e", nutrient.VitaminE, nil},
	{"vitamin-b1", nutrient.Thiamin, nil},
	{"vitamin-b2", nutrient.Riboflavin, nil},
	{"vitamin-pp", nutrient.Niacin, nil},
	{"vitamin-b6", nutrient.VitaminB6, nil},
	{"folates", nutrient.Folate, nil},
	{"vitamin-b12", nutrient.VitaminB12, nil},
}

// energyFallback is read only when energy-kcal is missing; it is usually kJ.
var energyFallback = offField{"energy", nutrient.EnergyKcal, []string{"energy_unit"}}

var offByKey = func() map[string]nutrient.ID {
	m := make(map[string]nutrient.ID, len(offFields))
	for _, f := range offFields {
		m[f.key] = f.id
	}
	return m
}()

// OFFNutrientID resolves an open-food-database key ("saturated-fat").
func OFFNutrientID(key string) (nutrient.ID, bool) {
	id, ok := offByKey[strings.ToLower(strings.TrimSpace(key))]
	return id, ok
}

type productEnvelope struct {
	Status  Number           `json:"status"`
	Product *json.RawMessage `json:"product"`
}

type productRecord struct {
	ProductName     string         `json:"product_name"`
	ServingQuantity Number         `json:"serving_quantity"`
	ServingSize     string         `json:"serving_size"`
	Nutriments      map[string]any `json:"nutriments"`
}

func (n *Normalizer) fromProductJSON(payload []byte) (nutrient.Profile, error) {
	var env productEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nutrient.Profile{}, errors.NewMalformedResponse(string(KindProduct), err)
	}
	if !env.Status.Set || env.Status.Value != 1 || env.Product == nil || string(*env.Product) == "null" {
		return nutrient.Profile{}, errors.NewNotFound("product", "")
	}

	var rec productRecord
	if err := json.Unmarshal(*env.Product, &rec); err != nil {
		return nutrient.Profile{}, errors.NewMalformedResponse(string(KindProduct), err)
	}

	per100g := make(map[nutrient.ID]nutrient.Amount)
	for _, f := range offFields {
		n.readNutriment(per100g, rec.Nutriments, f)
	}
	if _, ok := per100g[nutrient.EnergyKcal]; !ok {
		n.readNutriment(per100g, rec.Nutriments, energyFallback)
	}

	serving := 100.0
	if v, unit, ok := productServing(rec.ServingQuantity, rec.ServingSize); ok {
		serving = ServingGrams(v, unit)
	}
	return nutrient.NewProfile(strings.TrimSpace(rec.ProductName), serving, per100g), nil
}

// readNutriment reads "<key>_100g" and its unit from "<key>_unit",
// "<key>_100g_unit", then the alternates. Missing or non-numeric values are
// omitted, never zero-filled.
func (n *Normalizer) readNutriment(dst map[nutrient.ID]nutrient.Amount, nutriments map[string]any, f offField) {
	v, ok := coerceFloat(nutriments[f.key+"_100g"])
	if !ok {
		return
	}
	candidates := append([]string{f.key + "_unit", f.key + "_100g_unit"}, f.altUnitKeys...)
	unit := ""
	for _, k := range candidates {
		if s, ok := nutriments[k].(string); ok && strings.TrimSpace(s) != "" {
			unit = s
			break
		}
	}
	n.addConverted(dst, f.id, v, unit)
}

var (
	parenRe    = regexp.MustCompile(`\((.*?)\)`)
	quantityRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(ml|g|grams?)\b`)
)

// productServing picks a serving size from serving_quantity or the free-text
// serving_size. Returns ok=false when neither yields a value.
func productServing(quantity Number, sizeText string) (float64, string, bool) {
	lower := strings.ToLower(sizeText)

	if quantity.Set && quantity.Value > 0 {
		unit := "g"
		if strings.Contains(lower, "ml") {
			unit = "ml"
		}
		return quantity.Value, unit, true
	}

	if lower == "" {
		return 0, "", false
	}

	// "2 tbsp (37 g)": the parenthesized amount wins over anything outside.
	if m := parenRe.FindStringSubmatch(lower); m != nil {
		return parseQuantity(m[1])
	}
	return parseQuantity(lower)
}

func parseQuantity(s string) (float64, string, bool) {
	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, "", false
	}
	unit := "g"
	if m[2] == "ml" {
		unit = "ml"
	}
	return v, unit, true
}
