package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/nutrient"
)

func newNormalizer() *Normalizer {
	return New(Options{})
}

func TestNormalize_FoodDataEndToEnd(t *testing.T) {
	payload := []byte(`{
		"description": "Apple, raw",
		"foodNutrients": [
			{"nutrientId": 1008, "value": 52, "unitName": "KCAL"},
			{"nutrientId": 1003, "value": 0.3, "unitName": "G"}
		],
		"servingSize": 100,
		"servingSizeUnit": "g"
	}`)

	p, err := newNormalizer().Normalize(payload, KindFoodData)
	require.NoError(t, err)
	assert.Equal(t, "Apple, raw", p.Name())
	assert.Equal(t, 100.0, p.DefaultServingGrams())

	kcal, ok := p.Amount(nutrient.EnergyKcal, 200)
	require.True(t, ok)
	assert.InDelta(t, 104, kcal, 1e-9)

	_, ok = p.Amount(nutrient.Fiber, 200)
	assert.False(t, ok, "fiber was not supplied")
}

func TestNormalize_FoodDataSkipsUnknownAndNull(t *testing.T) {
	payload := []byte(`{
		"foodDescription": "Mystery",
		"foodNutrients": [
			{"nutrientId": 9999, "value": 1, "unitName": "G"},
			{"nutrientId": 1004, "value": null, "unitName": "G"},
			{"nutrientId": 1093, "value": 0.4, "unitName": "G"}
		]
	}`)
	p, err := newNormalizer().Normalize(payload, KindFoodData)
	require.NoError(t, err)
	assert.Equal(t, "Mystery", p.Name())
	assert.Equal(t, 1, p.Len())

	sodium, ok := p.Per100g(nutrient.Sodium)
	require.True(t, ok)
	assert.InDelta(t, 400, sodium.Value, 1e-9)
	assert.Equal(t, "mg", sodium.Unit)
}

func TestNormalize_Errors(t *testing.T) {
	n := newNormalizer()

	_, err := n.Normalize(nil, KindFoodData)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))

	_, err = n.Normalize([]byte(`{"foodNutrients": "nope"`), KindFoodData)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))

	_, err = n.Normalize([]byte(`{}`), Kind("csv"))
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSearchResults_PreservesOrder(t *testing.T) {
	payload := []byte(`{"foods": [
		{"description": "B", "foodNutrients": []},
		{"description": "A", "foodNutrients": []},
		{"description": "B", "foodNutrients": []}
	]}`)
	got, err := newNormalizer().SearchResults(payload)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "B", got[0].Name())
	assert.Equal(t, "A", got[1].Name())
	assert.Equal(t, "B", got[2].Name(), "no dedup")

	_, err = newNormalizer().SearchResults([]byte(`[]`))
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
}

func TestSearchResults_OddNutrientIDSkipsOnlyThatNutrient(t *testing.T) {
	payload := []byte(`{"foods": [
		{"description": "Oats", "foodNutrients": [
			{"nutrientId": 1008.0, "value": 379, "unitName": "KCAL"},
			{"nutrientId": 1003.5, "value": 13, "unitName": "G"},
			{"nutrientId": "fiber", "value": 10, "unitName": "G"},
			{"nutrientId": "1004", "value": 6.5, "unitName": "G"}
		]},
		{"description": "Rice", "foodNutrients": [{"nutrientId": 1008, "value": 130, "unitName": "KCAL"}]}
	]}`)
	got, err := newNormalizer().SearchResults(payload)
	require.NoError(t, err)
	require.Len(t, got, 2)

	oats := got[0]
	kcal, ok := oats.Calories(100)
	require.True(t, ok)
	assert.Equal(t, 379.0, kcal)
	assert.False(t, oats.Has(nutrient.Protein))
	assert.True(t, oats.Has(nutrient.Fat))
	assert.Equal(t, 2, oats.Len())
	assert.Equal(t, "Rice", got[1].Name())
}

func num(v float64) Number { return Number{Value: v, Set: true} }

func TestDefaultServingGrams(t *testing.T) {
	tests := []struct {
		name     string
		measures []FoodMeasure
		size     Number
		unit     string
		want     float64
	}{
		{
			name:     "measures win over serving size",
			measures: []FoodMeasure{{GramWeight: num(30), Rank: num(1), DisseminationText: "cup"}},
			size:     num(250),
			unit:     "g",
			want:     30,
		},
		{
			// The source app prefers the single-serving measure over rank order.
			name: "single serving marker beats lower rank",
			measures: []FoodMeasure{
				{GramWeight: num(240), Rank: num(1), DisseminationText: "cup"},
				{GramWeight: num(55), Rank: num(2), DisseminationText: "1 serving"},
			},
			want: 55,
		},
		{
			name: "lowest rank without marker",
			measures: []FoodMeasure{
				{GramWeight: num(80), Rank: num(3), Modifier: "slice"},
				{GramWeight: num(20), Rank: num(2), Modifier: "tbsp"},
			},
			want: 20,
		},
		{
			name: "missing rank sorts last",
			measures: []FoodMeasure{
				{GramWeight: num(10), Modifier: "pinch"},
				{GramWeight: num(45), Rank: num(5), Modifier: "handful"},
			},
			want: 45,
		},
		{
			name:     "marker in modifier, missing weight",
			measures: []FoodMeasure{{Rank: num(1), Modifier: "Single bar"}},
			want:     100,
		},
		{name: "ounces", size: num(2), unit: "oz", want: 56.69904625},
		{name: "millilitres as grams", size: num(330), unit: "ML", want: 330},
		{name: "unknown unit", size: num(3), unit: "cups", want: 100},
		{name: "size without unit", size: num(40), want: 100},
		{name: "nothing", want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultServingGrams(tt.measures, tt.size, tt.unit)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize_Product(t *testing.T) {
	payload := []byte(`{
		"status": 1,
		"product": {
			"product_name": "  Oat Drink ",
			"serving_size": "1 glass (250 ml)",
			"nutriments": {
				"energy-kcal_100g": 46,
				"proteins_100g": "1.0",
				"fat_100g": 1.5,
				"fat_unit": "g",
				"sodium_100g": 0.04,
				"sodium_unit": "g",
				"vitamin-d_100g": "0.0000015",
				"vitamin-d_unit": "g",
				"sugars_100g": "traces"
			}
		}
	}`)

	p, err := newNormalizer().Normalize(payload, KindProduct)
	require.NoError(t, err)
	assert.Equal(t, "Oat Drink", p.Name())
	assert.Equal(t, 250.0, p.DefaultServingGrams())

	protein, ok := p.Per100g(nutrient.Protein)
	require.True(t, ok, "string values are coerced")
	assert.Equal(t, 1.0, protein.Value)

	sodium, _ := p.Per100g(nutrient.Sodium)
	assert.InDelta(t, 40, sodium.Value, 1e-9)
	assert.Equal(t, "mg", sodium.Unit)

	vitD, _ := p.Per100g(nutrient.VitaminD)
	assert.InDelta(t, 1.5, vitD.Value, 1e-9)

	assert.False(t, p.Has(nutrient.Sugars), "non-numeric strings are omitted")
	assert.False(t, p.Has(nutrient.Fiber))
}

func TestNormalize_ProductEnergyFallback(t *testing.T) {
	payload := []byte(`{"status": 1, "product": {"product_name": "Bar", "nutriments": {
		"energy_100g": 1674, "energy_unit": "kJ"
	}}}`)
	p, err := newNormalizer().Normalize(payload, KindProduct)
	require.NoError(t, err)
	kcal, ok := p.Per100g(nutrient.EnergyKcal)
	require.True(t, ok)
	assert.InDelta(t, 400.1, kcal.Value, 0.05)
}

func TestNormalize_ProductNotFound(t *testing.T) {
	for _, payload := range []string{
		`{"status": 0, "status_verbose": "product not found"}`,
		`{"status": 1}`,
		`{"status": 1, "product": null}`,
	} {
		_, err := newNormalizer().Normalize([]byte(payload), KindProduct)
		assert.True(t, errors.Is(err, errors.ErrNotFound), payload)
	}
}

func TestNormalize_MissingUnitPolicy(t *testing.T) {
	payload := []byte(`{"status": 1, "product": {"product_name": "Chips", "nutriments": {
		"fat_100g": 30, "salt_100g": 1.2, "cholesterol_100g": 0.01
	}}}`)

	assume, err := New(Options{MissingUnit: AssumeCanonical}).Normalize(payload, KindProduct)
	require.NoError(t, err)
	fat, ok := assume.Per100g(nutrient.Fat)
	require.True(t, ok)
	assert.Equal(t, nutrient.Amount{Value: 30, Unit: "g"}, fat)
	chol, ok := assume.Per100g(nutrient.Cholesterol)
	require.True(t, ok)
	assert.Equal(t, 0.01, chol.Value, "taken as already canonical")

	drop, err := New(Options{MissingUnit: DropNutrient}).Normalize(payload, KindProduct)
	require.NoError(t, err)
	assert.Equal(t, 0, drop.Len())
}

func TestParseMissingUnit(t *testing.T) {
	m, err := ParseMissingUnit("")
	require.NoError(t, err)
	assert.Equal(t, AssumeCanonical, m)
	m, err = ParseMissingUnit("drop")
	require.NoError(t, err)
	assert.Equal(t, DropNutrient, m)
	_, err = ParseMissingUnit("guess")
	assert.Error(t, err)
}

func TestProductServing(t *testing.T) {
	tests := []struct {
		quantity Number
		text     string
		want     float64
		unit     string
		ok       bool
	}{
		{num(30), "30 g", 30, "g", true},
		{num(200), "200ml", 200, "ml", true},
		{Number{}, "2 tbsp (37 g)", 37, "g", true},
		{Number{}, "1 can 330 ml", 330, "ml", true},
		{Number{}, "12.5 grams", 12.5, "g", true},
		{Number{}, "1 piece", 0, "", false},
		{Number{}, "", 0, "", false},
	}
	for _, tt := range tests {
		v, unit, ok := productServing(tt.quantity, tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, v, tt.text)
		assert.Equal(t, tt.unit, unit, tt.text)
	}
}

func TestNormalize_ProductXML(t *testing.T) {
	payload := []byte(`<?xml version="1.0"?>
<Product>
  <description>Rye Crispbread</description>
  <servingSize>11</servingSize>
  <servingSizeUnit>g</servingSizeUnit>
  <NotFound>false</NotFound>
  <Nutrient><key>energy-kcal</key><value>334</value><unitName>kcal</unitName></Nutrient>
  <Nutrient><key>fiber</key><value>16.5</value><unitName>g</unitName></Nutrient>
  <Nutrient><key>iron</key><value>0.0024</value><unitName>g</unitName></Nutrient>
  <Nutrient><key>salt</key><value>1.1</value><unitName>g</unitName></Nutrient>
</Product>`)

	p, err := newNormalizer().Normalize(payload, KindProductXML)
	require.NoError(t, err)
	assert.Equal(t, "Rye Crispbread", p.Name())
	assert.Equal(t, 11.0, p.DefaultServingGrams())
	assert.Equal(t, 3, p.Len(), "unknown keys are skipped")

	iron, _ := p.Per100g(nutrient.Iron)
	assert.InDelta(t, 2.4, iron.Value, 1e-9)
}

func TestNormalize_ProductXMLNotFound(t *testing.T) {
	payload := []byte(`<Result><NotFound>TRUE</NotFound></Result>`)
	_, err := newNormalizer().Normalize(payload, KindProductXML)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = newNormalizer().Normalize([]byte(`<Result><unclosed>`), KindProductXML)
	assert.True(t, errors.Is(err, errors.ErrMalformedResponse))
}

func TestNormalize_EstimateRescales(t *testing.T) {
	text := "Sure! Here you go:\n```json\n" + `{
		"name": "Chicken burrito",
		"calories": 600,
		"portion_grams": 300,
		"protein": 30,
		"carbs": 66,
		"fat": 21,
		"micronutrients": {"sodium_mg": 1200, "vitaminA_ug": 150}
	}` + "\n```"

	p, err := newNormalizer().Normalize([]byte(text), KindEstimate)
	require.NoError(t, err)
	assert.Equal(t, "Chicken burrito", p.Name())
	assert.Equal(t, 300.0, p.DefaultServingGrams())

	kcal, _ := p.Per100g(nutrient.EnergyKcal)
	assert.InDelta(t, 200, kcal.Value, 1e-9)
	sodium, _ := p.Per100g(nutrient.Sodium)
	assert.InDelta(t, 400, sodium.Value, 1e-9)
	vitA, _ := p.Per100g(nutrient.VitaminA)
	assert.InDelta(t, 50, vitA.Value, 1e-9)
	assert.Equal(t, "µg", vitA.Unit)

	assert.False(t, p.Has(nutrient.Fiber), "absent fields stay absent")
	total, _ := p.Amount(nutrient.EnergyKcal, 300)
	assert.InDelta(t, 600, total, 1e-9)
}

func TestNormalize_EstimateNotFood(t *testing.T) {
	text := `{"name": "", "calories": 0, "portion_grams": 0, "protein": 0, "carbs": 0, "fat": 0,
		"micronutrients": {"sodium_mg": 0}}`
	_, err := newNormalizer().Normalize([]byte(text), KindEstimate)
	assert.True(t, errors.Is(err, errors.ErrNoFoodDetected))
}

func TestNormalize_EstimateZeroPortion(t *testing.T) {
	text := `{"name": "Soup", "calories": 90, "portion_grams": 0}`
	p, err := newNormalizer().Normalize([]byte(text), KindEstimate)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.DefaultServingGrams())
	kcal, _ := p.Per100g(nutrient.EnergyKcal)
	assert.Equal(t, 90.0, kcal.Value)
}

func TestNormalize_EstimateMalformed(t *testing.T) {
	for _, text := range []string{"I cannot help with that.", "} backwards {", `{"name": 12}`} {
		_, err := newNormalizer().Normalize([]byte(text), KindEstimate)
		assert.True(t, errors.Is(err, errors.ErrMalformedResponse), text)
	}
}

func TestExtractJSON(t *testing.T) {
	got, ok := ExtractJSON(`prefix {"a": {"b": 1}} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, ok = ExtractJSON("no braces")
	assert.False(t, ok)
}

func TestNumber_Coercion(t *testing.T) {
	tests := map[string]struct {
		in   any
		want float64
		ok   bool
	}{
		"float":        {1.5, 1.5, true},
		"int":          {3, 3, true},
		"string":       {" 12.5 ", 12.5, true},
		"empty string": {"", 0, false},
		"word":         {"n/a", 0, false},
		"bool":         {true, 0, false},
		"nil":          {nil, 0, false},
	}
	for name, tt := range tests {
		got, ok := coerceFloat(tt.in)
		assert.Equal(t, tt.ok, ok, name)
		assert.Equal(t, tt.want, got, name)
	}
}
