package nutrient

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_RoundTrip(t *testing.T) {
	units := []struct {
		unit  string
		class Class
	}{
		{"g", Grams},
		{"mg", Milligrams},
		{"µg", Micrograms},
	}
	values := []float64{0.001, 1, 52.3, 1234.5678}

	for _, a := range units {
		for _, b := range units {
			for _, v := range values {
				there, unitB := Convert(v, a.unit, b.class)
				back, unitA := Convert(there, unitB, a.class)
				assert.Equal(t, b.class.Unit(), unitB)
				assert.Equal(t, a.class.Unit(), unitA)
				assert.InEpsilon(t, v, back, 1e-9, "%v %s -> %s -> %s", v, a.unit, b.unit, a.unit)
			}
		}
	}
}

func TestConvert_Energy(t *testing.T) {
	v, u := Convert(4.184, "kJ", Kilocalories)
	assert.InDelta(t, 1.0, v, 1e-12)
	assert.Equal(t, UnitKcal, u)

	v, u = Convert(250, "KCAL", Kilocalories)
	assert.Equal(t, 250.0, v)
	assert.Equal(t, UnitKcal, u)
}

func TestConvert_Table(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  string
		class Class
		want  float64
		unit2 string
	}{
		{"mg to g", 500, "MG", Grams, 0.5, "g"},
		{"ug to g", 2_000_000, "UG", Grams, 2, "g"},
		{"g to mg", 1.5, "G", Milligrams, 1500, "mg"},
		{"ug to mg", 300, "ug", Milligrams, 0.3, "mg"},
		{"mcg to mg", 300, "mcg", Milligrams, 0.3, "mg"},
		{"mg to ug", 0.9, "mg", Micrograms, 900, "µg"},
		{"g to ug", 0.000001, "g", Micrograms, 1, "µg"},
		{"greek mu", 5, "μg", Micrograms, 5, "µg"},
		{"empty unit passes through", 7, "", Milligrams, 7, "mg"},
		{"unknown unit passes through", 7, "IU", Micrograms, 7, "µg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unit := Convert(tt.value, tt.unit, tt.class)
			if math.Abs(got-tt.want) > 1e-9*math.Max(1, math.Abs(tt.want)) {
				t.Errorf("Convert(%v, %q) = %v, want %v", tt.value, tt.unit, got, tt.want)
			}
			if unit != tt.unit2 {
				t.Errorf("unit = %q, want %q", unit, tt.unit2)
			}
		})
	}
}

func TestClassOfUnit(t *testing.T) {
	c, ok := ClassOfUnit("UG")
	assert.True(t, ok)
	assert.Equal(t, Micrograms, c)

	c, ok = ClassOfUnit("kJ")
	assert.True(t, ok)
	assert.Equal(t, Kilocalories, c)

	_, ok = ClassOfUnit("")
	assert.False(t, ok)
}

func TestIDMetadata(t *testing.T) {
	assert.Len(t, All(), 24)
	for _, id := range All() {
		assert.True(t, id.Valid(), "%d", id)
		back, ok := ParseKey(id.Key())
		assert.True(t, ok)
		assert.Equal(t, id, back)
	}

	assert.Equal(t, "mg", Sodium.Unit())
	assert.Equal(t, "µg", VitaminA.Unit())
	assert.Equal(t, "kcal", EnergyKcal.Unit())
	assert.Equal(t, "Saturated Fat", SatFat.DisplayName())
	assert.Equal(t, "Vitamin B12", VitaminB12.DisplayName())
	assert.False(t, ID(1).Valid())
}

func testProfile() Profile {
	return NewProfile("Apple", 182, map[ID]Amount{
		EnergyKcal: {52, "KCAL"},
		Protein:    {0.3, "G"},
		Sodium:     {0.001, "G"},
		VitaminA:   {0.003, "MG"},
	})
}

func TestNewProfile_CanonicalUnits(t *testing.T) {
	p := testProfile()

	a, ok := p.Per100g(Sodium)
	require.True(t, ok)
	assert.InDelta(t, 1.0, a.Value, 1e-12)
	assert.Equal(t, "mg", a.Unit)

	a, ok = p.Per100g(VitaminA)
	require.True(t, ok)
	assert.InDelta(t, 3.0, a.Value, 1e-12)
	assert.Equal(t, "µg", a.Unit)

	a, _ = p.Per100g(EnergyKcal)
	assert.Equal(t, "kcal", a.Unit)
}

func TestNewProfile_DropsUnknownAndDefaultsServing(t *testing.T) {
	p := NewProfile("x", 0, map[ID]Amount{ID(9999): {1, "g"}, Fat: {2, "g"}})
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 100.0, p.DefaultServingGrams())
}

func TestAmount(t *testing.T) {
	p := testProfile()

	v, ok := p.Amount(EnergyKcal, 200)
	assert.True(t, ok)
	assert.InDelta(t, 104, v, 1e-9)

	v, ok = p.Calories(50)
	assert.True(t, ok)
	assert.InDelta(t, 26, v, 1e-9)

	_, ok = p.Amount(Fiber, 200)
	assert.False(t, ok, "absent nutrient must not report a value")
}

func TestSparseVsDense(t *testing.T) {
	p := testProfile()

	for _, q := range p.AllNutrients(100) {
		assert.NotEqual(t, Fiber, q.ID, "AllNutrients must not include absent fiber")
	}
	assert.Len(t, p.AllNutrients(100), 4)

	macros := p.Macros(200)
	assert.Equal(t, 0.0, macros.FiberG)
	assert.InDelta(t, 0.6, macros.ProteinG, 1e-9)

	micros := p.Micros(200)
	assert.Equal(t, 0.0, micros.IronMg)
	assert.InDelta(t, 2.0, micros.SodiumMg, 1e-9)
	assert.InDelta(t, 6.0, micros.VitaminAUg, 1e-9)

	// Dense summaries must not leak zeros back into storage.
	assert.False(t, p.Has(Fiber))
}

func TestAllNutrients_Order(t *testing.T) {
	p := testProfile()
	got := p.AllNutrients(100)
	require.Len(t, got, 4)
	assert.Equal(t, EnergyKcal, got[0].ID)
	assert.Equal(t, Protein, got[1].ID)
	assert.Equal(t, Sodium, got[2].ID)
	assert.Equal(t, VitaminA, got[3].ID)
	assert.Equal(t, "Vitamin A", got[3].Name)
}

func TestWithName_DoesNotMutate(t *testing.T) {
	p := testProfile()
	q := p.WithName("Green apple")

	assert.Equal(t, "Apple", p.Name())
	assert.Equal(t, "Green apple", q.Name())
	assert.Equal(t, p.Len(), q.Len())
}

func TestProfileJSON(t *testing.T) {
	p := testProfile()

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Apple"`)
	assert.Contains(t, string(data), `"key":"energy_kcal"`)

	var back Profile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Name(), back.Name())
	assert.Equal(t, p.DefaultServingGrams(), back.DefaultServingGrams())
	for _, id := range All() {
		want, wantOK := p.Per100g(id)
		got, gotOK := back.Per100g(id)
		assert.Equal(t, wantOK, gotOK, "%s", id.Key())
		assert.InDelta(t, want.Value, got.Value, 1e-12)
	}
}

func TestProfileJSON_ByKeyAndUnknown(t *testing.T) {
	var p Profile
	err := json.Unmarshal([]byte(`{"name":"x","per_100g":[{"key":"fiber","value":2.5,"unit":"g"}]}`), &p)
	require.NoError(t, err)
	v, ok := p.Amount(Fiber, 100)
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	err = json.Unmarshal([]byte(`{"name":"x","per_100g":[{"key":"unobtainium","value":1,"unit":"g"}]}`), &p)
	assert.Error(t, err)
}
