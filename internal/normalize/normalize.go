// Package normalize turns raw food-source payloads into nutrient.Profile values.
//
// Three source shapes are understood: first-party FoodData records (search and
// EAN API), open-food-database product records in JSON or XML, and free-text
// estimates returned by a language model. Every failure is reported as a typed
// *errors.CitrusError together with a zero Profile; a partially populated
// profile is never returned.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/nutrient"
)

// Kind identifies a source payload shape.
type Kind string

const (
	KindFoodData   Kind = "fooddata"
	KindProduct    Kind = "product"
	KindProductXML Kind = "product_xml"
	KindEstimate   Kind = "estimate"
)

// MissingUnit decides what to do with a source nutrient that has no unit.
type MissingUnit int

const (
	// AssumeCanonical treats the value as already in the nutrient's canonical unit.
	// This is a lossy guess: sources mostly report macros in grams, but nothing
	// confirms it per value.
	AssumeCanonical MissingUnit = iota
	// DropNutrient omits the nutrient from the profile.
	DropNutrient
)

// ParseMissingUnit maps the config string ("assume", "drop").
func ParseMissingUnit(s string) (MissingUnit, error) {
	switch s {
	case "", "assume":
		return AssumeCanonical, nil
	case "drop":
		return DropNutrient, nil
	}
	return AssumeCanonical, fmt.Errorf("unknown unit fallback %q", s)
}

// Options configures a Normalizer.
type Options struct {
	MissingUnit MissingUnit
}

// Normalizer is stateless apart from its options and safe for concurrent use.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize parses payload as the given kind.
func (n *Normalizer) Normalize(payload []byte, kind Kind) (nutrient.Profile, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nutrient.Profile{}, errors.NewMalformedResponse(string(kind), fmt.Errorf("empty payload"))
	}
	switch kind {
	case KindFoodData:
		var rec FoodRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nutrient.Profile{}, errors.NewMalformedResponse(string(kind), err)
		}
		return n.FromFoodRecord(rec), nil
	case KindProduct:
		return n.fromProductJSON(payload)
	case KindProductXML:
		return n.fromProductXML(payload)
	case KindEstimate:
		return n.fromEstimate(payload)
	}
	return nutrient.Profile{}, errors.NewInvalidRequest(fmt.Sprintf("unknown source kind %q", kind))
}

// SearchResults decodes a search response ({"foods": [...]}) and normalizes
// each record in order. Results are concatenated as-is.
func (n *Normalizer) SearchResults(payload []byte) ([]nutrient.Profile, error) {
	var resp struct {
		Foods []FoodRecord `json:"foods"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, errors.NewMalformedResponse("search", err)
	}
	out := make([]nutrient.Profile, 0, len(resp.Foods))
	for _, rec := range resp.Foods {
		out = append(out, n.FromFoodRecord(rec))
	}
	return out, nil
}

// addConverted stores value/unit for id in m, applying the missing-unit policy.
func (n *Normalizer) addConverted(m map[nutrient.ID]nutrient.Amount, id nutrient.ID, value float64, unit string) {
	if nutrient.NormalizeUnit(unit) == "" && n.opts.MissingUnit == DropNutrient {
		return
	}
	v, u := nutrient.Convert(value, unit, id.Class())
	m[id] = nutrient.Amount{Value: v, Unit: u}
}

// Number is a JSON number that also accepts numeric strings. Null, absent,
// and non-numeric values leave it unset.
type Number struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Value, n.Set = coerceFloat(raw)
	return nil
}

// coerceFloat accepts numbers and numeric-looking strings.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, false
		}
		v = t
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
