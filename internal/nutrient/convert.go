package nutrient

import "strings"

// KJPerKcal is the number of kilojoules in one kilocalorie.
const KJPerKcal = 4.184

// NormalizeUnit lower-cases and trims a source unit and folds the spellings
// of micrograms into UnitUg. An empty result means "no unit supplied".
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch u {
	case "µg", "μg", "ug", "mcg":
		return UnitUg
	case "kj", "kilojoule", "kilojoules":
		return "kj"
	case "kcal", "cal", "calories", "kilocalorie", "kilocalories":
		return UnitKcal
	case "gram", "grams":
		return UnitG
	case "milligram", "milligrams":
		return UnitMg
	}
	return u
}

// Convert expresses value, measured in sourceUnit, in the canonical unit of
// class. Units that do not belong to the class (or are empty or unknown) are
// taken as already canonical: the value passes through unchanged.
func Convert(value float64, sourceUnit string, class Class) (float64, string) {
	u := NormalizeUnit(sourceUnit)
	switch class {
	case Grams:
		switch u {
		case UnitMg:
			return value / 1000, UnitG
		case UnitUg:
			return value / 1_000_000, UnitG
		}
	case Milligrams:
		switch u {
		case UnitG:
			return value * 1000, UnitMg
		case UnitUg:
			return value / 1000, UnitMg
		}
	case Micrograms:
		switch u {
		case UnitMg:
			return value * 1000, UnitUg
		case UnitG:
			return value * 1_000_000, UnitUg
		}
	case Kilocalories:
		if u == "kj" {
			return value / KJPerKcal, UnitKcal
		}
	}
	return value, class.Unit()
}

// ClassOfUnit returns the class a unit string belongs to.
// ok is false for empty or unrecognized units.
func ClassOfUnit(unit string) (Class, bool) {
	switch NormalizeUnit(unit) {
	case UnitG:
		return Grams, true
	case UnitMg:
		return Milligrams, true
	case UnitUg:
		return Micrograms, true
	case UnitKcal, "kj":
		return Kilocalories, true
	}
	return Grams, false
}
