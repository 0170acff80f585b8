package diet

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/hpungsan/citrus/internal/nutrient"
)

// Format renders a stored amount in the unit people read it in: kcal for
// calories, mg or µg for micronutrients, grams otherwise.
func (k Key) Format(stored float64) string {
	if k == Calories {
		return humanize.Comma(int64(math.Round(stored))) + " kcal"
	}
	v, unit := nutrient.Convert(stored, nutrient.UnitG, k.Nutrient().Class())
	switch {
	case v >= 100:
		return humanize.FormatFloat("#,###.", v) + " " + unit
	case v >= 10:
		return humanize.FormatFloat("#,###.#", v) + " " + unit
	}
	return humanize.FormatFloat("#,###.##", v) + " " + unit
}

// Name is the display name of the key's nutrient ("Saturated Fat").
func (k Key) Name() string {
	return k.Nutrient().DisplayName()
}
