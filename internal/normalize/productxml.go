package normalize

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/nutrient"
)

// productXML is the XML rendition of a product record. The root element name
// varies between deployments and is not checked.
type productXML struct {
	Description     string        `xml:"description"`
	ServingSize     string        `xml:"servingSize"`
	ServingSizeUnit string        `xml:"servingSizeUnit"`
	NotFound        string        `xml:"NotFound"`
	Nutrients       []xmlNutrient `xml:"Nutrient"`
	Nested          []xmlNutrient `xml:"Nutrients>Nutrient"`
}

type xmlNutrient struct {
	Key      string `xml:"key"`
	Value    string `xml:"value"`
	UnitName string `xml:"unitName"`
}

func (n *Normalizer) fromProductXML(payload []byte) (nutrient.Profile, error) {
	var doc productXML
	if err := xml.Unmarshal(payload, &doc); err != nil {
		return nutrient.Profile{}, errors.NewMalformedResponse(string(KindProductXML), err)
	}
	if strings.EqualFold(strings.TrimSpace(doc.NotFound), "true") {
		return nutrient.Profile{}, errors.NewNotFound("product", "")
	}

	per100g := make(map[nutrient.ID]nutrient.Amount)
	for _, xn := range append(doc.Nutrients, doc.Nested...) {
		id, ok := OFFNutrientID(xn.Key)
		if !ok {
			continue
		}
		v, ok := coerceFloat(xn.Value)
		if !ok {
			continue
		}
		n.addConverted(per100g, id, v, xn.UnitName)
	}

	serving := 100.0
	if size, err := strconv.ParseFloat(strings.TrimSpace(doc.ServingSize), 64); err == nil && size > 0 {
		if strings.TrimSpace(doc.ServingSizeUnit) != "" {
			serving = ServingGrams(size, doc.ServingSizeUnit)
		}
	}
	return nutrient.NewProfile(strings.TrimSpace(doc.Description), serving, per100g), nil
}
