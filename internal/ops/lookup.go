package ops

import (
	"context"
	"strconv"
	"strings"

	"github.com/hpungsan/citrus/internal/cache"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/fetch"
	"github.com/hpungsan/citrus/internal/normalize"
	"github.com/hpungsan/citrus/internal/nutrient"
)

// SearchInput contains parameters for Search.
type SearchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchOutput contains the result of Search. Reason is set when the search
// produced no results because of a soft failure.
type SearchOutput struct {
	Foods  []nutrient.Profile `json:"foods"`
	Reason string             `json:"reason,omitempty"`
}

// Search runs a free-text food search.
func Search(ctx context.Context, svc *Service, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	limit := input.Limit
	if limit <= 0 {
		limit = svc.PageSize
	}
	if limit <= 0 {
		limit = fetch.DefaultPageSize
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	key := cache.Key("search", strconv.Itoa(limit), query)
	payload, cached := svc.Cache.Get(key)
	if !cached {
		var err error
		payload, err = svc.Fetcher.Search(ctx, query, limit)
		if err != nil {
			return softSearch(svc, err)
		}
	}

	foods, err := svc.Normalizer.SearchResults(payload)
	if err != nil {
		if cached {
			_ = svc.Cache.Delete(key)
		}
		return softSearch(svc, err)
	}
	if !cached {
		svc.Cache.Put(key, payload)
	}
	return &SearchOutput{Foods: foods}, nil
}

func softSearch(svc *Service, err error) (*SearchOutput, error) {
	reason, err := svc.soften("search", err)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Foods: []nutrient.Profile{}, Reason: reason}, nil
}

// LookupInput contains parameters for LookupEAN.
type LookupInput struct {
	EAN string `json:"ean"`
	XML bool   `json:"xml,omitempty"`
}

// LookupOutput contains one normalized profile. Found is false, and Reason
// set, when the source returned nothing usable.
type LookupOutput struct {
	Found   bool              `json:"found"`
	Profile *nutrient.Profile `json:"profile,omitempty"`
	Reason  string            `json:"reason,omitempty"`
}

// LookupEAN fetches a product by barcode, as JSON or XML.
func LookupEAN(ctx context.Context, svc *Service, input LookupInput) (*LookupOutput, error) {
	ean := strings.TrimSpace(input.EAN)
	if ean == "" {
		return nil, errors.NewInvalidRequest("ean is required")
	}
	for _, r := range ean {
		if r < '0' || r > '9' {
			return nil, errors.NewInvalidRequest("ean must contain digits only")
		}
	}

	kind, format := normalize.KindProduct, "json"
	fetchFn := svc.Fetcher.LookupEAN
	if input.XML {
		kind, format = normalize.KindProductXML, "xml"
		fetchFn = svc.Fetcher.LookupEANXML
	}

	key := cache.Key("ean", format, ean)
	payload, cached := svc.Cache.Get(key)
	if !cached {
		var err error
		payload, err = fetchFn(ctx, ean)
		if err != nil {
			return softLookup(svc, "ean lookup", err)
		}
	}

	profile, err := svc.Normalizer.Normalize(payload, kind)
	if err != nil {
		if cached {
			_ = svc.Cache.Delete(key)
		}
		return softLookup(svc, "ean lookup", err)
	}
	if !cached {
		svc.Cache.Put(key, payload)
	}
	return &LookupOutput{Found: true, Profile: &profile}, nil
}

// EstimateInput contains parameters for Estimate.
type EstimateInput struct {
	Text string `json:"text"`
}

// Estimate asks the language model for the nutrition of a meal description.
// Estimates are never cached.
func Estimate(ctx context.Context, svc *Service, input EstimateInput) (*LookupOutput, error) {
	reply, err := svc.Fetcher.Estimate(ctx, input.Text)
	if err != nil {
		return softLookup(svc, "estimate", err)
	}
	profile, err := svc.Normalizer.Normalize([]byte(reply), normalize.KindEstimate)
	if err != nil {
		return softLookup(svc, "estimate", err)
	}
	return &LookupOutput{Found: true, Profile: &profile}, nil
}

func softLookup(svc *Service, op string, err error) (*LookupOutput, error) {
	reason, err := svc.soften(op, err)
	if err != nil {
		return nil, err
	}
	return &LookupOutput{Reason: reason}, nil
}

// FoodRef names a food by exactly one of barcode, search query or free-text
// description.
type FoodRef struct {
	EAN   string `json:"ean,omitempty"`
	XML   bool   `json:"xml,omitempty"`
	Query string `json:"query,omitempty"`
	Text  string `json:"text,omitempty"`
}

// ResolveFood looks up the profile a FoodRef points to. A query resolves to
// the first search result.
func ResolveFood(ctx context.Context, svc *Service, ref FoodRef) (*LookupOutput, error) {
	set := 0
	for _, s := range []string{ref.EAN, ref.Query, ref.Text} {
		if strings.TrimSpace(s) != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.NewInvalidRequest("specify exactly one of ean, query or text")
	}

	switch {
	case strings.TrimSpace(ref.EAN) != "":
		return LookupEAN(ctx, svc, LookupInput{EAN: ref.EAN, XML: ref.XML})
	case strings.TrimSpace(ref.Text) != "":
		return Estimate(ctx, svc, EstimateInput{Text: ref.Text})
	}

	res, err := Search(ctx, svc, SearchInput{Query: ref.Query, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(res.Foods) == 0 {
		reason := res.Reason
		if reason == "" {
			reason = string(errors.ErrNotFound)
		}
		return &LookupOutput{Reason: reason}, nil
	}
	p := res.Foods[0]
	return &LookupOutput{Found: true, Profile: &p}, nil
}
