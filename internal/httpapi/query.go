package httpapi

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/TemirB/jewelry-pricing/internal/domain"
)

// parseListQuery reads the listing parameters shared by /products and
// /vendors/{vendorID}/products. Page and limit are clamped later; anything
// that cannot be parsed is rejected here.
func parseListQuery(v url.Values) (domain.ListQuery, error) {
	var (
		q   domain.ListQuery
		err error
	)

	if q.Page, err = intParam(v, "page"); err != nil {
		return q, err
	}
	if q.Page > domain.MaxPage {
		return q, fmt.Errorf("page must not exceed %d", domain.MaxPage)
	}
	if q.Limit, err = intParam(v, "limit"); err != nil {
		return q, err
	}

	if q.Filter.SortBy, err = domain.ParseSortKey(v.Get("sort")); err != nil {
		return q, err
	}
	switch strings.ToLower(v.Get("order")) {
	case "", "asc":
	case "desc":
		q.Filter.Desc = true
	default:
		return q, fmt.Errorf("order must be asc or desc")
	}

	if q.MinPrice, err = floatParam(v, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = floatParam(v, "maxPrice"); err != nil {
		return q, err
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return q, fmt.Errorf("minPrice must not exceed maxPrice")
	}

	if q.Filter.MinWeight, err = floatParam(v, "minWeight"); err != nil {
		return q, err
	}
	if q.Filter.MaxWeight, err = floatParam(v, "maxWeight"); err != nil {
		return q, err
	}

	if c := v.Get("goldColor"); c != "" {
		q.Filter.GoldColor = domain.GoldColor(strings.ToLower(c))
		if !q.Filter.GoldColor.Valid() {
			return q, fmt.Errorf("unknown goldColor %q", c)
		}
	}
	if s := v.Get("vendorId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return q, fmt.Errorf("invalid vendorId")
		}
		q.Filter.VendorID = &id
	}
	q.Filter.Search = strings.TrimSpace(v.Get("search"))

	return q, nil
}

func intParam(v url.Values, name string) (int, error) {
	s := v.Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func floatParam(v url.Values, name string) (*float64, error) {
	s := v.Get(name)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s must be a non-negative number", name)
	}
	return &f, nil
}
