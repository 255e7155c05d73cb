package domain

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

type SortKey string

const (
	SortCreatedAt  SortKey = "created_at"
	SortName       SortKey = "name"
	SortPopularity SortKey = "popularity"
	SortWeight     SortKey = "weight"
	// SortPrice is computed, never a stored column.
	SortPrice SortKey = "price"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case "":
		return SortCreatedAt, nil
	case SortCreatedAt, SortName, SortPopularity, SortWeight, SortPrice:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// CatalogFilter holds the filters the catalog store can apply natively.
type CatalogFilter struct {
	VendorID  *uuid.UUID
	GoldColor GoldColor
	Search    string
	MinWeight *float64
	MaxWeight *float64
	SortBy    SortKey
	Desc      bool
}

type ListQuery struct {
	Filter   CatalogFilter
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (Page-1)*Limit inside int for any accepted limit.
	MaxPage = math.MaxInt / MaxLimit
)

// PriceBound reports whether the listing depends on computed prices and
// therefore cannot be paginated by the store.
func (q ListQuery) PriceBound() bool {
	return q.MinPrice != nil || q.MaxPrice != nil || q.Filter.SortBy == SortPrice
}

func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Filter.SortBy == "" {
		q.Filter.SortBy = SortCreatedAt
	}
	return q
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }
