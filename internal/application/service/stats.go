package service

import (
	"time"

	"github.com/TemirB/jewelry-pricing/internal/domain"
)

type LookupSource string

const (
	SourceCache LookupSource = "cache"
	SourceDB    LookupSource = "db"
)

type LookupStats struct {
	Source  LookupSource
	CacheMs float64
	DBMs    float64
}

// ProductResult carries the snapshot the product was priced from.
type ProductResult struct {
	Product domain.DecoratedProduct
	Price   domain.PriceSnapshot
}

type ProductPage struct {
	Items      []domain.DecoratedProduct
	Pagination domain.Pagination
	Price      domain.PriceSnapshot
}

type ProductList struct {
	Items []domain.DecoratedProduct
	Price domain.PriceSnapshot
}

func convertToMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
