// Package listing attaches read-time prices to catalog products and applies
// the filters and orderings that depend on them.
package listing

import (
	"sort"

	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/pricing"
)

type PriceReader interface {
	Snapshot() domain.PriceSnapshot
}

type Decorator struct {
	prices PriceReader
}

func New(prices PriceReader) *Decorator {
	return &Decorator{prices: prices}
}

// DecorateOne prices p from the current snapshot and returns that snapshot
// so callers can echo it next to the price.
func (d *Decorator) DecorateOne(p domain.Product) (domain.DecoratedProduct, domain.PriceSnapshot) {
	snap := d.prices.Snapshot()
	return Decorate(p, snap), snap
}

// DecorateMany prices the whole batch from a single snapshot, so a refresh
// landing mid-batch cannot mix two gold prices in one response.
func (d *Decorator) DecorateMany(products []domain.Product) ([]domain.DecoratedProduct, domain.PriceSnapshot) {
	snap := d.prices.Snapshot()
	out := make([]domain.DecoratedProduct, len(products))
	for i, p := range products {
		out[i] = Decorate(p, snap)
	}
	return out, snap
}

func Decorate(p domain.Product, snap domain.PriceSnapshot) domain.DecoratedProduct {
	return domain.DecoratedProduct{
		Product:         p,
		CalculatedPrice: pricing.ComputePrice(snap.Price, p.PopularityScore, p.Weight),
	}
}

// ApplyPriceFilter keeps items whose price lies within the inclusive bounds.
// A nil bound is open. Order is preserved.
func ApplyPriceFilter(items []domain.DecoratedProduct, min, max *float64) []domain.DecoratedProduct {
	out := make([]domain.DecoratedProduct, 0, len(items))
	for _, it := range items {
		if min != nil && it.CalculatedPrice < *min {
			continue
		}
		if max != nil && it.CalculatedPrice > *max {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ApplyPriceSort returns a copy of items ordered by price. Equal prices keep
// their input order in both directions.
func ApplyPriceSort(items []domain.DecoratedProduct, ascending bool) []domain.DecoratedProduct {
	out := make([]domain.DecoratedProduct, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].CalculatedPrice < out[j].CalculatedPrice
		}
		return out[i].CalculatedPrice > out[j].CalculatedPrice
	})
	return out
}

// Paginate slices an already filtered and sorted set. Total and page count
// describe the whole set, not the returned page.
func Paginate(items []domain.DecoratedProduct, page, limit int) ([]domain.DecoratedProduct, domain.Pagination) {
	meta := domain.NewPagination(page, limit, len(items))

	if page < 1 || limit < 1 || page-1 >= (len(items)+limit-1)/limit {
		return []domain.DecoratedProduct{}, meta
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
