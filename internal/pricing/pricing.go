// Package pricing converts a gold price and product attributes into a
// retail price.
package pricing

import "github.com/shopspring/decimal"

// TroyOunceGrams is the exact mass of one troy ounce in grams.
const TroyOunceGrams = 31.1034768

// ComputePrice returns (popularity+1) * weight * pricePerGram rounded to
// cents, half away from zero. Inputs are trusted: weight > 0, popularity in
// [0, 10], commodity price > 0.
func ComputePrice(commodityPricePerOunce, popularityScore, weightGrams float64) float64 {
	pricePerGram := commodityPricePerOunce / TroyOunceGrams
	raw := (popularityScore + 1) * weightGrams * pricePerGram

	rounded, _ := decimal.NewFromFloat(raw).Round(2).Float64()
	return rounded
}
