package domain

import (
	"time"

	"github.com/google/uuid"
)

type GoldColor string

const (
	GoldYellow GoldColor = "yellow"
	GoldWhite  GoldColor = "white"
	GoldRose   GoldColor = "rose"
)

func (c GoldColor) Valid() bool {
	switch c {
	case GoldYellow, GoldWhite, GoldRose:
		return true
	}
	return false
}

type Variant struct {
	Color    GoldColor `json:"color"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

// Product is a catalog record as written by the vendor CRUD side.
// Weight is in grams, PopularityScore is in [0, 10].
type Product struct {
	ID              uuid.UUID `json:"id"`
	VendorID        uuid.UUID `json:"vendorId"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Weight          float64   `json:"weight"`
	PopularityScore float64   `json:"popularityScore"`
	Variants        []Variant `json:"variants"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DecoratedProduct is a Product with its read-time price. It is never stored.
type DecoratedProduct struct {
	Product
	CalculatedPrice float64 `json:"calculatedPrice"`
}
