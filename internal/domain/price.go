package domain

import "time"

// PriceSnapshot is an immutable gold price reading. UpdatedAt is nil until
// the first successful refresh; until then Price is the static fallback.
type PriceSnapshot struct {
	Price     float64    `json:"goldPrice"`
	UpdatedAt *time.Time `json:"lastPriceUpdate"`
	Source    string     `json:"source,omitempty"`
}

func (s PriceSnapshot) Fresh() bool { return s.UpdatedAt != nil }
