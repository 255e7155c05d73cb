package domain

import "github.com/google/uuid"

type ProductEventType string

const (
	ProductUpserted ProductEventType = "upsert"
	ProductDeleted  ProductEventType = "delete"
)

// ProductEvent is emitted by the CRUD side whenever a product row changes.
type ProductEvent struct {
	ProductID uuid.UUID        `json:"productId"`
	Type      ProductEventType `json:"type"`
}
