package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f CatalogFilter, limit, offset int) ([]Product, int, error)
	ListAll(ctx context.Context, f CatalogFilter) ([]Product, error)
	Favorites(ctx context.Context, userID uuid.UUID) ([]Product, error)
	RecentProductIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

type Cache interface {
	Get(id uuid.UUID) (*Product, bool)
	Set(product *Product)
	Remove(id uuid.UUID)
}
