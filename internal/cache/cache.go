package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/TemirB/jewelry-pricing/internal/domain"
)

//go:generate mockgen -source internal/cache/cache.go -destination=internal/cache/cache_mock_test.go -package=cache

type repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	RecentProductIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// Cache holds catalog records only. Prices depend on the live gold price
// and are computed on every read. Entries expire after ttl so edits made
// while product events are not flowing still show up eventually.
type Cache struct {
	size int
	lru  *expirable.LRU[uuid.UUID, domain.Product]
}

func New(size int, ttl time.Duration) (*Cache, error) {
	if size < 1 {
		return nil, errors.New("cache size must be positive")
	}
	return &Cache{
		size: size,
		lru:  expirable.NewLRU[uuid.UUID, domain.Product](size, nil, ttl),
	}, nil
}

// Warm loads the most recently created products and returns how many made it
// into the cache. Individual read errors are skipped.
func (c *Cache) Warm(ctx context.Context, repo repo) int {
	ids, err := repo.RecentProductIDs(ctx, c.size)
	if err != nil {
		return 0
	}
	n := 0
	for _, id := range ids {
		if p, err := repo.GetByID(ctx, id); err == nil {
			c.Set(p)
			n++
		}
	}
	return n
}

func (c *Cache) Get(id uuid.UUID) (*domain.Product, bool) {
	p, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *Cache) Set(p *domain.Product) {
	c.lru.Add(p.ID, *p)
}

func (c *Cache) Remove(id uuid.UUID) {
	c.lru.Remove(id)
}

func (c *Cache) Len() int { return c.lru.Len() }
