package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/listing"
	"github.com/TemirB/jewelry-pricing/internal/observability"
)

//go:generate mockgen -source internal/application/service/service.go -destination=internal/application/service/service_mock_test.go -package=service

type Cache interface {
	Set(*domain.Product)
	Get(uuid.UUID) (*domain.Product, bool)
	Remove(uuid.UUID)
}

type Storage interface {
	GetByID(context.Context, uuid.UUID) (*domain.Product, error)
	List(context.Context, domain.CatalogFilter, int, int) ([]domain.Product, int, error)
	ListAll(context.Context, domain.CatalogFilter) ([]domain.Product, error)
	Favorites(context.Context, uuid.UUID) ([]domain.Product, error)
}

type Service struct {
	cache     Cache
	storage   Storage
	decorator *listing.Decorator
	logger    *zap.Logger
	metrics   observability.Metrics
}

func NewService(cache Cache, storage Storage, prices listing.PriceReader, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		cache:     cache,
		storage:   storage,
		decorator: listing.New(prices),
		logger:    logger,
		metrics:   metrics,
	}
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (ProductResult, error) {
	res, _, err := s.GetProductWithStats(ctx, id)
	return res, err
}

func (s *Service) GetProductWithStats(ctx context.Context, id uuid.UUID) (ProductResult, LookupStats, error) {
	p, st, err := s.lookup(ctx, id)
	if err != nil {
		return ProductResult{}, st, err
	}
	item, snap := s.decorator.DecorateOne(*p)
	return ProductResult{Product: item, Price: snap}, st, nil
}

func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*domain.Product, LookupStats, error) {
	var st LookupStats

	tCacheStart := time.Now()
	if p, ok := s.cache.Get(id); ok {
		st.Source = SourceCache
		st.CacheMs = convertToMs(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)

		s.logger.Debug("Product fetched from cache",
			zap.Stringer("product_id", id),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return p, st, nil
	}

	s.metrics.IncCacheMiss()
	st.CacheMs = convertToMs(tCacheStart)

	tDbStart := time.Now()
	p, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Can't load product",
				zap.Stringer("product_id", id),
				zap.Error(err),
			)
		}
		return nil, st, err
	}

	st.Source = SourceDB
	st.DBMs = convertToMs(tDbStart)
	s.cache.Set(p)

	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)
	s.logger.Debug("Product fetched from DB",
		zap.Stringer("product_id", id),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	)
	return p, st, nil
}

// ListProducts returns one page of decorated products. When the query
// filters or sorts on price the store cannot page for us: the whole
// candidate set is loaded, priced from one snapshot, filtered and sorted,
// and only then cut into pages.
func (s *Service) ListProducts(ctx context.Context, q domain.ListQuery) (ProductPage, error) {
	q = q.Normalize()

	if !q.PriceBound() {
		products, total, err := s.storage.List(ctx, q.Filter, q.Limit, q.Offset())
		if err != nil {
			s.logger.Error("Can't list products", zap.Error(err))
			return ProductPage{}, err
		}
		items, snap := s.decorator.DecorateMany(products)
		return ProductPage{
			Items:      items,
			Pagination: domain.NewPagination(q.Page, q.Limit, total),
			Price:      snap,
		}, nil
	}

	products, err := s.storage.ListAll(ctx, q.Filter)
	if err != nil {
		s.logger.Error("Can't load candidate products", zap.Error(err))
		return ProductPage{}, err
	}

	items, snap := s.decorator.DecorateMany(products)
	items = listing.ApplyPriceFilter(items, q.MinPrice, q.MaxPrice)
	if q.Filter.SortBy == domain.SortPrice {
		items = listing.ApplyPriceSort(items, !q.Filter.Desc)
	}
	page, meta := listing.Paginate(items, q.Page, q.Limit)

	s.logger.Debug("Products priced in memory",
		zap.Int("candidates", len(products)),
		zap.Int("matched", meta.Total),
		zap.Float64("gold_price", snap.Price),
	)
	return ProductPage{Items: page, Pagination: meta, Price: snap}, nil
}

func (s *Service) VendorProducts(ctx context.Context, vendorID uuid.UUID, q domain.ListQuery) (ProductPage, error) {
	q.Filter.VendorID = &vendorID
	return s.ListProducts(ctx, q)
}

func (s *Service) Favorites(ctx context.Context, userID uuid.UUID) (ProductList, error) {
	products, err := s.storage.Favorites(ctx, userID)
	if err != nil {
		s.logger.Error("Can't load favorites",
			zap.Stringer("user_id", userID),
			zap.Error(err),
		)
		return ProductList{}, err
	}
	items, snap := s.decorator.DecorateMany(products)
	return ProductList{Items: items, Price: snap}, nil
}

// Reload refreshes the cached copy of a product after the CRUD side changed
// it. A product that no longer exists is evicted.
func (s *Service) Reload(ctx context.Context, id uuid.UUID) error {
	p, err := s.storage.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.Evict(id)
		return nil
	}
	if err != nil {
		return err
	}
	s.cache.Set(p)
	s.logger.Debug("Product reloaded", zap.Stringer("product_id", id))
	return nil
}

func (s *Service) Evict(id uuid.UUID) {
	s.cache.Remove(id)
	s.logger.Debug("Product evicted", zap.Stringer("product_id", id))
}
