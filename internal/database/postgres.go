package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/config"
	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/pkg/retry"
)

// Repo reads the catalog tables owned by the vendor CRUD side. It never
// writes.
type Repo struct {
	pool   *pgxpool.Pool
	schema string
}

var _ domain.ProductRepository = (*Repo)(nil)

func New(pool *pgxpool.Pool, schema string) *Repo { return &Repo{pool: pool, schema: schema} }

// Connect opens a pool that logs statements through logger and retries the
// first ping, since the database often starts alongside the service.
func Connect(ctx context.Context, dsn string, policy config.Retry, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newZapTracer(logger),
		LogLevel: tracelog.LogLevelWarn,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = retry.Do(ctx, policy, func() error {
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("postgres not ready", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM %s p WHERE p.id = $1
	`, productColumns, qualify(r.schema, "products")), id).Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Description, &p.Weight, &p.PopularityScore, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	products := []domain.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *Repo) List(ctx context.Context, f domain.CatalogFilter, limit, offset int) ([]domain.Product, int, error) {
	cq := countQuery(r.schema, f)
	var total int
	if err := r.pool.QueryRow(ctx, cq.sql, cq.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	products, err := r.query(ctx, listQuery(r.schema, f, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *Repo) ListAll(ctx context.Context, f domain.CatalogFilter) ([]domain.Product, error) {
	return r.query(ctx, listQuery(r.schema, f, 0, 0))
}

func (r *Repo) Favorites(ctx context.Context, userID uuid.UUID) ([]domain.Product, error) {
	return r.query(ctx, query{
		sql: fmt.Sprintf(`
			SELECT %s FROM %s f
			JOIN %s p ON p.id = f.product_id
			WHERE f.user_id = $1
			ORDER BY f.created_at DESC, p.id
		`, productColumns, qualify(r.schema, "favorites"), qualify(r.schema, "products")),
		args: []any{userID},
	})
}

func (r *Repo) RecentProductIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT id FROM %s
		ORDER BY created_at DESC NULLS LAST
		LIMIT $1
	`, qualify(r.schema, "products")), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) query(ctx context.Context, q query) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Name, &p.Description, &p.Weight, &p.PopularityScore, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachVariants loads variants for all products in one round trip.
func (r *Repo) attachVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT product_id, color, COALESCE(image_url, '')
		FROM %s WHERE product_id = ANY($1)
		ORDER BY product_id, color
	`, qualify(r.schema, "product_variants")), ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pid uuid.UUID
			v   domain.Variant
		)
		if err := rows.Scan(&pid, &v.Color, &v.ImageURL); err != nil {
			return err
		}
		if i, ok := index[pid]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rows.Err()
}
