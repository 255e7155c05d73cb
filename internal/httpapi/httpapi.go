package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/application/service"
	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/observability"
)

//go:generate mockgen -source internal/httpapi/httpapi.go -destination=internal/httpapi/httpapi_mock_test.go -package=httpapi

type Catalog interface {
	GetProductWithStats(ctx context.Context, id uuid.UUID) (service.ProductResult, service.LookupStats, error)
	ListProducts(ctx context.Context, q domain.ListQuery) (service.ProductPage, error)
	VendorProducts(ctx context.Context, vendorID uuid.UUID, q domain.ListQuery) (service.ProductPage, error)
	Favorites(ctx context.Context, userID uuid.UUID) (service.ProductList, error)
}

type PriceSource interface {
	Snapshot() domain.PriceSnapshot
}

type Server struct {
	catalog Catalog
	prices  PriceSource
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
	now     func() time.Time
}

func New(catalog Catalog, prices PriceSource, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		catalog: catalog,
		prices:  prices,
		router:  chi.NewRouter(),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		Instrument(s.metrics),
	)

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Get("/price", s.getPrice)
	s.router.Get("/products", s.listProducts)
	s.router.Get("/products/{id}", s.getProduct)
	s.router.Get("/vendors/{vendorID}/products", s.vendorProducts)
	s.router.Get("/users/{userID}/favorites", s.favorites)

	if exp, ok := s.metrics.(interface{ Handler() http.Handler }); ok {
		s.router.Handle("/metrics", exp.Handler())
	}
}

// Every priced payload carries the gold price it was computed from.
type productResponse struct {
	Product domain.DecoratedProduct `json:"product"`
	domain.PriceSnapshot
}

type listResponse struct {
	Products   []domain.DecoratedProduct `json:"products"`
	Pagination domain.Pagination         `json:"pagination"`
	domain.PriceSnapshot
}

type favoritesResponse struct {
	Favorites []domain.DecoratedProduct `json:"favorites"`
	domain.PriceSnapshot
}

func (s *Server) getPrice(w http.ResponseWriter, _ *http.Request) {
	snap := s.prices.Snapshot()
	observability.SetPriceAge(w, snap.UpdatedAt, s.now())
	writeJSON(w, snap)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	res, st, err := s.catalog.GetProductWithStats(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "no product with this id")
		return
	}

	observability.AppendServerTiming(w, "cache", st.CacheMs, "")
	observability.AppendServerTiming(w, "db", st.DBMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w, "X-Cache-Time", st.CacheMs)
	observability.SetIfPos(w, "X-DB-Time", st.DBMs)
	observability.SetPriceAge(w, res.Price.UpdatedAt, s.now())

	writeJSON(w, productResponse{Product: res.Product, PriceSnapshot: res.Price})
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := s.catalog.ListProducts(r.Context(), q)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.writePage(w, page)
}

func (s *Server) vendorProducts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(chi.URLParam(r, "vendorID"))
	if err != nil {
		http.Error(w, "invalid vendor id", http.StatusBadRequest)
		return
	}
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	page, err := s.catalog.VendorProducts(r.Context(), vendorID, q)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	s.writePage(w, page)
}

func (s *Server) favorites(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	list, err := s.catalog.Favorites(r.Context(), userID)
	if err != nil {
		s.storeError(w, err, "")
		return
	}
	observability.SetPriceAge(w, list.Price.UpdatedAt, s.now())
	writeJSON(w, favoritesResponse{Favorites: list.Items, PriceSnapshot: list.Price})
}

func (s *Server) writePage(w http.ResponseWriter, page service.ProductPage) {
	observability.SetPriceAge(w, page.Price.UpdatedAt, s.now())
	writeJSON(w, listResponse{
		Products:      page.Items,
		Pagination:    page.Pagination,
		PriceSnapshot: page.Price,
	})
}

func (s *Server) storeError(w http.ResponseWriter, err error, notFound string) {
	if notFound != "" && errors.Is(err, domain.ErrNotFound) {
		http.Error(w, notFound, http.StatusNotFound)
		return
	}
	s.logger.Error("catalog request failed", zap.Error(err))
	http.Error(w, "Service error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Handler() http.Handler { return s.router }
