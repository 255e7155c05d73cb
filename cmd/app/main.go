package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/application/handler"
	"github.com/TemirB/jewelry-pricing/internal/application/service"
	"github.com/TemirB/jewelry-pricing/internal/cache"
	"github.com/TemirB/jewelry-pricing/internal/config"
	"github.com/TemirB/jewelry-pricing/internal/database"
	"github.com/TemirB/jewelry-pricing/internal/httpapi"
	"github.com/TemirB/jewelry-pricing/internal/kafka"
	"github.com/TemirB/jewelry-pricing/internal/observability"
	"github.com/TemirB/jewelry-pricing/internal/oracle"
	"github.com/TemirB/jewelry-pricing/internal/pkg/circuit"
	"github.com/TemirB/jewelry-pricing/internal/pricestore"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewPrometheus()

	// Catalog
	pool, err := database.Connect(ctx, cfg.DSN(), cfg.Retry, logger)
	if err != nil {
		logger.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pool.Close()
	repo := database.New(pool, cfg.Pg.Schema)

	productCache, err := cache.New(cfg.CacheCap, cfg.CacheTTL)
	if err != nil {
		logger.Fatal("create product cache", zap.Error(err))
	}
	logger.Info("product cache warmed", zap.Int("products", productCache.Warm(ctx, repo)))

	// Gold price
	var (
		publishers []oracle.Publisher
		store      *pricestore.Store
	)
	if cfg.Redis.Enabled() {
		s, rdb, err := pricestore.Dial(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, price will not be shared", zap.Error(err))
		} else {
			defer rdb.Close()
			store = s
			publishers = append(publishers, s)
		}
	}
	if cfg.Kafka.Enabled() {
		if err := kafka.EnsureTopics(ctx, cfg.Kafka, logger, cfg.Kafka.ProductTopic, cfg.Kafka.PriceTopic); err != nil {
			logger.Warn("ensure kafka topics", zap.Error(err))
		}
		pricePub := kafka.NewPricePublisher(kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.PriceTopic))
		defer pricePub.Close()
		publishers = append(publishers, pricePub)
	}

	orc := oracle.NewFromConfig(cfg.Oracle, &http.Client{}, logger, metrics, publishers...)
	if store != nil {
		orc.Warm(ctx, store)
	}
	orc.Start(ctx)
	defer orc.Stop()

	svc := service.NewService(productCache, repo, orc, logger, metrics)

	// Product events
	if cfg.Kafka.Enabled() {
		reader := kafka.NewReader(cfg.Kafka)
		defer reader.Close()

		h := handler.NewHandler(svc, circuit.FromConfig(cfg.Breaker), cfg.Retry, logger, metrics)
		go kafka.NewConsumer(h, reader, cfg.Kafka.Workers, logger).Start(ctx)
	} else {
		logger.Info("no kafka brokers configured, cached products refresh on expiry only")
	}

	server := httpapi.New(svc, orc, logger, metrics)
	logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		logger.Error("http server", zap.Error(err))
	}
	logger.Info("shutting down")
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return zcfg.Build()
}
