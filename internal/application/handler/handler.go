package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/config"
	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/observability"
	"github.com/TemirB/jewelry-pricing/internal/pkg/retry"
)

//go:generate mockgen -source internal/application/handler/handler.go -destination=internal/application/handler/handler_mock_test.go -package=handler

var (
	ErrReload      = errors.New("product reload failed")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

type Service interface {
	Reload(ctx context.Context, id uuid.UUID) error
	Evict(id uuid.UUID)
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

// Handler keeps the product cache in line with catalog changes.
type Handler struct {
	service     Service
	breaker     brk
	logger      *zap.Logger
	metrics     observability.Metrics
	retryPolicy config.Retry
}

func NewHandler(service Service, breaker brk, retryPolicy config.Retry, logger *zap.Logger, metrics observability.Metrics) *Handler {
	return &Handler{
		service:     service,
		breaker:     breaker,
		logger:      logger,
		metrics:     metrics,
		retryPolicy: retryPolicy,
	}
}

// Handle processes a single product event. The consumer commits the offset
// only after nil is returned. Malformed events are logged and acknowledged,
// redelivering them would never succeed.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	start := time.Now()
	err := h.handle(ctx, message)
	h.metrics.ObserveKafka(float64(time.Since(start).Microseconds())/1000.0, err == nil)
	return err
}

func (h *Handler) handle(ctx context.Context, message kafkago.Message) error {
	var event domain.ProductEvent
	if err := json.Unmarshal(message.Value, &event); err != nil || event.ProductID == uuid.Nil {
		h.logger.Error("skipping malformed product event",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}

	if event.Type != domain.ProductUpserted && event.Type != domain.ProductDeleted {
		h.logger.Warn("skipping product event of unknown type",
			zap.String("type", string(event.Type)),
			zap.Stringer("product_id", event.ProductID),
		)
		return nil
	}

	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}

	switch event.Type {
	case domain.ProductDeleted:
		h.service.Evict(event.ProductID)

	case domain.ProductUpserted:
		if err := retry.Do(ctx, h.retryPolicy, func() error {
			return h.service.Reload(ctx, event.ProductID)
		}); err != nil {
			h.logger.Error("reload failed after retries",
				zap.Stringer("product_id", event.ProductID),
				zap.Error(err),
				zap.Int("partition", message.Partition),
				zap.Int64("offset", message.Offset),
			)
			h.breaker.Failure()
			return ErrReload
		}
	}

	h.breaker.Success()
	h.logger.Info("processed product event",
		zap.Stringer("product_id", event.ProductID),
		zap.String("type", string(event.Type)),
		zap.Int("partition", message.Partition),
		zap.Int64("offset", message.Offset),
	)
	return nil
}
