package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/config"
	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/observability"
)

func message(t *testing.T, v interface{}) kafkago.Message {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return kafkago.Message{Topic: "products", Partition: 1, Offset: 42, Value: data}
}

func TestHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	l := zap.NewNop()
	m := observability.NewNoop()
	rPolicy := config.Retry{
		Attempts: 2,
	}

	upsert := message(t, domain.ProductEvent{ProductID: id, Type: domain.ProductUpserted})
	del := message(t, domain.ProductEvent{ProductID: id, Type: domain.ProductDeleted})

	testCases := []struct {
		name string

		msg        kafkago.Message
		setupMocks func() *Handler
		wantErr    error
	}{
		{
			name: "Upsert reloads product",

			msg: upsert,
			setupMocks: func() *Handler {
				service := NewMockService(ctrl)
				brk := NewMockbrk(ctrl)

				brk.EXPECT().Allow().Return(nil)
				service.EXPECT().Reload(ctx, id).Return(nil)
				brk.EXPECT().Success()

				return NewHandler(service, brk, rPolicy, l, m)
			},
		},
		{
			name: "Upsert retried until success",

			msg: upsert,
			setupMocks: func() *Handler {
				service := NewMockService(ctrl)
				brk := NewMockbrk(ctrl)

				brk.EXPECT().Allow().Return(nil)
				gomock.InOrder(
					service.EXPECT().Reload(ctx, id).Return(errors.New("conn reset")),
					service.EXPECT().Reload(ctx, id).Return(nil),
				)
				brk.EXPECT().Success()

				return NewHandler(service, brk, rPolicy, l, m)
			},
		},
		{
			name: "Upsert fails after retries",

			msg: upsert,
			setupMocks: func() *Handler {
				service := NewMockService(ctrl)
				brk := NewMockbrk(ctrl)

				brk.EXPECT().Allow().Return(nil)
				service.EXPECT().Reload(ctx, id).Return(errors.New("db down")).Times(2)
				brk.EXPECT().Failure()

				return NewHandler(service, brk, rPolicy, l, m)
			},

			wantErr: ErrReload,
		},
		{
			name: "Delete evicts product",

			msg: del,
			setupMocks: func() *Handler {
				service := NewMockService(ctrl)
				brk := NewMockbrk(ctrl)

				brk.EXPECT().Allow().Return(nil)
				service.EXPECT().Evict(id)
				brk.EXPECT().Success()

				return NewHandler(service, brk, rPolicy, l, m)
			},
		},
		{
			name: "Circuit breaker is open",

			msg: upsert,
			setupMocks: func() *Handler {
				brk := NewMockbrk(ctrl)
				brk.EXPECT().Allow().Return(errors.New("circuit open"))

				return NewHandler(nil, brk, rPolicy, l, m)
			},

			wantErr: ErrCircuitOpen,
		},
		{
			name: "Malformed json is acknowledged",

			msg: kafkago.Message{Value: []byte("{not json")},
			setupMocks: func() *Handler {
				return NewHandler(nil, NewMockbrk(ctrl), rPolicy, l, m)
			},
		},
		{
			name: "Missing product id is acknowledged",

			msg: message(t, map[string]string{"type": "upsert"}),
			setupMocks: func() *Handler {
				return NewHandler(nil, NewMockbrk(ctrl), rPolicy, l, m)
			},
		},
		{
			name: "Unknown event type is acknowledged",

			msg: message(t, domain.ProductEvent{ProductID: id, Type: "archive"}),
			setupMocks: func() *Handler {
				return NewHandler(nil, NewMockbrk(ctrl), rPolicy, l, m)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := tc.setupMocks()
			err := h.Handle(ctx, tc.msg)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestHandleRecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	service := NewMockService(ctrl)
	brk := NewMockbrk(ctrl)
	brk.EXPECT().Allow().Return(nil)
	service.EXPECT().Evict(id)
	brk.EXPECT().Success()

	metrics := observability.NewInmem(4)
	h := NewHandler(service, brk, config.Retry{Attempts: 1}, zap.NewNop(), metrics)

	require.NoError(t, h.Handle(context.Background(), message(t, domain.ProductEvent{ProductID: id, Type: domain.ProductDeleted})))
	require.Equal(t, 1, metrics.Count("kafka"))
}
