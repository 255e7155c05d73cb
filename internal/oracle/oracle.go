// Package oracle keeps the gold price that every product price is derived
// from. Readers never wait on the network: they load an immutable snapshot
// that a single background refresh replaces as a whole.
package oracle

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TemirB/jewelry-pricing/internal/config"
	"github.com/TemirB/jewelry-pricing/internal/domain"
	"github.com/TemirB/jewelry-pricing/internal/observability"
	"github.com/TemirB/jewelry-pricing/internal/pkg/circuit"
)

//go:generate mockgen -source internal/oracle/oracle.go -destination=internal/oracle/oracle_mock_test.go -package=oracle

type RefreshResult int

const (
	RefreshUpdated  RefreshResult = iota // cache replaced
	RefreshSkipped                       // another refresh in flight
	RefreshDisabled                      // no primary source configured
	RefreshFailed                        // every source failed, cache kept
)

func (r RefreshResult) String() string {
	switch r {
	case RefreshUpdated:
		return "updated"
	case RefreshSkipped:
		return "skipped"
	case RefreshDisabled:
		return "disabled"
	default:
		return "failed"
	}
}

// Publisher receives every snapshot produced by a successful refresh.
type Publisher interface {
	Publish(ctx context.Context, snap domain.PriceSnapshot) error
}

// SnapshotStore returns the last snapshot any replica published.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.PriceSnapshot, error)
}

type breaker interface {
	Allow() error
	Success()
	Failure()
}

type upstream struct {
	src     Source
	timeout time.Duration
	brk     breaker
}

type Oracle struct {
	primary     *upstream
	secondaries []*upstream

	interval       time.Duration
	publishTimeout time.Duration
	publishers     []Publisher
	breakers       *config.Breaker

	snap     atomic.Pointer[domain.PriceSnapshot]
	inFlight atomic.Bool

	now     func() time.Time
	logger  *zap.Logger
	metrics observability.Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Oracle)

func WithPrimary(src Source, timeout time.Duration) Option {
	return func(o *Oracle) { o.primary = &upstream{src: src, timeout: timeout} }
}

func WithSecondary(src Source, timeout time.Duration) Option {
	return func(o *Oracle) { o.secondaries = append(o.secondaries, &upstream{src: src, timeout: timeout}) }
}

func WithInterval(d time.Duration) Option {
	return func(o *Oracle) { o.interval = d }
}

func WithPublisher(p Publisher) Option {
	return func(o *Oracle) { o.publishers = append(o.publishers, p) }
}

func WithPublishTimeout(d time.Duration) Option {
	return func(o *Oracle) { o.publishTimeout = d }
}

// WithBreakers gives every source its own circuit breaker. A source with an
// open breaker is skipped like a failed one. The open timeout is capped at
// half the refresh interval so a breaker opened on one tick is half-open
// again by the next and the primary is always retried on schedule.
func WithBreakers(cfg config.Breaker) Option {
	return func(o *Oracle) { o.breakers = &cfg }
}

func WithMetrics(m observability.Metrics) Option {
	return func(o *Oracle) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *Oracle) { o.now = now }
}

// New returns an Oracle serving fallback until the first successful refresh.
func New(fallback float64, logger *zap.Logger, opts ...Option) *Oracle {
	o := &Oracle{
		interval:       10 * time.Minute,
		publishTimeout: 3 * time.Second,
		now:            time.Now,
		logger:         logger,
		metrics:        observability.Noop{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.breakers != nil {
		cfg := *o.breakers
		if limit := o.interval / 2; cfg.OpenTimeout <= 0 || cfg.OpenTimeout > limit {
			cfg.OpenTimeout = limit
		}
		for _, up := range o.chain() {
			up.brk = circuit.FromConfig(cfg)
		}
	}
	o.snap.Store(&domain.PriceSnapshot{Price: fallback})
	o.metrics.SetGoldPrice(fallback)
	return o
}

// NewFromConfig wires HTTP sources for every configured upstream.
func NewFromConfig(cfg config.Oracle, client *http.Client, logger *zap.Logger, metrics observability.Metrics, publishers ...Publisher) *Oracle {
	opts := []Option{
		WithInterval(cfg.Interval),
		WithPublishTimeout(cfg.PublishTimeout),
		WithBreakers(cfg.Breaker),
		WithMetrics(metrics),
	}
	if cfg.Primary != nil {
		opts = append(opts, WithPrimary(NewHTTPSource(*cfg.Primary, cfg.KeyHeader, client), cfg.PrimaryTimeout))
	}
	for _, s := range cfg.Secondaries {
		opts = append(opts, WithSecondary(NewHTTPSource(s, cfg.KeyHeader, client), cfg.SecondaryTimeout))
	}
	for _, p := range publishers {
		opts = append(opts, WithPublisher(p))
	}
	return New(cfg.Fallback, logger, opts...)
}

// CurrentPrice never blocks and never fails.
func (o *Oracle) CurrentPrice() float64 {
	return o.snap.Load().Price
}

// LastUpdateTime is nil while the fallback price is being served.
func (o *Oracle) LastUpdateTime() *time.Time {
	return o.Snapshot().UpdatedAt
}

// Snapshot returns price and update time from the same refresh.
func (o *Oracle) Snapshot() domain.PriceSnapshot {
	s := *o.snap.Load()
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		s.UpdatedAt = &t
	}
	return s
}

// Refresh runs the fetch-and-update protocol once. It never returns an
// error: failures are logged and the cached snapshot keeps serving.
// Publishing happens after the in-flight flag is released, so slow
// publishers never stretch the fetch window or cause ticks to be dropped.
func (o *Oracle) Refresh(ctx context.Context) RefreshResult {
	snap, res := o.refresh(ctx)
	if res == RefreshUpdated {
		o.publish(ctx, snap)
	}
	return res
}

func (o *Oracle) refresh(ctx context.Context) (*domain.PriceSnapshot, RefreshResult) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, RefreshSkipped
	}
	defer o.inFlight.Store(false)

	if o.primary == nil {
		o.logger.Info("no primary gold price source configured, keeping cached price",
			zap.Float64("gold_price", o.CurrentPrice()),
		)
		return nil, RefreshDisabled
	}

	for _, up := range o.chain() {
		price, err := o.fetch(ctx, up)
		if err != nil {
			o.logger.Warn("gold price source failed",
				zap.String("source", up.src.Name()),
				zap.Duration("timeout", up.timeout),
				zap.Error(err),
			)
			continue
		}

		snap := o.replace(price, up.src.Name())
		o.logger.Info("gold price refreshed",
			zap.String("source", snap.Source),
			zap.Float64("gold_price", snap.Price),
		)
		return snap, RefreshUpdated
	}

	prev := o.Snapshot()
	fields := []zap.Field{
		zap.Float64("gold_price", prev.Price),
		zap.Int("sources", 1+len(o.secondaries)),
	}
	if prev.UpdatedAt != nil {
		fields = append(fields, zap.Time("last_update", *prev.UpdatedAt))
	}
	o.logger.Warn("all gold price sources failed, serving cached price", fields...)
	return nil, RefreshFailed
}

// Warm seeds the cache from a snapshot another replica stored, as long as
// nothing fresher has been fetched locally.
func (o *Oracle) Warm(ctx context.Context, store SnapshotStore) {
	stored, err := store.Load(ctx)
	if err != nil {
		o.logger.Info("no stored gold price to warm from", zap.Error(err))
		return
	}
	if _, ok := usable(stored.Price); !ok || stored.UpdatedAt == nil {
		o.logger.Warn("ignoring invalid stored gold price", zap.Float64("gold_price", stored.Price))
		return
	}

	for {
		cur := o.snap.Load()
		if cur.UpdatedAt != nil && !cur.UpdatedAt.Before(*stored.UpdatedAt) {
			return
		}
		t := *stored.UpdatedAt
		next := &domain.PriceSnapshot{Price: stored.Price, UpdatedAt: &t, Source: stored.Source}
		if o.snap.CompareAndSwap(cur, next) {
			o.metrics.SetGoldPrice(next.Price)
			o.logger.Info("gold price warmed from store",
				zap.Float64("gold_price", next.Price),
				zap.Time("last_update", t),
			)
			return
		}
	}
}

// Start refreshes once right away and then on every interval tick. A tick
// that fires while a refresh is still running is dropped.
func (o *Oracle) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		o.spawn(ctx)

		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.spawn(ctx)
			}
		}
	}()
}

// Stop cancels in-flight fetches and waits for the refresh loop to exit.
func (o *Oracle) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

func (o *Oracle) spawn(ctx context.Context) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if res := o.Refresh(ctx); res == RefreshSkipped {
			o.logger.Warn("previous gold price refresh still running, tick dropped")
		}
	}()
}

func (o *Oracle) chain() []*upstream {
	out := make([]*upstream, 0, 1+len(o.secondaries))
	if o.primary != nil {
		out = append(out, o.primary)
	}
	return append(out, o.secondaries...)
}

func (o *Oracle) fetch(ctx context.Context, up *upstream) (float64, error) {
	if up.brk != nil {
		if err := up.brk.Allow(); err != nil {
			return 0, err
		}
	}

	fctx, cancel := context.WithTimeout(ctx, up.timeout)
	defer cancel()

	start := time.Now()
	price, err := up.src.Fetch(fctx)
	if err == nil {
		if _, ok := usable(price); !ok {
			err = fmt.Errorf("%w: got %v", ErrNoPrice, price)
		}
	}
	o.metrics.ObserveRefresh(up.src.Name(), err == nil, float64(time.Since(start).Microseconds())/1000.0)

	if up.brk != nil {
		if err != nil {
			up.brk.Failure()
		} else {
			up.brk.Success()
		}
	}
	return price, err
}

func (o *Oracle) replace(price float64, source string) *domain.PriceSnapshot {
	now := o.now().UTC()
	snap := &domain.PriceSnapshot{Price: price, UpdatedAt: &now, Source: source}
	o.snap.Store(snap)
	o.metrics.SetGoldPrice(price)
	return snap
}

// publish stops as soon as a newer snapshot replaces snap; the refresh that
// produced it publishes that one instead.
func (o *Oracle) publish(ctx context.Context, snap *domain.PriceSnapshot) {
	for _, p := range o.publishers {
		if o.snap.Load() != snap {
			return
		}
		pctx, cancel := context.WithTimeout(ctx, o.publishTimeout)
		if err := p.Publish(pctx, *snap); err != nil {
			o.logger.Warn("publish gold price failed", zap.Error(err))
		}
		cancel()
	}
}
