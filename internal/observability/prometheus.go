package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jewelry_pricing"

// Prometheus exports Metrics on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	lookups         *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	kafkaMessages   *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
	goldPrice       prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "product_lookup_duration_ms",
			Help:      "Product lookup duration in milliseconds by source.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"source"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request duration in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 14),
		}, []string{"method", "route"}),
		kafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Product events processed.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fetch_total",
			Help:      "Gold price fetch attempts by source and result.",
		}, []string{"source", "result"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_fetch_duration_ms",
			Help:      "Gold price fetch duration in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		}, []string{"source"}),
		goldPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gold_price_per_ounce",
			Help:      "Gold price currently served to readers.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_cache_hits_total",
			Help:      "Product cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_cache_misses_total",
			Help:      "Product cache misses.",
		}),
	}

	p.registry.MustRegister(
		p.lookups,
		p.httpRequests,
		p.httpDuration,
		p.kafkaMessages,
		p.refreshes,
		p.refreshDuration,
		p.goldPrice,
		p.cacheHits,
		p.cacheMisses,
	)
	return p
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) ObserveLookup(source string, cacheMs, dbMs float64) {
	p.lookups.WithLabelValues(source).Observe(cacheMs + dbMs)
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, durMs float64) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(durMs)
}

func (p *Prometheus) ObserveKafka(_ float64, ok bool) {
	p.kafkaMessages.WithLabelValues(result(ok)).Inc()
}

func (p *Prometheus) ObserveRefresh(source string, ok bool, durMs float64) {
	p.refreshes.WithLabelValues(source, result(ok)).Inc()
	p.refreshDuration.WithLabelValues(source).Observe(durMs)
}

func (p *Prometheus) SetGoldPrice(price float64) { p.goldPrice.Set(price) }
func (p *Prometheus) IncCacheHit()               { p.cacheHits.Inc() }
func (p *Prometheus) IncCacheMiss()              { p.cacheMisses.Inc() }

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
