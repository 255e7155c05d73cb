// Command pricefeed serves a drifting gold quote for local runs of the
// pricing service. It can switch payload shape, fail, or stall on demand.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Shape string

const (
	ShapePrice   Shape = "price"
	ShapeGold    Shape = "gold"
	ShapeUSDXAU  Shape = "usdxau"
	ShapeXAU     Shape = "xau"
	ShapeStrings Shape = "string"
)

func (s Shape) valid() bool {
	switch s {
	case ShapePrice, ShapeGold, ShapeUSDXAU, ShapeXAU, ShapeStrings:
		return true
	}
	return false
}

type Mode struct {
	Shape Shape  `json:"shape"`
	Fail  bool   `json:"fail"`
	Stall string `json:"stall,omitempty"`
}

type Feed struct {
	mu    sync.Mutex
	price float64
	rnd   *rand.Rand
	drift float64

	mode   Mode
	stall  time.Duration
	token  string
	served atomic.Int64
	failed atomic.Int64

	logger *zap.Logger
}

func NewFeed(start, drift float64, token string, seed int64, logger *zap.Logger) *Feed {
	return &Feed{
		price:  start,
		drift:  drift,
		rnd:    rand.New(rand.NewSource(seed)),
		mode:   Mode{Shape: ShapePrice},
		token:  token,
		logger: logger,
	}
}

// next moves the price by at most drift percent and never below one dollar.
func (f *Feed) next() (float64, Mode, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	step := (f.rnd.Float64()*2 - 1) * f.drift / 100
	f.price = math.Max(1, f.price*(1+step))
	return math.Round(f.price*100) / 100, f.mode, f.stall
}

func (f *Feed) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/quote", f.quote)
	r.Get("/mode", f.getMode)
	r.Post("/mode", f.setMode)
	r.Get("/stats", f.stats)
	return r
}

func (f *Feed) quote(w http.ResponseWriter, r *http.Request) {
	if f.token != "" && r.Header.Get("x-access-token") != f.token {
		f.failed.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	price, mode, stall := f.next()
	if stall > 0 {
		select {
		case <-time.After(stall):
		case <-r.Context().Done():
			return
		}
	}
	if mode.Fail {
		f.failed.Add(1)
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
		return
	}

	f.served.Add(1)
	writeJSON(w, payload(mode.Shape, price))
}

func payload(shape Shape, price float64) any {
	switch shape {
	case ShapeGold:
		return map[string]any{"gold": price}
	case ShapeUSDXAU:
		return map[string]any{"rates": map[string]any{"USDXAU": price}}
	case ShapeXAU:
		return map[string]any{"rates": map[string]any{"XAU": 1 / price}}
	case ShapeStrings:
		return map[string]any{"price": strconv.FormatFloat(price, 'f', 2, 64)}
	default:
		return map[string]any{"price": price}
	}
}

func (f *Feed) getMode(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	mode := f.mode
	f.mu.Unlock()
	writeJSON(w, mode)
}

func (f *Feed) setMode(w http.ResponseWriter, r *http.Request) {
	var m Mode
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if m.Shape == "" {
		m.Shape = ShapePrice
	}
	if !m.Shape.valid() {
		http.Error(w, "unknown shape: "+string(m.Shape), http.StatusBadRequest)
		return
	}
	var stall time.Duration
	if m.Stall != "" {
		d, err := time.ParseDuration(m.Stall)
		if err != nil || d < 0 {
			http.Error(w, "invalid stall duration", http.StatusBadRequest)
			return
		}
		stall = d
	}

	f.mu.Lock()
	f.mode, f.stall = m, stall
	f.mu.Unlock()

	f.logger.Info("mode changed",
		zap.String("shape", string(m.Shape)),
		zap.Bool("fail", m.Fail),
		zap.Duration("stall", stall),
	)
	writeJSON(w, m)
}

func (f *Feed) stats(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	price := f.price
	f.mu.Unlock()
	writeJSON(w, map[string]any{
		"price":  math.Round(price*100) / 100,
		"served": f.served.Load(),
		"failed": f.failed.Load(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	addr := ":8090"
	if port := os.Getenv("PRICEFEED_PORT"); port != "" {
		addr = ":" + port
	}

	feed := NewFeed(
		envFloat("PRICEFEED_START", 2000),
		envFloat("PRICEFEED_DRIFT", 0.5),
		os.Getenv("PRICEFEED_TOKEN"),
		time.Now().UnixNano(),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           feed.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("price feed started",
		zap.String("addr", addr),
		zap.Strings("endpoints", []string{"GET /quote", "GET /mode", "POST /mode", "GET /stats"}),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("price feed stopped", zap.Error(err))
	}
}
