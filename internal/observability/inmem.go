package observability

import "sync"

type observe struct {
	Kind   string
	Source string
	Method string
	Route  string
	Status int
	Dur    float64
	OK     bool
}

// Inmem keeps the last max observations and running totals. Used in tests
// and by the dev build when Prometheus is not wanted.
type Inmem struct {
	mu     sync.Mutex
	last   []*observe
	max    int
	price  float64
	totals struct {
		cacheHits, cacheMiss int
		refreshOK, refreshKO int
	}
}

func NewInmem(max int) *Inmem {
	return &Inmem{
		max: max,
	}
}

func (m *Inmem) push(v *observe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = append(m.last, v)
	if len(m.last) > m.max {
		m.last = m.last[len(m.last)-m.max:]
	}
}

func (m *Inmem) ObserveLookup(source string, cacheMs, dbMs float64) {
	m.push(&observe{Kind: "lookup", Source: source, Dur: cacheMs + dbMs})
}

func (m *Inmem) ObserveHTTP(method, route string, status int, durMs float64) {
	m.push(&observe{Kind: "http", Method: method, Route: route, Status: status, Dur: durMs})
}

func (m *Inmem) ObserveKafka(processMs float64, ok bool) {
	m.push(&observe{Kind: "kafka", Dur: processMs, OK: ok})
}

func (m *Inmem) ObserveRefresh(source string, ok bool, durMs float64) {
	m.push(&observe{Kind: "refresh", Source: source, Dur: durMs, OK: ok})
	m.mu.Lock()
	if ok {
		m.totals.refreshOK++
	} else {
		m.totals.refreshKO++
	}
	m.mu.Unlock()
}

func (m *Inmem) SetGoldPrice(price float64) {
	m.mu.Lock()
	m.price = price
	m.mu.Unlock()
}

func (m *Inmem) IncCacheHit() {
	m.mu.Lock()
	m.totals.cacheHits++
	m.mu.Unlock()
}

func (m *Inmem) IncCacheMiss() {
	m.mu.Lock()
	m.totals.cacheMiss++
	m.mu.Unlock()
}

// Refreshes returns successful and failed refresh attempt counts.
func (m *Inmem) Refreshes() (ok, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals.refreshOK, m.totals.refreshKO
}

func (m *Inmem) GoldPrice() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.price
}

// Count returns how many retained observations are of the given kind.
func (m *Inmem) Count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.last {
		if o.Kind == kind {
			n++
		}
	}
	return n
}
