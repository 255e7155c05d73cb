package observability

type Metrics interface {
	ObserveLookup(source string, cacheMs, dbMs float64)
	ObserveHTTP(method, route string, status int, durMs float64)
	ObserveKafka(processMs float64, ok bool)
	ObserveRefresh(source string, ok bool, durMs float64)
	SetGoldPrice(price float64)
	IncCacheHit()
	IncCacheMiss()
}

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveLookup(string, float64, float64)   {}
func (Noop) ObserveHTTP(string, string, int, float64) {}
func (Noop) ObserveKafka(float64, bool)               {}
func (Noop) ObserveRefresh(string, bool, float64)     {}
func (Noop) SetGoldPrice(float64)                     {}
func (Noop) IncCacheHit()                             {}
func (Noop) IncCacheMiss()                            {}
