package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrNoPrice = errors.New("no usable price in payload")

// Extractor pulls a price per troy ounce out of one known payload shape.
// ok is false when the shape does not match or the value is unusable.
type Extractor func(payload map[string]any) (price float64, ok bool)

// Extractors are tried in order; the first usable value wins.
var Extractors = []Extractor{
	field("price"),
	field("gold"),
	nested("rates", "USDXAU"),
	inverse("rates", "XAU"),
}

// Parse decodes body and runs Extractors over it.
func Parse(body []byte) (float64, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoPrice, err)
	}
	for _, extract := range Extractors {
		if p, ok := extract(payload); ok {
			return p, nil
		}
	}
	return 0, ErrNoPrice
}

func field(name string) Extractor {
	return func(payload map[string]any) (float64, bool) {
		return positive(payload[name])
	}
}

func nested(outer, inner string) Extractor {
	return func(payload map[string]any) (float64, bool) {
		m, ok := payload[outer].(map[string]any)
		if !ok {
			return 0, false
		}
		return positive(m[inner])
	}
}

// inverse reads a rate quoted as ounces per currency unit.
func inverse(outer, inner string) Extractor {
	direct := nested(outer, inner)
	return func(payload map[string]any) (float64, bool) {
		rate, ok := direct(payload)
		if !ok {
			return 0, false
		}
		return usable(1 / rate)
	}
}

func positive(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return usable(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return usable(f)
	default:
		return 0, false
	}
}

func usable(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}
