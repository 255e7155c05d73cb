package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

func AppendServerTiming(w http.ResponseWriter, name string, durMs float64, desc string) {
	if durMs > 0 && desc != "" {
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.2f;desc=%q", name, durMs, desc))
		return
	}
	if durMs > 0 {
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.2f", name, durMs))
		return
	}
	if desc != "" {
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;desc=%q", name, desc))
	}
}

func SetIfPos(w http.ResponseWriter, key string, ms float64) {
	if ms > 0 {
		w.Header().Set(key, fmt.Sprintf("%.2f", ms))
	}
}

// SetPriceAge writes X-Price-Age in whole seconds since the last successful
// gold price refresh. A price that was never refreshed is marked "fallback".
func SetPriceAge(w http.ResponseWriter, updatedAt *time.Time, now time.Time) {
	if updatedAt == nil {
		w.Header().Set("X-Price-Age", "fallback")
		return
	}
	age := now.Sub(*updatedAt)
	if age < 0 {
		age = 0
	}
	w.Header().Set("X-Price-Age", strconv.FormatInt(int64(age/time.Second), 10))
}
