package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector collects request metrics.
type MetricsCollector struct {
	requestCount *atomic.Int64
	errorCount   *atomic.Int64
	rateLimited  *atomic.Int64
}

// NewMetricsCollector creates a new metrics collector. Any counter may be
// nil.
func NewMetricsCollector(requestCount, errorCount, rateLimited *atomic.Int64) *MetricsCollector {
	if requestCount == nil {
		requestCount = new(atomic.Int64)
	}
	if errorCount == nil {
		errorCount = new(atomic.Int64)
	}
	if rateLimited == nil {
		rateLimited = new(atomic.Int64)
	}
	return &MetricsCollector{
		requestCount: requestCount,
		errorCount:   errorCount,
		rateLimited:  rateLimited,
	}
}

// Middleware returns middleware that counts requests and errors.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requestCount.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		// 4xx and 5xx
		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}
		if rw.statusCode == http.StatusTooManyRequests {
			mc.rateLimited.Add(1)
		}
	})
}
