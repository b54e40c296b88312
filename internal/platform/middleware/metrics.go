// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests by method, route pattern and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of requests rejected by the per-IP rate limiter.",
	})
)

/*
Metrics records one latency observation per request.

The route label is the chi pattern (for example
/api/v1/avatar/sessions/{id}/fields), so session IDs never become label
values. Unmatched paths are reported as "unmatched".
*/
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestDuration.
			WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).
			Observe(time.Since(started).Seconds())
	})
}
