// Package middleware provides HTTP middleware for the authuser API.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: structured access log per request
//   - Recovery: converts panics into a 500 Problem Details response
//   - CORS: origin allow-list and preflight handling
//   - Compress: gzip response bodies
//   - RateLimit: token bucket per client IP
//   - Metrics: Prometheus request counters and latency histograms
//
// # Ordering
//
// Chain applies middlewares outermost first. Metrics.Middleware must wrap
// the ServeMux directly so it can label requests by matched route:
//
//	metrics := middleware.NewMetrics(nil)
//	h := middleware.Chain(metrics.Middleware(mux),
//	    middleware.RequestID,
//	    middleware.Logger,
//	    middleware.Recovery,
//	)
package middleware
