package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports whether the server accepts traffic. It turns
// unavailable once shutdown has begun.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	if s.draining.Load() {
		status = "draining"
		httpStatus = http.StatusServiceUnavailable
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks": map[string]any{
			"store": map[string]any{
				"transactions": s.store.Len(),
				"revision":     s.store.Revision(),
			},
			"rate_limiter": map[string]any{
				"active_clients": s.rateLimiter.ActiveClients(),
			},
		},
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	// Write metrics in Prometheus-like format
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.TotalErrors)
	metric("http_last_request_duration_microseconds", "gauge", "Duration of the most recent request", traceMetrics.LastDurationUs)

	metric("transactions", "gauge", "Transactions currently stored", s.store.Len())
	metric("store_revision", "gauge", "Store revision", s.store.Revision())
	metric("transactions_created_total", "counter", "Transactions created through the API", atomic.LoadInt64(&s.appMetrics.created))
	metric("transactions_updated_total", "counter", "Transactions updated through the API", atomic.LoadInt64(&s.appMetrics.updated))
	metric("transactions_deleted_total", "counter", "Transactions deleted through the API", atomic.LoadInt64(&s.appMetrics.deleted))

	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	metric("rate_limit_active_clients", "gauge", "Clients tracked by the rate limiter", rateLimitMetrics.ClientCount)
	metric("security_suspicious_requests_total", "counter", "Requests matching probe patterns", securityMetrics.SuspiciousRequests)
	metric("security_invalid_ip_total", "counter", "Requests with an unparseable client address", securityMetrics.InvalidIPAttempts)

	metric("uptime_seconds", "gauge", "Seconds since the server was created", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
