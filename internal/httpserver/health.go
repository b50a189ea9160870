package httpserver

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/liamashdown/holderscope/internal/metrics"
)

// HealthChecker provides liveness and readiness checks
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
}

// NewHealthChecker creates a new HealthChecker, not ready until SetReady
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the server as ready to serve traffic
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse is the body of /health and /ready
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Message string `json:"message,omitempty"`
}

// Health always answers 200 while the process runs
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.RecordHealthCheck(true)
		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

// Ready answers 503 until SetReady(true)
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			metrics.RecordHealthCheck(false)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "server is starting",
			})
			return
		}

		metrics.RecordHealthCheck(true)
		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}
