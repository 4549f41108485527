package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/edustack/trainer-portal/pkg/http"
)

const (
	ServiceName    = "trainer-portal-service"
	ServiceVersion = "3.0.0"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the process health and probe endpoints for load
// balancers and container orchestrators.
type HealthHandler struct {
	db        HealthChecker
	env       string
	startTime time.Time
}

func NewHealthHandler(db HealthChecker, env string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		env:       env,
		startTime: time.Now(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// Health handles GET /health — overall service info, 200 while the
// process runs.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"service":   ServiceName,
		"version":   ServiceVersion,
		"env":       h.env,
		"uptime_s":  time.Since(h.startTime).Round(100 * time.Millisecond).Seconds(),
		"timestamp": timestamp(),
	})
}

// Live handles GET /health/live — liveness probe, no DB check
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ALIVE",
		"service":   ServiceName,
		"timestamp": timestamp(),
	})
}

// Ready handles GET /health/ready — readiness probe; 503 when the
// database is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.db.HealthCheck(ctx) == nil

	status := "READY"
	dbStatus := "UP"
	httpStatus := http.StatusOK
	if !dbOK {
		status = "NOT_READY"
		dbStatus = "DOWN"
		httpStatus = http.StatusServiceUnavailable
	}

	pkghttp.WriteJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"service":   ServiceName,
		"checks":    map[string]string{"database": dbStatus},
		"timestamp": timestamp(),
	})
}
