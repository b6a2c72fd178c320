package rest

import (
	"log/slog"
	"net/http"
)

// NewRouter mounts the allocation, health and metrics routes behind request
// logging. metrics may be nil.
func NewRouter(allocations *AllocationHandler, health *HealthHandler, metrics http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	allocations.RegisterRoutes(mux)
	health.RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return LoggingMiddleware(logger)(mux)
}
