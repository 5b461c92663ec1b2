package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/scry-review/internal/api/shared"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/redact"
	"github.com/phrazzld/scry-review/internal/review"
)

// Pinger is the part of *sql.DB the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

// HealthHandler serves GET /health.
type HealthHandler struct {
	db       Pinger
	registry *review.Registry
	logger   *slog.Logger
}

// NewHealthHandler creates a HealthHandler. registry may be nil.
func NewHealthHandler(db Pinger, registry *review.Registry, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:       db,
		registry: registry,
		logger:   logger.With(slog.String("component", "health_handler")),
	}
}

// Health reports 200 when the database answers a ping and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	if h.registry != nil {
		resp.Sessions = h.registry.Len()
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("health check failed",
				slog.String("error", redact.Error(err)))
			resp.Status = "unavailable"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	shared.RespondWithJSON(w, r, status, resp)
}
