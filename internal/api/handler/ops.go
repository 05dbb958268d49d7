package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/stationwatch/stationwatch/internal/api/models"
	"github.com/stationwatch/stationwatch/internal/api/response"
	"github.com/stationwatch/stationwatch/internal/upstream"
)

// Pinger checks connectivity of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter exposes the recorded health of an upstream provider.
type HealthReporter interface {
	Health() upstream.Health
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	providers []HealthReporter
}

// NewOpsHandler creates a new OpsHandler. db and providers may be nil
// when the corresponding dependency is not configured.
func NewOpsHandler(version, buildTime string, db Pinger, providers ...HealthReporter) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
		providers: providers,
	}
}

// HealthCheck handles GET /health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /ready - readiness check including the
// database connection.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /api/admin/status - subsystem and upstream
// provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   now,
	}

	dbStatus := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			status.Status = models.HealthStatusFail
		}
	}
	status.Subsystems = append(status.Subsystems, dbStatus)

	for _, p := range h.providers {
		health := p.Health()
		ps := models.ProviderStatus{
			Provider:     health.Provider,
			Status:       models.HealthStatusOK,
			CircuitState: health.CircuitState.String(),
		}
		if !health.LastSuccessAt.IsZero() {
			t := models.Timestamp(health.LastSuccessAt)
			ps.LastSuccessAt = &t
		}
		if !health.LastFailureAt.IsZero() {
			t := models.Timestamp(health.LastFailureAt)
			ps.LastFailureAt = &t
		}
		switch {
		case !health.Healthy():
			ps.Status = models.HealthStatusFail
			if status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		case health.Degraded():
			ps.Status = models.HealthStatusDegraded
			if status.Status == models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
		if health.LastError != "" {
			msg := health.LastError
			ps.Message = &msg
		}
		status.Providers = append(status.Providers, ps)
	}

	response.JSON(w, r, http.StatusOK, status)
}
