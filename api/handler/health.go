package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/digiplanner/backend/internal/infrastructure/monitor"
	"github.com/digiplanner/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /api/health [get]
// A missing or offline upstream does not make the service unhealthy: the
// local store keeps every operation working, so the endpoint reports 200
// with the degraded details in the payload.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()

	mode := "local"
	if status.RemoteConfigured {
		mode = "gateway"
	}

	payload := map[string]interface{}{
		"status":    "healthy",
		"mode":      mode,
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"remote": map[string]interface{}{
				"configured": status.RemoteConfigured,
				"online":     status.Remote,
			},
			"outbox": map[string]interface{}{
				"online": status.Outbox,
				"size":   status.OutboxSize,
			},
		},
		"last_check": status.LastCheck,
	}

	if status.RemoteConfigured && !status.Remote {
		payload["status"] = "degraded"
	}

	h.respondSuccess(ctx, http.StatusOK, payload)
}
