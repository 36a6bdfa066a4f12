package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"shouldcost/logger"
	"shouldcost/services"
)

// HealthChecker probes the pricing API.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthReport is the /healthz body.
type HealthReport struct {
	Status     string `json:"status"`
	PricingAPI string `json:"pricing_api"`
	Sessions   int    `json:"sessions"`
	Error      string `json:"error,omitempty"`
}

// HandleHealth reports liveness of this server and reachability of the
// pricing API. An unreachable API answers 503.
func HandleHealth(checker HealthChecker, registry *services.SessionRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctx, cancel := context.WithTimeout(e.Request.Context(), 5*time.Second)
		defer cancel()

		report := HealthReport{Status: "healthy", PricingAPI: "healthy"}
		if registry != nil {
			report.Sessions = registry.Len()
		}

		if err := checker.Health(ctx); err != nil {
			logger.Warn(e.Request.Context(), "Pricing API health check failed", zap.Error(err))
			report.Status = "degraded"
			report.PricingAPI = "unreachable"
			report.Error = services.DisplayMessage(err)
			return e.JSON(http.StatusServiceUnavailable, report)
		}
		return e.JSON(http.StatusOK, report)
	}
}
