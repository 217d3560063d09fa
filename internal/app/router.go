package app

import (
	"github.com/dohigg1/advisory-hub/internal/http"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:                log,
		ServiceName:        cfg.Otel.ServiceName,
		AllowedOrigins:     cfg.AllowedOrigins,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		LeadHandler:        handlers.Lead,
		EntitlementHandler: handlers.Entitlement,
		FlagHandler:        handlers.Flag,
		AssessmentHandler:  handlers.Assessment,
	})
}
