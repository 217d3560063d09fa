package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/dohigg1/advisory-hub/internal/http/handlers"
	httpMW "github.com/dohigg1/advisory-hub/internal/http/middleware"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	LeadHandler        *httpH.LeadHandler
	EntitlementHandler *httpH.EntitlementHandler
	FlagHandler        *httpH.FlagHandler
	AssessmentHandler  *httpH.AssessmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "advisory-hub"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Respondent-facing (public)
	public := api.Group("/public")
	{
		if cfg.LeadHandler != nil {
			public.POST("/assessments/:id/leads", cfg.LeadHandler.Capture)
			public.POST("/leads/:id/complete", cfg.LeadHandler.Complete)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Entitlements
		if cfg.EntitlementHandler != nil {
			protected.GET("/entitlements", cfg.EntitlementHandler.List)
			protected.GET("/entitlements/:resource", cfg.EntitlementHandler.Get)
		}

		// Feature flags
		if cfg.FlagHandler != nil {
			protected.GET("/flags/:name", cfg.FlagHandler.Get)
		}

		// Assessments
		if cfg.AssessmentHandler != nil {
			protected.POST("/assessments/:id/notify", cfg.AssessmentHandler.Notify)
			protected.GET("/assessments/:id/leads/export", cfg.AssessmentHandler.ExportLeads)
		}
	}

	return r
}
