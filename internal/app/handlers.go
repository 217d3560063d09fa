package app

import (
	httpH "github.com/dohigg1/advisory-hub/internal/http/handlers"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Lead        *httpH.LeadHandler
	Entitlement *httpH.EntitlementHandler
	Flag        *httpH.FlagHandler
	Assessment  *httpH.AssessmentHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Lead:        httpH.NewLeadHandler(log, services.LeadCapture, services.Scoring),
		Entitlement: httpH.NewEntitlementHandler(services.Entitlements),
		Flag:        httpH.NewFlagHandler(services.Flags),
		Assessment:  httpH.NewAssessmentHandler(log, services.Notifications, services.Export),
	}
}
