package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dohigg1/advisory-hub/internal/data/db"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/plans"
	"github.com/dohigg1/advisory-hub/internal/services"
)

type Services struct {
	Entitlements  services.EntitlementService
	Flags         services.FeatureFlagService
	Events        services.EventPublisher
	LeadCapture   services.LeadCaptureService
	Webhooks      services.WebhookDispatcher
	Scoring       services.ScoringService
	Notifications services.NotificationService
	Export        services.ExportService
}

func wireServices(theDB *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	table, err := plans.LoadTable(cfg.PlanLimitsFile)
	if err != nil {
		return Services{}, fmt.Errorf("load plan limits: %w", err)
	}

	entitlements := services.NewEntitlementService(
		log, table,
		reposet.Organization, reposet.Assessment, reposet.TeamMember, reposet.Lead,
		nil,
	)
	flags := services.NewFeatureFlagService(log, reposet.FeatureFlag)
	events := services.NewEventPublisher(log, clients.EventBus, flags)
	capture := services.NewLeadCaptureService(log, reposet.Assessment, reposet.Lead, entitlements, events)
	webhooks := services.NewWebhookDispatcher(log, reposet.WebhookDelivery, services.WebhookDispatcherOptions{
		Timeout: cfg.WebhookTimeout,
	})
	scoring := services.NewScoringService(log, services.ScoringDeps{
		Tx:          db.NewGormTxRunner(theDB),
		Orgs:        reposet.Organization,
		Assessments: reposet.Assessment,
		Config:      reposet.AssessmentConfig,
		Leads:       reposet.Lead,
		Answers:     reposet.Answer,
		Scores:      reposet.Score,
		Flags:       flags,
		Webhooks:    webhooks,
		Events:      events,
		Background:  true,
	})
	notifications := services.NewNotificationService(
		log, reposet.Assessment, reposet.Lead, flags, clients.Mailer, events,
		services.NotificationOptions{Concurrency: cfg.NotifyConcurrency, PortalBaseURL: cfg.PortalBaseURL},
	)
	export := services.NewExportService(log, reposet.Assessment, reposet.Lead, reposet.Score, reposet.AuditLog, clients.ExportStore, nil)

	return Services{
		Entitlements:  entitlements,
		Flags:         flags,
		Events:        events,
		LeadCapture:   capture,
		Webhooks:      webhooks,
		Scoring:       scoring,
		Notifications: notifications,
		Export:        export,
	}, nil
}
