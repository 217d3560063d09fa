package domain

import (
	"github.com/dohigg1/advisory-hub/internal/domain/assessments"
	"github.com/dohigg1/advisory-hub/internal/domain/audit"
	"github.com/dohigg1/advisory-hub/internal/domain/flags"
	"github.com/dohigg1/advisory-hub/internal/domain/leads"
	"github.com/dohigg1/advisory-hub/internal/domain/orgs"
	"github.com/dohigg1/advisory-hub/internal/domain/webhooks"
)

const (
	LeadStatusStarted   = leads.StatusStarted
	LeadStatusCompleted = leads.StatusCompleted

	AssessmentStatusDraft     = assessments.StatusDraft
	AssessmentStatusPublished = assessments.StatusPublished

	FlagClientPortal   = flags.ClientPortal
	FlagAINarrative    = flags.AINarrative
	FlagRealtimeEvents = flags.RealtimeEvents

	AuditActionLeadsExport = audit.ActionLeadsExport
)

type Organization = orgs.Organization
type TeamMember = orgs.TeamMember

type Assessment = assessments.Assessment
type AssessmentSettings = assessments.Settings
type LeadFieldSetting = assessments.LeadFieldSetting
type Category = assessments.Category
type Question = assessments.Question
type ScoreTier = assessments.ScoreTier

type Lead = leads.Lead
type Answer = leads.Answer
type Score = leads.Score
type CategoryScore = leads.CategoryScore

type FeatureFlag = flags.FeatureFlag
type FeatureFlagOverride = flags.FeatureFlagOverride

type WebhookDeliveryLog = webhooks.DeliveryLog

type AuditLog = audit.Log

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&Organization{},
		&TeamMember{},
		&Assessment{},
		&Category{},
		&Question{},
		&ScoreTier{},
		&Lead{},
		&Answer{},
		&Score{},
		&FeatureFlag{},
		&FeatureFlagOverride{},
		&WebhookDeliveryLog{},
		&AuditLog{},
	}
}
