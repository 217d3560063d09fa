package repos

import (
	"github.com/dohigg1/advisory-hub/internal/data/repos/assessments"
	"github.com/dohigg1/advisory-hub/internal/data/repos/audit"
	"github.com/dohigg1/advisory-hub/internal/data/repos/flags"
	"github.com/dohigg1/advisory-hub/internal/data/repos/leads"
	"github.com/dohigg1/advisory-hub/internal/data/repos/orgs"
	"github.com/dohigg1/advisory-hub/internal/data/repos/webhooks"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"gorm.io/gorm"
)

type OrganizationRepo = orgs.OrganizationRepo
type TeamMemberRepo = orgs.TeamMemberRepo

type AssessmentRepo = assessments.AssessmentRepo
type AssessmentConfigRepo = assessments.ConfigRepo

type LeadRepo = leads.LeadRepo
type AnswerRepo = leads.AnswerRepo
type ScoreRepo = leads.ScoreRepo

type FeatureFlagRepo = flags.FeatureFlagRepo

type WebhookDeliveryLogRepo = webhooks.DeliveryLogRepo

type AuditLogRepo = audit.AuditLogRepo

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return orgs.NewOrganizationRepo(db, baseLog)
}
func NewTeamMemberRepo(db *gorm.DB, baseLog *logger.Logger) TeamMemberRepo {
	return orgs.NewTeamMemberRepo(db, baseLog)
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return assessments.NewAssessmentRepo(db, baseLog)
}
func NewAssessmentConfigRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentConfigRepo {
	return assessments.NewConfigRepo(db, baseLog)
}

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo { return leads.NewLeadRepo(db, baseLog) }
func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return leads.NewAnswerRepo(db, baseLog)
}
func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return leads.NewScoreRepo(db, baseLog)
}

func NewFeatureFlagRepo(db *gorm.DB, baseLog *logger.Logger) FeatureFlagRepo {
	return flags.NewFeatureFlagRepo(db, baseLog)
}

func NewWebhookDeliveryLogRepo(db *gorm.DB, baseLog *logger.Logger) WebhookDeliveryLogRepo {
	return webhooks.NewDeliveryLogRepo(db, baseLog)
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return audit.NewAuditLogRepo(db, baseLog)
}
