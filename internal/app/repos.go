package app

import (
	"gorm.io/gorm"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type Repos struct {
	Organization     repos.OrganizationRepo
	TeamMember       repos.TeamMemberRepo
	Assessment       repos.AssessmentRepo
	AssessmentConfig repos.AssessmentConfigRepo
	Lead             repos.LeadRepo
	Answer           repos.AnswerRepo
	Score            repos.ScoreRepo
	FeatureFlag      repos.FeatureFlagRepo
	WebhookDelivery  repos.WebhookDeliveryLogRepo
	AuditLog         repos.AuditLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Organization:     repos.NewOrganizationRepo(db, log),
		TeamMember:       repos.NewTeamMemberRepo(db, log),
		Assessment:       repos.NewAssessmentRepo(db, log),
		AssessmentConfig: repos.NewAssessmentConfigRepo(db, log),
		Lead:             repos.NewLeadRepo(db, log),
		Answer:           repos.NewAnswerRepo(db, log),
		Score:            repos.NewScoreRepo(db, log),
		FeatureFlag:      repos.NewFeatureFlagRepo(db, log),
		WebhookDelivery:  repos.NewWebhookDeliveryLogRepo(db, log),
		AuditLog:         repos.NewAuditLogRepo(db, log),
	}
}
