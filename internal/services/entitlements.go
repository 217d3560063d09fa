package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/plans"
)

type EntitlementService interface {
	Check(dbc dbctx.Context, orgID uuid.UUID, resource plans.Resource) (*plans.Entitlement, error)
	Usage(dbc dbctx.Context, orgID uuid.UUID) ([]plans.Entitlement, error)
}

type entitlementService struct {
	log         *logger.Logger
	table       plans.Table
	orgs        repos.OrganizationRepo
	assessments repos.AssessmentRepo
	members     repos.TeamMemberRepo
	leads       repos.LeadRepo
	now         func() time.Time
}

func NewEntitlementService(
	log *logger.Logger,
	table plans.Table,
	orgs repos.OrganizationRepo,
	assessments repos.AssessmentRepo,
	members repos.TeamMemberRepo,
	leads repos.LeadRepo,
	now func() time.Time,
) EntitlementService {
	if table == nil {
		table = plans.DefaultTable()
	}
	if now == nil {
		now = time.Now
	}
	return &entitlementService{
		log:         log.With("service", "EntitlementService"),
		table:       table,
		orgs:        orgs,
		assessments: assessments,
		members:     members,
		leads:       leads,
		now:         now,
	}
}

// MonthStart is 00:00 UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *entitlementService) Check(dbc dbctx.Context, orgID uuid.UUID, resource plans.Resource) (*plans.Entitlement, error) {
	if _, ok := plans.ParseResource(string(resource)); !ok {
		return nil, fmt.Errorf("%w: unknown resource %q", apperr.ErrInvalidArgument, resource)
	}
	tier, err := s.tierFor(dbc, orgID)
	if err != nil {
		return nil, err
	}
	return s.check(dbc, orgID, tier, resource)
}

func (s *entitlementService) Usage(dbc dbctx.Context, orgID uuid.UUID) ([]plans.Entitlement, error) {
	tier, err := s.tierFor(dbc, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]plans.Entitlement, 0, len(plans.Resources))
	for _, r := range plans.Resources {
		e, err := s.check(dbc, orgID, tier, r)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

func (s *entitlementService) check(dbc dbctx.Context, orgID uuid.UUID, tier plans.Tier, resource plans.Resource) (*plans.Entitlement, error) {
	limit := s.table.Limit(tier, resource)
	if limit == plans.Unlimited {
		e := plans.Evaluate(tier, resource, limit, 0)
		return &e, nil
	}
	current, err := s.count(dbc, orgID, resource)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", resource, err)
	}
	e := plans.Evaluate(tier, resource, limit, int(current))
	if !e.Allowed {
		s.log.Info("entitlement denied",
			"org_id", orgID,
			"resource", resource,
			"current", current,
			"limit", limit,
			"tier", tier,
		)
	}
	return &e, nil
}

func (s *entitlementService) count(dbc dbctx.Context, orgID uuid.UUID, resource plans.Resource) (int64, error) {
	switch resource {
	case plans.ResourceAssessments:
		return s.assessments.CountByOrg(dbc, orgID)
	case plans.ResourceTeamMembers:
		return s.members.CountByOrg(dbc, orgID)
	case plans.ResourceResponsesPerMonth:
		return s.leads.CountCompletedSince(dbc, orgID, MonthStart(s.now()))
	default:
		return 0, fmt.Errorf("%w: unknown resource %q", apperr.ErrInvalidArgument, resource)
	}
}

// tierFor resolves the org's plan. A missing org resolves to the free tier.
func (s *entitlementService) tierFor(dbc dbctx.Context, orgID uuid.UUID) (plans.Tier, error) {
	org, err := s.orgs.GetByID(dbc, orgID)
	if err != nil {
		return "", fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		s.log.Warn("organization not found, using free tier", "org_id", orgID)
		return plans.TierFree, nil
	}
	return plans.ParseTier(org.PlanTier), nil
}
