package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	"github.com/dohigg1/advisory-hub/internal/data/dberr"
	"github.com/dohigg1/advisory-hub/internal/data/repos"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/domain/assessments"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/plans"
)

type CaptureOutcome string

const (
	OutcomeCreated          CaptureOutcome = "created"
	OutcomeResumed          CaptureOutcome = "resumed"
	OutcomeAlreadyCompleted CaptureOutcome = "already_completed"
	OutcomeValidationFailed CaptureOutcome = "validation_failed"
	OutcomeLimitReached     CaptureOutcome = "limit_reached"
)

const (
	FieldEmail   = "email"
	FieldConsent = "consent"
)

type CaptureRequest struct {
	AssessmentID uuid.UUID         `json:"-"`
	Email        string            `json:"email"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Phone        string            `json:"phone"`
	Company      string            `json:"company"`
	JobTitle     string            `json:"job_title"`
	ConsentGiven bool              `json:"consent_given"`
	UTM          map[string]string `json:"utm"`
}

func (r CaptureRequest) field(name string) string {
	switch name {
	case assessments.FieldFirstName:
		return r.FirstName
	case assessments.FieldLastName:
		return r.LastName
	case assessments.FieldPhone:
		return r.Phone
	case assessments.FieldCompany:
		return r.Company
	case assessments.FieldJobTitle:
		return r.JobTitle
	}
	return ""
}

// CaptureResult is a tagged variant; only the fields relevant to Outcome are set.
type CaptureResult struct {
	Outcome     CaptureOutcome     `json:"outcome"`
	LeadID      uuid.UUID          `json:"lead_id,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Field       string             `json:"field,omitempty"`
	Entitlement *plans.Entitlement `json:"entitlement,omitempty"`
}

func created(id uuid.UUID) CaptureResult { return CaptureResult{Outcome: OutcomeCreated, LeadID: id} }
func resumed(id uuid.UUID) CaptureResult { return CaptureResult{Outcome: OutcomeResumed, LeadID: id} }
func alreadyCompleted(id uuid.UUID) CaptureResult {
	return CaptureResult{Outcome: OutcomeAlreadyCompleted, LeadID: id}
}
func validationFailed(field, reason string) CaptureResult {
	return CaptureResult{Outcome: OutcomeValidationFailed, Field: field, Reason: reason}
}
func limitReached(e *plans.Entitlement) CaptureResult {
	return CaptureResult{Outcome: OutcomeLimitReached, Reason: "response limit reached", Entitlement: e}
}

type LeadCaptureService interface {
	Capture(dbc dbctx.Context, req CaptureRequest) (CaptureResult, error)
}

type leadCaptureService struct {
	log          *logger.Logger
	assessments  repos.AssessmentRepo
	leads        repos.LeadRepo
	entitlements EntitlementService
	events       EventPublisher
}

func NewLeadCaptureService(
	log *logger.Logger,
	assessmentRepo repos.AssessmentRepo,
	leadRepo repos.LeadRepo,
	entitlements EntitlementService,
	events EventPublisher,
) LeadCaptureService {
	if events == nil {
		events = nopPublisher{}
	}
	return &leadCaptureService{
		log:          log.With("service", "LeadCaptureService"),
		assessments:  assessmentRepo,
		leads:        leadRepo,
		entitlements: entitlements,
		events:       events,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (s *leadCaptureService) Capture(dbc dbctx.Context, req CaptureRequest) (CaptureResult, error) {
	a, err := s.assessments.GetByID(dbc, req.AssessmentID)
	if err != nil {
		return CaptureResult{}, dberr.Map("load assessment", err)
	}
	if a == nil || a.Status != types.AssessmentStatusPublished {
		return validationFailed("assessment_id", "assessment unavailable"), nil
	}
	settings, err := a.ParsedSettings()
	if err != nil {
		return CaptureResult{}, fmt.Errorf("parse assessment settings: %w", err)
	}

	email := NormalizeEmail(req.Email)
	if email == "" {
		return validationFailed(FieldEmail, "email is required"), nil
	}
	if !validEmail(email) {
		return validationFailed(FieldEmail, "email is invalid"), nil
	}
	for _, f := range settings.RequiredFields() {
		if strings.TrimSpace(req.field(f)) == "" {
			return validationFailed(f, f+" is required"), nil
		}
	}
	if settings.RequireConsent && !req.ConsentGiven {
		return validationFailed(FieldConsent, "consent is required"), nil
	}

	ent, err := s.entitlements.Check(dbc, a.OrgID, plans.ResourceResponsesPerMonth)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("check entitlement: %w", err)
	}
	if !ent.Allowed {
		return limitReached(ent), nil
	}

	if !settings.AllowRetakes {
		prior, err := s.leads.GetLatestCompletedByAssessmentEmail(dbc, a.ID, email)
		if err != nil {
			return CaptureResult{}, dberr.Map("load completed lead", err)
		}
		if prior != nil {
			return alreadyCompleted(prior.ID), nil
		}
	}

	lead := &types.Lead{
		ID:           uuid.New(),
		AssessmentID: a.ID,
		OrgID:        a.OrgID,
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Company:      strings.TrimSpace(req.Company),
		JobTitle:     strings.TrimSpace(req.JobTitle),
		ConsentGiven: req.ConsentGiven,
		Status:       types.LeadStatusStarted,
	}
	if len(req.UTM) > 0 {
		raw, err := json.Marshal(req.UTM)
		if err != nil {
			return CaptureResult{}, fmt.Errorf("encode utm: %w", err)
		}
		lead.UTM = datatypes.JSON(raw)
	}

	if err := s.leads.Create(dbc, lead); err != nil {
		if !dberr.IsUniqueViolation(err) {
			s.log.Error("lead insert failed", "assessment_id", a.ID, "error", err)
			return CaptureResult{}, fmt.Errorf("insert lead: %w", errors.Join(apperr.ErrRetryable, err))
		}
		existing, lookupErr := s.leads.GetLatestByAssessmentEmail(dbc, a.ID, email)
		if lookupErr != nil {
			return CaptureResult{}, fmt.Errorf("resume lead: %w", errors.Join(apperr.ErrRetryable, lookupErr))
		}
		if existing == nil {
			return CaptureResult{}, fmt.Errorf("resume lead: %w", errors.Join(apperr.ErrRetryable, err))
		}
		s.log.Info("lead capture resumed after conflict", "assessment_id", a.ID, "lead_id", existing.ID)
		return resumed(existing.ID), nil
	}

	s.events.Publish(dbc.Ctx, redis.Event{
		Type:     redis.EventLeadCaptured,
		OrgID:    a.OrgID,
		EntityID: lead.ID,
		Data:     map[string]any{"assessment_id": a.ID.String()},
	})
	return created(lead.ID), nil
}
