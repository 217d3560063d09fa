package services

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	"github.com/dohigg1/advisory-hub/internal/data/dberr"
	"github.com/dohigg1/advisory-hub/internal/data/repos"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/platform/sendgrid"
)

const (
	SkipPortalDisabled = "portal_disabled"
	SkipEmailDisabled  = "email_disabled"

	defaultNotifyConcurrency = 4
)

type FanoutResult struct {
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
}

type NotificationService interface {
	// NotifyAssessmentPublished emails every past respondent of orgID about a newly published assessment.
	NotifyAssessmentPublished(dbc dbctx.Context, orgID, assessmentID uuid.UUID) (*FanoutResult, error)
}

type NotificationOptions struct {
	Concurrency   int
	PortalBaseURL string
}

type notificationService struct {
	log         *logger.Logger
	assessments repos.AssessmentRepo
	leads       repos.LeadRepo
	flags       FeatureFlagService
	mailer      sendgrid.Client
	events      EventPublisher
	opts        NotificationOptions
}

// NewNotificationService accepts a nil mailer; sends are then skipped as email_disabled.
func NewNotificationService(
	log *logger.Logger,
	assessmentRepo repos.AssessmentRepo,
	leadRepo repos.LeadRepo,
	flags FeatureFlagService,
	mailer sendgrid.Client,
	events EventPublisher,
	opts NotificationOptions,
) NotificationService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultNotifyConcurrency
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &notificationService{
		log:         log.With("service", "NotificationService"),
		assessments: assessmentRepo,
		leads:       leadRepo,
		flags:       flags,
		mailer:      mailer,
		events:      events,
		opts:        opts,
	}
}

func (s *notificationService) NotifyAssessmentPublished(dbc dbctx.Context, orgID, assessmentID uuid.UUID) (*FanoutResult, error) {
	a, err := s.assessments.GetByID(dbc, assessmentID)
	if err != nil {
		return nil, dberr.Map("load assessment", err)
	}
	if a == nil || (orgID != uuid.Nil && a.OrgID != orgID) {
		return nil, fmt.Errorf("assessment %s: %w", assessmentID, apperr.ErrNotFound)
	}

	on, err := s.flags.IsEnabled(dbc, a.OrgID, types.FlagClientPortal)
	if err != nil {
		return nil, err
	}
	if !on {
		s.log.Info("portal notifications skipped", "org_id", a.OrgID, "reason", SkipPortalDisabled)
		return &FanoutResult{Skipped: true, Reason: SkipPortalDisabled}, nil
	}

	recipients, err := s.leads.ListDistinctCompletedEmails(dbc, a.OrgID)
	if err != nil {
		return nil, dberr.Map("list recipients", err)
	}
	res := &FanoutResult{Recipients: len(recipients)}
	if s.mailer == nil {
		res.Skipped = true
		res.Reason = SkipEmailDisabled
		return res, nil
	}

	var sent, failed atomic.Int64
	g, ctx := errgroup.WithContext(dbc.Ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, to := range recipients {
		to := to
		g.Go(func() error {
			if _, err := s.mailer.Send(ctx, s.portalEmail(a, to)); err != nil {
				failed.Add(1)
				s.log.Warn("portal email failed", "assessment_id", a.ID, "email", to, "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res.Sent = int(sent.Load())
	res.Failed = int(failed.Load())
	s.log.Info("portal notifications sent",
		"assessment_id", a.ID,
		"recipients", res.Recipients,
		"sent", res.Sent,
		"failed", res.Failed,
	)
	s.events.Publish(dbc.Ctx, redis.Event{
		Type:     redis.EventAssessmentNotified,
		OrgID:    a.OrgID,
		EntityID: a.ID,
		Data:     map[string]any{"sent": res.Sent, "failed": res.Failed},
	})
	return res, nil
}

func (s *notificationService) portalEmail(a *types.Assessment, to string) sendgrid.SendEmailRequest {
	link := strings.TrimRight(s.opts.PortalBaseURL, "/")
	if link != "" {
		link += "/assessments/" + a.ID.String()
	}
	text := fmt.Sprintf("A new assessment is available in your client portal: %s.", a.Title)
	if link != "" {
		text += "\n\n" + link
	}
	return sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: to}},
		Subject:    "New assessment: " + a.Title,
		Text:       text,
		Categories: []string{"portal_notification"},
		CustomArgs: map[string]string{"assessment_id": a.ID.String()},
	}
}
