package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/platform/sendgrid"
	"github.com/dohigg1/advisory-hub/internal/plans"
	"github.com/dohigg1/advisory-hub/internal/rollout"
)

type fakeAssessmentRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Assessment
}

func newFakeAssessmentRepo(rows ...*types.Assessment) *fakeAssessmentRepo {
	r := &fakeAssessmentRepo{rows: map[uuid.UUID]*types.Assessment{}}
	for _, a := range rows {
		r.rows[a.ID] = a
	}
	return r
}

func (r *fakeAssessmentRepo) Create(_ dbctx.Context, a *types.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.rows[a.ID] = a
	return nil
}

func (r *fakeAssessmentRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeAssessmentRepo) CountByOrg(_ dbctx.Context, orgID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.rows {
		if a.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

// fakeLeadRepo enforces the started-lead uniqueness rule the way the database index does.
type fakeLeadRepo struct {
	mu        sync.Mutex
	rows      []*types.Lead
	createErr error
	seq       int
}

func (r *fakeLeadRepo) Create(_ dbctx.Context, lead *types.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, l := range r.rows {
		if l.AssessmentID == lead.AssessmentID && l.Email == lead.Email &&
			l.Status == types.LeadStatusStarted && lead.Status == types.LeadStatusStarted {
			return gorm.ErrDuplicatedKey
		}
	}
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	r.seq++
	lead.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	cp := *lead
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeLeadRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) latest(assessmentID uuid.UUID, email string, status string) *types.Lead {
	var out *types.Lead
	for _, l := range r.rows {
		if l.AssessmentID != assessmentID || l.Email != email {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		if out == nil || l.CreatedAt.After(out.CreatedAt) {
			out = l
		}
	}
	if out == nil {
		return nil
	}
	cp := *out
	return &cp
}

func (r *fakeLeadRepo) GetLatestByAssessmentEmail(_ dbctx.Context, assessmentID uuid.UUID, email string) (*types.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest(assessmentID, email, ""), nil
}

func (r *fakeLeadRepo) GetLatestCompletedByAssessmentEmail(_ dbctx.Context, assessmentID uuid.UUID, email string) (*types.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest(assessmentID, email, types.LeadStatusCompleted), nil
}

func (r *fakeLeadRepo) MarkCompleted(_ dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.ID == id && l.Status == types.LeadStatusStarted {
			l.Status = types.LeadStatusCompleted
			l.CompletedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLeadRepo) CountCompletedSince(_ dbctx.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.rows {
		if l.OrgID == orgID && l.Status == types.LeadStatusCompleted && l.CompletedAt != nil && !l.CompletedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLeadRepo) ListDistinctCompletedEmails(_ dbctx.Context, orgID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, l := range r.rows {
		if l.OrgID == orgID && l.Status == types.LeadStatusCompleted && !seen[l.Email] {
			seen[l.Email] = true
			out = append(out, l.Email)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeLeadRepo) ListByAssessment(_ dbctx.Context, assessmentID uuid.UUID) ([]*types.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Lead
	for _, l := range r.rows {
		if l.AssessmentID == assessmentID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeEntitlements struct {
	ent   plans.Entitlement
	err   error
	calls int
}

func (f *fakeEntitlements) Check(_ dbctx.Context, _ uuid.UUID, r plans.Resource) (*plans.Entitlement, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	e := f.ent
	e.Resource = r
	return &e, nil
}

func (f *fakeEntitlements) Usage(dbc dbctx.Context, orgID uuid.UUID) ([]plans.Entitlement, error) {
	e, err := f.Check(dbc, orgID, plans.ResourceResponsesPerMonth)
	if err != nil {
		return nil, err
	}
	return []plans.Entitlement{*e}, nil
}

func allowAll() *fakeEntitlements {
	return &fakeEntitlements{ent: plans.Entitlement{Allowed: true, Limit: plans.Unlimited, GraceLimit: plans.Unlimited}}
}

type fakeFlags struct {
	on  map[string]bool
	err error
}

func (f *fakeFlags) IsEnabled(_ dbctx.Context, _ uuid.UUID, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.on[name], nil
}

func (f *fakeFlags) Evaluate(dbc dbctx.Context, orgID uuid.UUID, name string) (rollout.Decision, error) {
	on, err := f.IsEnabled(dbc, orgID, name)
	return rollout.Decision{Enabled: on, Source: rollout.SourceOverride}, err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []redis.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev redis.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeDeliveryLogRepo struct {
	mu      sync.Mutex
	entries []*types.WebhookDeliveryLog
	err     error
}

func (r *fakeDeliveryLogRepo) Create(_ dbctx.Context, entry *types.WebhookDeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *fakeDeliveryLogRepo) ListByLead(_ dbctx.Context, leadID uuid.UUID) ([]*types.WebhookDeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.WebhookDeliveryLog
	for _, e := range r.entries {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeMailer struct {
	mu     sync.Mutex
	failTo map[string]bool
	sent   []string
}

func (m *fakeMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	to := req.To[0].Email
	if m.failTo[to] {
		return nil, errors.New("mailbox unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []CompletionEvent
}

func (d *fakeDispatcher) Dispatch(_ context.Context, ev CompletionEvent) DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return DispatchResult{Status: DispatchDelivered, Attempts: 1, StatusCode: 200}
}
