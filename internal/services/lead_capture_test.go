package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/domain/assessments"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/plans"
)

func publishedAssessment(t *testing.T, settings types.AssessmentSettings) *types.Assessment {
	t.Helper()
	raw, err := json.Marshal(settings)
	if err != nil {
		t.Fatalf("marshal settings: %v", err)
	}
	return &types.Assessment{
		ID:       uuid.New(),
		OrgID:    uuid.New(),
		Title:    "Exit Readiness",
		Status:   types.AssessmentStatusPublished,
		Settings: raw,
	}
}

type captureFixture struct {
	svc    LeadCaptureService
	a      *types.Assessment
	leads  *fakeLeadRepo
	ents   *fakeEntitlements
	events *recordingPublisher
}

func newCaptureFixture(t *testing.T, settings types.AssessmentSettings) *captureFixture {
	t.Helper()
	a := publishedAssessment(t, settings)
	f := &captureFixture{
		a:      a,
		leads:  &fakeLeadRepo{},
		ents:   allowAll(),
		events: &recordingPublisher{},
	}
	f.svc = NewLeadCaptureService(logger.Nop(), newFakeAssessmentRepo(a), f.leads, f.ents, f.events)
	return f
}

func (f *captureFixture) capture(t *testing.T, req CaptureRequest) CaptureResult {
	t.Helper()
	req.AssessmentID = f.a.ID
	res, err := f.svc.Capture(dbctx.Background(), req)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	return res
}

func TestCaptureCreatesNormalisedLead(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{})
	res := f.capture(t, CaptureRequest{Email: "  Jo@Example.COM ", UTM: map[string]string{"utm_source": "linkedin"}})
	if res.Outcome != OutcomeCreated || res.LeadID == uuid.Nil {
		t.Fatalf("Capture: want created got=%+v", res)
	}
	lead, _ := f.leads.GetByID(dbctx.Background(), res.LeadID)
	if lead.Email != "jo@example.com" {
		t.Fatalf("email: want=%q got=%q", "jo@example.com", lead.Email)
	}
	if lead.UTMMap()["utm_source"] != "linkedin" {
		t.Fatalf("utm: got=%v", lead.UTMMap())
	}
	if got := f.events.eventTypes(); len(got) != 1 || got[0] != "lead.captured" {
		t.Fatalf("events: got=%v", got)
	}
}

func TestCaptureValidation(t *testing.T) {
	settings := types.AssessmentSettings{
		RequireConsent: true,
		LeadFields: map[string]types.LeadFieldSetting{
			assessments.FieldCompany:  {Enabled: true, Required: true},
			assessments.FieldPhone:    {Enabled: true, Required: false},
			assessments.FieldJobTitle: {Enabled: false, Required: true},
		},
	}
	cases := []struct {
		name  string
		req   CaptureRequest
		field string
	}{
		{"missing email", CaptureRequest{Company: "Acme", ConsentGiven: true}, FieldEmail},
		{"invalid email", CaptureRequest{Email: "not-an-email", Company: "Acme", ConsentGiven: true}, FieldEmail},
		{"display name rejected", CaptureRequest{Email: "Jo <jo@example.com>", Company: "Acme", ConsentGiven: true}, FieldEmail},
		{"required field", CaptureRequest{Email: "jo@example.com", Company: "  ", ConsentGiven: true}, assessments.FieldCompany},
		{"consent", CaptureRequest{Email: "jo@example.com", Company: "Acme"}, FieldConsent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCaptureFixture(t, settings)
			res := f.capture(t, tc.req)
			if res.Outcome != OutcomeValidationFailed || res.Field != tc.field {
				t.Fatalf("want validation_failed on %q got=%+v", tc.field, res)
			}
			if f.leads.count() != 0 {
				t.Fatalf("no lead should be written on validation failure")
			}
		})
	}

	f := newCaptureFixture(t, settings)
	res := f.capture(t, CaptureRequest{Email: "jo@example.com", Company: "Acme", ConsentGiven: true})
	if res.Outcome != OutcomeCreated {
		t.Fatalf("optional and disabled fields should not block: got=%+v", res)
	}
}

func TestCaptureRejectsUnpublishedAssessment(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{})
	f.a.Status = types.AssessmentStatusDraft
	if res := f.capture(t, CaptureRequest{Email: "jo@example.com"}); res.Outcome != OutcomeValidationFailed {
		t.Fatalf("draft assessment: got=%+v", res)
	}
	res, err := f.svc.Capture(dbctx.Background(), CaptureRequest{AssessmentID: uuid.New(), Email: "jo@example.com"})
	if err != nil || res.Outcome != OutcomeValidationFailed {
		t.Fatalf("missing assessment: res=%+v err=%v", res, err)
	}
}

func TestCaptureLimitReached(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{})
	f.ents.ent = plans.Evaluate(plans.TierFree, plans.ResourceResponsesPerMonth, 50, 55)
	res := f.capture(t, CaptureRequest{Email: "jo@example.com"})
	if res.Outcome != OutcomeLimitReached || res.Entitlement == nil || res.Entitlement.GraceLimit != 55 {
		t.Fatalf("want limit_reached got=%+v", res)
	}
	if f.leads.count() != 0 {
		t.Fatalf("no lead should be written past the limit")
	}
}

func TestCaptureAlreadyCompletedWithoutRetakes(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{AllowRetakes: false})
	first := f.capture(t, CaptureRequest{Email: "jo@example.com"})
	if _, err := f.leads.MarkCompleted(dbctx.Background(), first.LeadID, fixedNow()); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	res := f.capture(t, CaptureRequest{Email: "JO@example.com"})
	if res.Outcome != OutcomeAlreadyCompleted || res.LeadID != first.LeadID {
		t.Fatalf("want already_completed(%s) got=%+v", first.LeadID, res)
	}
	if f.leads.count() != 1 {
		t.Fatalf("rows: want=1 got=%d", f.leads.count())
	}
}

func TestCaptureRetakeAllowed(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{AllowRetakes: true})
	first := f.capture(t, CaptureRequest{Email: "jo@example.com"})
	if _, err := f.leads.MarkCompleted(dbctx.Background(), first.LeadID, fixedNow()); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	res := f.capture(t, CaptureRequest{Email: "jo@example.com"})
	if res.Outcome != OutcomeCreated || res.LeadID == first.LeadID {
		t.Fatalf("want new created lead got=%+v", res)
	}
}

func TestCaptureResumesStartedLead(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{})
	first := f.capture(t, CaptureRequest{Email: "jo@example.com"})
	again := f.capture(t, CaptureRequest{Email: "jo@example.com"})
	if again.Outcome != OutcomeResumed || again.LeadID != first.LeadID {
		t.Fatalf("want resumed(%s) got=%+v", first.LeadID, again)
	}
}

func TestCaptureConcurrentSubmissionsShareOneLead(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{})
	const n = 8
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			res, err := f.svc.Capture(dbctx.Context{Ctx: context.Background()}, CaptureRequest{AssessmentID: f.a.ID, Email: "jo@example.com"})
			if err != nil {
				t.Errorf("Capture: %v", err)
				return
			}
			ids[i] = res.LeadID
		}(i)
	}
	close(start)
	wg.Wait()

	if f.leads.count() != 1 {
		t.Fatalf("rows: want=1 got=%d", f.leads.count())
	}
	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("lead ids differ: %s vs %s", ids[0], ids[i])
		}
	}
}

func TestCaptureInsertFailureIsRetryable(t *testing.T) {
	f := newCaptureFixture(t, types.AssessmentSettings{})
	f.leads.createErr = errors.New("connection reset by peer")
	_, err := f.svc.Capture(dbctx.Background(), CaptureRequest{AssessmentID: f.a.ID, Email: "jo@example.com"})
	if !errors.Is(err, apperr.ErrRetryable) {
		t.Fatalf("want ErrRetryable got=%v", err)
	}
}
