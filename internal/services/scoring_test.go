package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dohigg1/advisory-hub/internal/data/db"
	"github.com/dohigg1/advisory-hub/internal/data/repos"
	"github.com/dohigg1/advisory-hub/internal/data/repos/testutil"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

func fixedNow() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

func standardBands(assessmentID uuid.UUID) []*types.ScoreTier {
	return []*types.ScoreTier{
		{ID: uuid.New(), AssessmentID: assessmentID, Label: "Beginner", MinPct: 0, MaxPct: 40, SortOrder: 0},
		{ID: uuid.New(), AssessmentID: assessmentID, Label: "Developing", MinPct: 41, MaxPct: 70, SortOrder: 1},
		{ID: uuid.New(), AssessmentID: assessmentID, Label: "Advanced", MinPct: 71, MaxPct: 100, SortOrder: 2},
	}
}

func TestComputeScoreWeightedCategories(t *testing.T) {
	aID := uuid.New()
	cats := []*types.Category{
		{ID: uuid.New(), Name: "Finance", Weight: 40},
		{ID: uuid.New(), Name: "People", Weight: 30},
		{ID: uuid.New(), Name: "Ops", Weight: 30},
		{ID: uuid.New(), Name: "Empty", Weight: 50},
	}
	var qs []*types.Question
	var answers []*types.Answer
	// per-category points out of 10: 8, 6, 9
	for i, pts := range []float64{8, 6, 9} {
		q := &types.Question{ID: uuid.New(), AssessmentID: aID, CategoryID: &cats[i].ID, MaxPoints: 10}
		qs = append(qs, q)
		answers = append(answers, &types.Answer{QuestionID: q.ID, Points: pts})
	}

	res := ComputeScore(ScoreInput{Categories: cats, Questions: qs, Answers: answers, Tiers: standardBands(aID)})
	if res.Percentage != 77 {
		t.Fatalf("Percentage: want=77 got=%d", res.Percentage)
	}
	if res.Tier == nil || res.Tier.Label != "Advanced" {
		t.Fatalf("Tier: want=Advanced got=%v", res.Tier)
	}
	if res.TotalPoints != 23 || res.TotalPossible != 30 {
		t.Fatalf("totals: want=23/30 got=%v/%v", res.TotalPoints, res.TotalPossible)
	}
	if len(res.Categories) != 3 {
		t.Fatalf("categories without questions must be left out: got=%d", len(res.Categories))
	}
	people := res.Categories[cats[1].ID.String()]
	if people.Percentage != 60 || people.TierLabel != "Developing" {
		t.Fatalf("People: got=%+v", people)
	}
}

func TestComputeScoreWithoutCategories(t *testing.T) {
	aID := uuid.New()
	q1 := &types.Question{ID: uuid.New(), MaxPoints: 5}
	q2 := &types.Question{ID: uuid.New(), MaxPoints: 5}
	res := ComputeScore(ScoreInput{
		Questions: []*types.Question{q1, q2},
		Answers:   []*types.Answer{{QuestionID: q1.ID, Points: 2}, {QuestionID: q2.ID, Points: 2.1}},
		Tiers:     standardBands(aID),
	})
	if res.Percentage != 41 || res.Tier == nil || res.Tier.Label != "Developing" {
		t.Fatalf("want 41 Developing got=%d %v", res.Percentage, res.Tier)
	}
	if len(res.Categories) != 0 {
		t.Fatalf("categories: want none got=%v", res.Categories)
	}

	empty := ComputeScore(ScoreInput{})
	if empty.Percentage != 0 || empty.Tier != nil {
		t.Fatalf("empty input: got=%+v", empty)
	}
}

type scoringFixture struct {
	svc    ScoringService
	lead   *types.Lead
	a      *types.Assessment
	scores repos.ScoreRepo
	leads  repos.LeadRepo
	hooks  *fakeDispatcher
	events *recordingPublisher
}

func newScoringFixture(t *testing.T, flags map[string]bool) *scoringFixture {
	t.Helper()
	gdb := testutil.DB(t)
	ctx := context.Background()
	log := logger.Nop()
	dbc := dbctx.Context{Ctx: ctx}

	org := testutil.SeedOrg(t, ctx, gdb, "starter")
	a := testutil.SeedAssessment(t, ctx, gdb, org.ID, types.AssessmentSettings{})
	lead := testutil.SeedLead(t, ctx, gdb, a, "jo@example.com", types.LeadStatusStarted, nil)

	config := repos.NewAssessmentConfigRepo(gdb, log)
	cat := &types.Category{ID: uuid.New(), AssessmentID: a.ID, Name: "Finance", Weight: 1}
	if err := config.CreateCategories(dbc, []*types.Category{cat}); err != nil {
		t.Fatalf("CreateCategories: %v", err)
	}
	q := &types.Question{ID: uuid.New(), AssessmentID: a.ID, CategoryID: &cat.ID, MaxPoints: 10}
	if err := config.CreateQuestions(dbc, []*types.Question{q}); err != nil {
		t.Fatalf("CreateQuestions: %v", err)
	}
	if err := config.CreateTiers(dbc, standardBands(a.ID)); err != nil {
		t.Fatalf("CreateTiers: %v", err)
	}
	answers := repos.NewAnswerRepo(gdb, log)
	if err := answers.Create(dbc, []*types.Answer{{LeadID: lead.ID, QuestionID: q.ID, Points: 7.3}}); err != nil {
		t.Fatalf("Answer Create: %v", err)
	}

	f := &scoringFixture{
		lead:   lead,
		a:      a,
		scores: repos.NewScoreRepo(gdb, log),
		leads:  repos.NewLeadRepo(gdb, log),
		hooks:  &fakeDispatcher{},
		events: &recordingPublisher{},
	}
	f.svc = NewScoringService(log, ScoringDeps{
		Tx:          db.NewGormTxRunner(gdb),
		Orgs:        repos.NewOrganizationRepo(gdb, log),
		Assessments: repos.NewAssessmentRepo(gdb, log),
		Config:      config,
		Leads:       f.leads,
		Answers:     answers,
		Scores:      f.scores,
		Flags:       &fakeFlags{on: flags},
		Webhooks:    f.hooks,
		Events:      f.events,
		Now:         fixedNow,
	})
	return f
}

func TestCompleteLeadPersistsScoreAndCompletes(t *testing.T) {
	f := newScoringFixture(t, nil)
	dbc := dbctx.Background()

	score, err := f.svc.CompleteLead(dbc, f.lead.ID)
	if err != nil {
		t.Fatalf("CompleteLead: %v", err)
	}
	if score.Percentage != 73 || score.TierLabel != "Advanced" || score.TierID == nil {
		t.Fatalf("score: got=%+v", score)
	}
	lead, err := f.leads.GetByID(dbc, f.lead.ID)
	if err != nil || lead.Status != types.LeadStatusCompleted || lead.CompletedAt == nil {
		t.Fatalf("lead after completion: %+v err=%v", lead, err)
	}
	if !lead.CompletedAt.Equal(fixedNow()) {
		t.Fatalf("completed_at: want=%v got=%v", fixedNow(), lead.CompletedAt)
	}
	if len(f.hooks.events) != 1 {
		t.Fatalf("webhook dispatches: want=1 got=%d", len(f.hooks.events))
	}
	if names := f.hooks.events[0].CategoryNames; len(names) != 1 || names[keyOf(score)] != "Finance" {
		t.Fatalf("webhook category names: got=%v", names)
	}
	if got := f.events.eventTypes(); len(got) != 1 || got[0] != "lead.completed" {
		t.Fatalf("events: want=[lead.completed] got=%v", got)
	}
}

func keyOf(s *types.Score) string {
	for k := range s.Categories() {
		return k
	}
	return ""
}

func TestCompleteLeadIsIdempotent(t *testing.T) {
	f := newScoringFixture(t, map[string]bool{types.FlagAINarrative: true})
	dbc := dbctx.Background()

	first, err := f.svc.CompleteLead(dbc, f.lead.ID)
	if err != nil {
		t.Fatalf("CompleteLead: %v", err)
	}
	second, err := f.svc.CompleteLead(dbc, f.lead.ID)
	if err != nil {
		t.Fatalf("CompleteLead again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("score id: want=%s got=%s", first.ID, second.ID)
	}
	if len(f.hooks.events) != 1 {
		t.Fatalf("webhook must fire once: got=%d", len(f.hooks.events))
	}
	got := f.events.eventTypes()
	if len(got) != 2 || got[0] != "lead.narrative_requested" || got[1] != "lead.completed" {
		t.Fatalf("events: got=%v", got)
	}
}

func TestCompleteLeadUnknownLead(t *testing.T) {
	f := newScoringFixture(t, nil)
	if _, err := f.svc.CompleteLead(dbctx.Background(), uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound got=%v", err)
	}
}
