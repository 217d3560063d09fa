package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dohigg1/advisory-hub/internal/clients/redis"
	"github.com/dohigg1/advisory-hub/internal/data/db"
	"github.com/dohigg1/advisory-hub/internal/data/dberr"
	"github.com/dohigg1/advisory-hub/internal/data/repos"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/scoring"
)

type ScoringService interface {
	CompleteLead(dbc dbctx.Context, leadID uuid.UUID) (*types.Score, error)
}

type ScoringDeps struct {
	Tx          db.TxRunner
	Orgs        repos.OrganizationRepo
	Assessments repos.AssessmentRepo
	Config      repos.AssessmentConfigRepo
	Leads       repos.LeadRepo
	Answers     repos.AnswerRepo
	Scores      repos.ScoreRepo
	Flags       FeatureFlagService
	Webhooks    WebhookDispatcher
	Events      EventPublisher
	Now         func() time.Time
	// Background runs the post-commit notifications off the request path.
	Background bool
}

type scoringService struct {
	log  *logger.Logger
	deps ScoringDeps
}

func NewScoringService(log *logger.Logger, deps ScoringDeps) ScoringService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	return &scoringService{log: log.With("service", "ScoringService"), deps: deps}
}

// ScoreInput is the assessment configuration and answers for one lead.
type ScoreInput struct {
	Categories []*types.Category
	Questions  []*types.Question
	Answers    []*types.Answer
	Tiers      []*types.ScoreTier
}

type ScoreResult struct {
	TotalPoints   float64
	TotalPossible float64
	Percentage    int
	Tier          *types.ScoreTier
	Categories    map[string]types.CategoryScore
}

func toScoringTiers(in []*types.ScoreTier) []scoring.Tier {
	out := make([]scoring.Tier, 0, len(in))
	for _, t := range in {
		out = append(out, scoring.Tier{
			ID:        t.ID.String(),
			Label:     t.Label,
			MinPct:    t.MinPct,
			MaxPct:    t.MaxPct,
			SortOrder: t.SortOrder,
		})
	}
	return out
}

// ComputeScore totals answers per category and overall. The overall percentage is the
// weighted category percentage when any category has questions, else points over possible.
func ComputeScore(in ScoreInput) ScoreResult {
	tiers := toScoringTiers(in.Tiers)
	tierByID := map[string]*types.ScoreTier{}
	for _, t := range in.Tiers {
		tierByID[t.ID.String()] = t
	}

	points := map[uuid.UUID]float64{}
	for _, a := range in.Answers {
		points[a.QuestionID] += a.Points
	}

	type bucket struct {
		points, possible float64
		questions        int
	}
	perCat := map[uuid.UUID]*bucket{}
	var res ScoreResult
	for _, q := range in.Questions {
		res.TotalPossible += q.MaxPoints
		res.TotalPoints += points[q.ID]
		if q.CategoryID == nil {
			continue
		}
		b := perCat[*q.CategoryID]
		if b == nil {
			b = &bucket{}
			perCat[*q.CategoryID] = b
		}
		b.points += points[q.ID]
		b.possible += q.MaxPoints
		b.questions++
	}

	res.Categories = map[string]types.CategoryScore{}
	var weighted []scoring.CategoryResult
	for _, c := range in.Categories {
		b := perCat[c.ID]
		if b == nil || b.questions == 0 {
			continue
		}
		pct := scoring.Percentage(b.points, b.possible)
		cs := types.CategoryScore{Points: b.points, Possible: b.possible, Percentage: pct}
		if t, ok := scoring.MatchTier(pct, tiers); ok {
			cs.TierLabel = t.Label
		}
		res.Categories[c.ID.String()] = cs
		weighted = append(weighted, scoring.CategoryResult{
			Percentage: scoring.RawPercentage(b.points, b.possible),
			Weight:     c.Weight,
		})
	}

	if len(weighted) > 0 {
		res.Percentage = scoring.WeightedPercentage(weighted)
	} else {
		res.Percentage = scoring.Percentage(res.TotalPoints, res.TotalPossible)
	}
	if t, ok := scoring.MatchTier(res.Percentage, tiers); ok {
		res.Tier = tierByID[t.ID]
	}
	return res
}

func (s *scoringService) CompleteLead(dbc dbctx.Context, leadID uuid.UUID) (*types.Score, error) {
	lead, err := s.deps.Leads.GetByID(dbc, leadID)
	if err != nil {
		return nil, dberr.Map("load lead", err)
	}
	if lead == nil {
		return nil, fmt.Errorf("lead %s: %w", leadID, apperr.ErrNotFound)
	}
	existing, err := s.deps.Scores.GetByLeadID(dbc, leadID)
	if err != nil {
		return nil, dberr.Map("load score", err)
	}
	if existing != nil {
		return existing, nil
	}

	a, err := s.deps.Assessments.GetByID(dbc, lead.AssessmentID)
	if err != nil {
		return nil, dberr.Map("load assessment", err)
	}
	if a == nil {
		return nil, fmt.Errorf("assessment %s: %w", lead.AssessmentID, apperr.ErrNotFound)
	}

	in, err := s.loadInput(dbc, a.ID, lead.ID)
	if err != nil {
		return nil, err
	}
	if err := scoring.ValidateBands(toScoringTiers(in.Tiers)); err != nil && len(in.Tiers) > 0 {
		s.log.Warn("assessment tier bands malformed", "assessment_id", a.ID, "error", err)
	}
	res := ComputeScore(in)

	catJSON, err := json.Marshal(res.Categories)
	if err != nil {
		return nil, fmt.Errorf("encode category scores: %w", err)
	}
	score := &types.Score{
		ID:             uuid.New(),
		LeadID:         lead.ID,
		AssessmentID:   a.ID,
		TotalPoints:    res.TotalPoints,
		TotalPossible:  res.TotalPossible,
		Percentage:     res.Percentage,
		CategoryScores: datatypes.JSON(catJSON),
	}
	if res.Tier != nil {
		id := res.Tier.ID
		score.TierID = &id
		score.TierLabel = res.Tier.Label
	}

	completedAt := s.deps.Now().UTC()
	txErr := s.deps.Tx.InTx(dbc.Ctx, func(tx dbctx.Context) error {
		if err := s.deps.Scores.Create(tx, score); err != nil {
			return err
		}
		if _, err := s.deps.Leads.MarkCompleted(tx, lead.ID, completedAt); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		if dberr.IsUniqueViolation(txErr) {
			// a concurrent completion won the race
			winner, err := s.deps.Scores.GetByLeadID(dbc, leadID)
			if err == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, dberr.Map("persist score", txErr)
	}
	lead.Status = types.LeadStatusCompleted
	lead.CompletedAt = &completedAt

	s.log.Info("lead scored",
		"lead_id", lead.ID,
		"assessment_id", a.ID,
		"percentage", score.Percentage,
		"tier", score.TierLabel,
	)

	names := make(map[string]string, len(in.Categories))
	for _, c := range in.Categories {
		names[c.ID.String()] = c.Name
	}
	after := func(ctx context.Context) {
		s.afterCompletion(ctx, a, lead, score, names)
	}
	if s.deps.Background {
		go after(context.WithoutCancel(dbc.Ctx))
	} else {
		after(dbc.Ctx)
	}
	return score, nil
}

func (s *scoringService) loadInput(dbc dbctx.Context, assessmentID, leadID uuid.UUID) (ScoreInput, error) {
	var in ScoreInput
	var err error
	if in.Categories, err = s.deps.Config.ListCategories(dbc, assessmentID); err != nil {
		return in, dberr.Map("load categories", err)
	}
	if in.Questions, err = s.deps.Config.ListQuestions(dbc, assessmentID); err != nil {
		return in, dberr.Map("load questions", err)
	}
	if in.Tiers, err = s.deps.Config.ListTiers(dbc, assessmentID); err != nil {
		return in, dberr.Map("load tiers", err)
	}
	if in.Answers, err = s.deps.Answers.ListByLead(dbc, leadID); err != nil {
		return in, dberr.Map("load answers", err)
	}
	return in, nil
}

// afterCompletion runs the downstream notifications. Nothing here can fail the completion.
func (s *scoringService) afterCompletion(ctx context.Context, a *types.Assessment, lead *types.Lead, score *types.Score, names map[string]string) {
	dbc := dbctx.Context{Ctx: ctx}

	if s.deps.Flags != nil {
		on, err := s.deps.Flags.IsEnabled(dbc, a.OrgID, types.FlagAINarrative)
		if err != nil {
			s.log.Warn("narrative flag lookup failed", "org_id", a.OrgID, "error", err)
		} else if on {
			s.deps.Events.Publish(ctx, redis.Event{
				Type:     redis.EventLeadNarrativeRequested,
				OrgID:    a.OrgID,
				EntityID: lead.ID,
				Data:     map[string]any{"score_id": score.ID.String()},
			})
		}
	}

	if s.deps.Webhooks != nil && s.deps.Orgs != nil {
		org, err := s.deps.Orgs.GetByID(dbc, a.OrgID)
		switch {
		case err != nil:
			s.log.Warn("webhook org lookup failed", "org_id", a.OrgID, "error", err)
		case org == nil:
			s.log.Warn("webhook org missing", "org_id", a.OrgID)
		default:
			res := s.deps.Webhooks.Dispatch(ctx, CompletionEvent{
				Org:           org,
				Assessment:    a,
				Lead:          lead,
				Score:         score,
				CategoryNames: names,
			})
			s.log.Debug("webhook dispatched", "lead_id", lead.ID, "status", res.Status, "attempts", res.Attempts)
		}
	}

	s.deps.Events.Publish(ctx, redis.Event{
		Type:     redis.EventLeadCompleted,
		OrgID:    a.OrgID,
		EntityID: lead.ID,
		Data: map[string]any{
			"assessment_id": a.ID.String(),
			"percentage":    score.Percentage,
			"tier_label":    score.TierLabel,
		},
	})
}
