package leads

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type LeadRepo interface {
	// Create inserts a started lead. Unique violations are returned untouched for the caller to classify.
	Create(dbc dbctx.Context, lead *types.Lead) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lead, error)
	GetLatestByAssessmentEmail(dbc dbctx.Context, assessmentID uuid.UUID, email string) (*types.Lead, error)
	GetLatestCompletedByAssessmentEmail(dbc dbctx.Context, assessmentID uuid.UUID, email string) (*types.Lead, error)
	// MarkCompleted flips a started lead to completed; it reports false when the lead was not started.
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	CountCompletedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) (int64, error)
	ListDistinctCompletedEmails(dbc dbctx.Context, orgID uuid.UUID) ([]string, error)
	ListByAssessment(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.Lead, error)
}

type leadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo {
	return &leadRepo{db: db, log: baseLog.With("repo", "LeadRepo")}
}

func (r *leadRepo) Create(dbc dbctx.Context, lead *types.Lead) error {
	return dbc.DB(r.db).Create(lead).Error
}

func (r *leadRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lead, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var l types.Lead
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&l).Error; err != nil {
		return nil, err
	}
	if l.ID == uuid.Nil {
		return nil, nil
	}
	return &l, nil
}

func (r *leadRepo) latest(dbc dbctx.Context, q *gorm.DB) (*types.Lead, error) {
	var l types.Lead
	if err := q.Order("created_at DESC").Limit(1).Find(&l).Error; err != nil {
		return nil, err
	}
	if l.ID == uuid.Nil {
		return nil, nil
	}
	return &l, nil
}

func (r *leadRepo) GetLatestByAssessmentEmail(dbc dbctx.Context, assessmentID uuid.UUID, email string) (*types.Lead, error) {
	if assessmentID == uuid.Nil || email == "" {
		return nil, nil
	}
	return r.latest(dbc, dbc.DB(r.db).Where("assessment_id = ? AND email = ?", assessmentID, email))
}

func (r *leadRepo) GetLatestCompletedByAssessmentEmail(dbc dbctx.Context, assessmentID uuid.UUID, email string) (*types.Lead, error) {
	if assessmentID == uuid.Nil || email == "" {
		return nil, nil
	}
	return r.latest(dbc, dbc.DB(r.db).Where("assessment_id = ? AND email = ? AND status = ?", assessmentID, email, types.LeadStatusCompleted))
}

func (r *leadRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Lead{}).
		Where("id = ? AND status = ?", id, types.LeadStatusStarted).
		Updates(map[string]interface{}{
			"status":       types.LeadStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *leadRepo) CountCompletedSince(dbc dbctx.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.Lead{}).
		Where("org_id = ? AND status = ? AND completed_at >= ?", orgID, types.LeadStatusCompleted, since).
		Count(&n).Error
	return n, err
}

func (r *leadRepo) ListDistinctCompletedEmails(dbc dbctx.Context, orgID uuid.UUID) ([]string, error) {
	var out []string
	err := dbc.DB(r.db).
		Model(&types.Lead{}).
		Where("org_id = ? AND status = ?", orgID, types.LeadStatusCompleted).
		Distinct("email").
		Order("email ASC").
		Pluck("email", &out).Error
	return out, err
}

func (r *leadRepo) ListByAssessment(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.Lead, error) {
	var out []*types.Lead
	err := dbc.DB(r.db).Where("assessment_id = ?", assessmentID).Order("created_at ASC").Find(&out).Error
	return out, err
}
