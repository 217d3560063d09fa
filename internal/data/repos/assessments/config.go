package assessments

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

// ConfigRepo reads the scoring configuration of an assessment: categories, questions and tiers.
type ConfigRepo interface {
	CreateCategories(dbc dbctx.Context, rows []*types.Category) error
	CreateQuestions(dbc dbctx.Context, rows []*types.Question) error
	CreateTiers(dbc dbctx.Context, rows []*types.ScoreTier) error
	ListCategories(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.Category, error)
	ListQuestions(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.Question, error)
	ListTiers(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.ScoreTier, error)
}

type configRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConfigRepo(db *gorm.DB, baseLog *logger.Logger) ConfigRepo {
	return &configRepo{db: db, log: baseLog.With("repo", "AssessmentConfigRepo")}
}

func (r *configRepo) CreateCategories(dbc dbctx.Context, rows []*types.Category) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *configRepo) CreateQuestions(dbc dbctx.Context, rows []*types.Question) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *configRepo) CreateTiers(dbc dbctx.Context, rows []*types.ScoreTier) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *configRepo) ListCategories(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.Category, error) {
	var out []*types.Category
	err := dbc.DB(r.db).Where("assessment_id = ?", assessmentID).Order("sort_order ASC").Find(&out).Error
	return out, err
}

func (r *configRepo) ListQuestions(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.Question, error) {
	var out []*types.Question
	err := dbc.DB(r.db).Where("assessment_id = ?", assessmentID).Order("sort_order ASC").Find(&out).Error
	return out, err
}

func (r *configRepo) ListTiers(dbc dbctx.Context, assessmentID uuid.UUID) ([]*types.ScoreTier, error) {
	var out []*types.ScoreTier
	err := dbc.DB(r.db).Where("assessment_id = ?", assessmentID).Order("sort_order ASC").Find(&out).Error
	return out, err
}
