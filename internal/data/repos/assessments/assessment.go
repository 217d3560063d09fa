package assessments

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type AssessmentRepo interface {
	Create(dbc dbctx.Context, a *types.Assessment) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Assessment, error)
	CountByOrg(dbc dbctx.Context, orgID uuid.UUID) (int64, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

func (r *assessmentRepo) Create(dbc dbctx.Context, a *types.Assessment) error {
	return dbc.DB(r.db).Create(a).Error
}

func (r *assessmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Assessment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var a types.Assessment
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&a).Error; err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

// CountByOrg counts live (not soft-deleted) assessments in any status.
func (r *assessmentRepo) CountByOrg(dbc dbctx.Context, orgID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Assessment{}).Where("org_id = ?", orgID).Count(&n).Error
	return n, err
}
