package leads

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

// ScoreRepo has no update path; scores are immutable once written.
type ScoreRepo interface {
	Create(dbc dbctx.Context, score *types.Score) error
	GetByLeadID(dbc dbctx.Context, leadID uuid.UUID) (*types.Score, error)
	GetByLeadIDs(dbc dbctx.Context, leadIDs []uuid.UUID) ([]*types.Score, error)
}

type scoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScoreRepo(db *gorm.DB, baseLog *logger.Logger) ScoreRepo {
	return &scoreRepo{db: db, log: baseLog.With("repo", "ScoreRepo")}
}

func (r *scoreRepo) Create(dbc dbctx.Context, score *types.Score) error {
	return dbc.DB(r.db).Create(score).Error
}

func (r *scoreRepo) GetByLeadID(dbc dbctx.Context, leadID uuid.UUID) (*types.Score, error) {
	var s types.Score
	if err := dbc.DB(r.db).Where("lead_id = ?", leadID).Limit(1).Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (r *scoreRepo) GetByLeadIDs(dbc dbctx.Context, leadIDs []uuid.UUID) ([]*types.Score, error) {
	var out []*types.Score
	if len(leadIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Where("lead_id IN ?", leadIDs).Find(&out).Error
	return out, err
}
