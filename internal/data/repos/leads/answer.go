package leads

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type AnswerRepo interface {
	Create(dbc dbctx.Context, rows []*types.Answer) error
	ListByLead(dbc dbctx.Context, leadID uuid.UUID) ([]*types.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) Create(dbc dbctx.Context, rows []*types.Answer) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).Create(&rows).Error
}

func (r *answerRepo) ListByLead(dbc dbctx.Context, leadID uuid.UUID) ([]*types.Answer, error) {
	var out []*types.Answer
	err := dbc.DB(r.db).Where("lead_id = ?", leadID).Find(&out).Error
	return out, err
}
