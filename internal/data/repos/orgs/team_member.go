package orgs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type TeamMemberRepo interface {
	Create(dbc dbctx.Context, member *types.TeamMember) error
	CountByOrg(dbc dbctx.Context, orgID uuid.UUID) (int64, error)
}

type teamMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamMemberRepo(db *gorm.DB, baseLog *logger.Logger) TeamMemberRepo {
	return &teamMemberRepo{db: db, log: baseLog.With("repo", "TeamMemberRepo")}
}

func (r *teamMemberRepo) Create(dbc dbctx.Context, member *types.TeamMember) error {
	return dbc.DB(r.db).Create(member).Error
}

func (r *teamMemberRepo) CountByOrg(dbc dbctx.Context, orgID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.TeamMember{}).Where("org_id = ?", orgID).Count(&n).Error
	return n, err
}
