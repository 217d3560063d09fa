package orgs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type OrganizationRepo interface {
	Create(dbc dbctx.Context, org *types.Organization) error
	// GetByID returns nil, nil when the organization does not exist.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error)
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) Create(dbc dbctx.Context, org *types.Organization) error {
	return dbc.DB(r.db).Create(org).Error
}

func (r *organizationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Organization, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var org types.Organization
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&org).Error; err != nil {
		return nil, err
	}
	if org.ID == uuid.Nil {
		return nil, nil
	}
	return &org, nil
}
