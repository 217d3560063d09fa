package flags

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type FeatureFlagRepo interface {
	Upsert(dbc dbctx.Context, flag *types.FeatureFlag) error
	GetByName(dbc dbctx.Context, name string) (*types.FeatureFlag, error)
	SetOverride(dbc dbctx.Context, flagID, orgID uuid.UUID, enabled bool) error
	GetOverride(dbc dbctx.Context, flagID, orgID uuid.UUID) (*types.FeatureFlagOverride, error)
}

type featureFlagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeatureFlagRepo(db *gorm.DB, baseLog *logger.Logger) FeatureFlagRepo {
	return &featureFlagRepo{db: db, log: baseLog.With("repo", "FeatureFlagRepo")}
}

func (r *featureFlagRepo) Upsert(dbc dbctx.Context, flag *types.FeatureFlag) error {
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "global_enabled", "rollout_percentage", "updated_at"}),
	}).Create(flag).Error
}

func (r *featureFlagRepo) GetByName(dbc dbctx.Context, name string) (*types.FeatureFlag, error) {
	if name == "" {
		return nil, nil
	}
	var f types.FeatureFlag
	if err := dbc.DB(r.db).Where("name = ?", name).Limit(1).Find(&f).Error; err != nil {
		return nil, err
	}
	if f.ID == uuid.Nil {
		return nil, nil
	}
	return &f, nil
}

func (r *featureFlagRepo) SetOverride(dbc dbctx.Context, flagID, orgID uuid.UUID, enabled bool) error {
	row := &types.FeatureFlagOverride{FlagID: flagID, OrgID: orgID, Enabled: enabled}
	return dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "flag_id"}, {Name: "org_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "updated_at"}),
	}).Create(row).Error
}

func (r *featureFlagRepo) GetOverride(dbc dbctx.Context, flagID, orgID uuid.UUID) (*types.FeatureFlagOverride, error) {
	var o types.FeatureFlagOverride
	if err := dbc.DB(r.db).Where("flag_id = ? AND org_id = ?", flagID, orgID).Limit(1).Find(&o).Error; err != nil {
		return nil, err
	}
	if o.ID == uuid.Nil {
		return nil, nil
	}
	return &o, nil
}
