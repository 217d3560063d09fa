package audit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

// AuditLogRepo is insert-only.
type AuditLogRepo interface {
	Create(dbc dbctx.Context, entry *types.AuditLog) error
	ListByOrg(dbc dbctx.Context, orgID uuid.UUID, limit int) ([]*types.AuditLog, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(dbc dbctx.Context, entry *types.AuditLog) error {
	return dbc.DB(r.db).Create(entry).Error
}

func (r *auditLogRepo) ListByOrg(dbc dbctx.Context, orgID uuid.UUID, limit int) ([]*types.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []*types.AuditLog
	err := dbc.DB(r.db).Where("org_id = ?", orgID).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
