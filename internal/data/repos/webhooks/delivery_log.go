package webhooks

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

// DeliveryLogRepo is insert-only.
type DeliveryLogRepo interface {
	Create(dbc dbctx.Context, entry *types.WebhookDeliveryLog) error
	ListByLead(dbc dbctx.Context, leadID uuid.UUID) ([]*types.WebhookDeliveryLog, error)
}

type deliveryLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeliveryLogRepo(db *gorm.DB, baseLog *logger.Logger) DeliveryLogRepo {
	return &deliveryLogRepo{db: db, log: baseLog.With("repo", "WebhookDeliveryLogRepo")}
}

func (r *deliveryLogRepo) Create(dbc dbctx.Context, entry *types.WebhookDeliveryLog) error {
	return dbc.DB(r.db).Create(entry).Error
}

func (r *deliveryLogRepo) ListByLead(dbc dbctx.Context, leadID uuid.UUID) ([]*types.WebhookDeliveryLog, error) {
	var out []*types.WebhookDeliveryLog
	err := dbc.DB(r.db).Where("lead_id = ?", leadID).Order("attempt ASC").Find(&out).Error
	return out, err
}
