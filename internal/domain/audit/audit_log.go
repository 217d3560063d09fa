package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const ActionLeadsExport = "leads.export"

// Log is an immutable record of an administrative action.
type Log struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	ActorUserID *uuid.UUID     `gorm:"type:uuid;column:actor_user_id" json:"actor_user_id,omitempty"`
	Action      string         `gorm:"column:action;not null;index" json:"action"`
	EntityType  string         `gorm:"column:entity_type" json:"entity_type,omitempty"`
	EntityID    *uuid.UUID     `gorm:"type:uuid;column:entity_id" json:"entity_id,omitempty"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (Log) TableName() string { return "audit_log" }

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
