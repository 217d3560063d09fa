package webhooks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryLog records one webhook attempt. Rows are append-only.
type DeliveryLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID        uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	LeadID       uuid.UUID `gorm:"type:uuid;not null;index" json:"lead_id"`
	URL          string    `gorm:"column:url;not null" json:"url"`
	StatusCode   *int      `gorm:"column:status_code" json:"status_code,omitempty"`
	Attempt      int       `gorm:"column:attempt;not null" json:"attempt"`
	Success      bool      `gorm:"column:success;not null" json:"success"`
	ResponseBody string    `gorm:"column:response_body" json:"response_body,omitempty"`
	ErrorMessage string    `gorm:"column:error_message" json:"error_message,omitempty"`
	DurationMS   int64     `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (DeliveryLog) TableName() string { return "webhook_delivery_log" }

func (d *DeliveryLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
