package orgs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the tenant that owns assessments, leads and a plan.
type Organization struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	PlanTier      string         `gorm:"column:plan_tier;not null;default:'free'" json:"plan_tier"`
	WebhookURL    string         `gorm:"column:webhook_url" json:"webhook_url,omitempty"`
	WebhookSecret string         `gorm:"column:webhook_secret" json:"-"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Organization) TableName() string { return "organization" }

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	Email     string    `gorm:"column:email;not null" json:"email"`
	Role      string    `gorm:"column:role;not null;default:'member'" json:"role"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (TeamMember) TableName() string { return "team_member" }

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
