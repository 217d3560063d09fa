package flags

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Flag names the pipeline checks.
const (
	ClientPortal   = "client_portal"
	AINarrative    = "ai_narrative"
	RealtimeEvents = "realtime_events"
)

type FeatureFlag struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description       string    `gorm:"column:description" json:"description,omitempty"`
	GlobalEnabled     bool      `gorm:"column:global_enabled;not null;default:false" json:"global_enabled"`
	RolloutPercentage int       `gorm:"column:rollout_percentage;not null;default:0" json:"rollout_percentage"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (FeatureFlag) TableName() string { return "feature_flag" }

func (f *FeatureFlag) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FeatureFlagOverride pins a flag on or off for one organization.
type FeatureFlagOverride struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlagID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_flag_override_org,priority:1" json:"flag_id"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_flag_override_org,priority:2" json:"org_id"`
	Enabled   bool      `gorm:"column:enabled;not null" json:"enabled"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (FeatureFlagOverride) TableName() string { return "feature_flag_override" }

func (o *FeatureFlagOverride) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
