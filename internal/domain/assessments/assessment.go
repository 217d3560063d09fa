package assessments

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Lead form fields an assessment can switch on.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldPhone     = "phone"
	FieldCompany   = "company"
	FieldJobTitle  = "job_title"
)

var LeadFields = []string{FieldFirstName, FieldLastName, FieldPhone, FieldCompany, FieldJobTitle}

type LeadFieldSetting struct {
	Enabled  bool `json:"enabled"`
	Required bool `json:"required"`
}

// Settings is stored as JSON on the assessment row.
type Settings struct {
	AllowRetakes   bool                        `json:"allow_retakes"`
	RequireConsent bool                        `json:"require_consent"`
	LeadFields     map[string]LeadFieldSetting `json:"lead_fields,omitempty"`
}

// RequiredFields lists the enabled and required lead fields in a stable order.
func (s Settings) RequiredFields() []string {
	var out []string
	for _, f := range LeadFields {
		if cfg, ok := s.LeadFields[f]; ok && cfg.Enabled && cfg.Required {
			out = append(out, f)
		}
	}
	return out
}

type Assessment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"org_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Status      string         `gorm:"column:status;not null;default:'draft';index" json:"status"`
	Settings    datatypes.JSON `gorm:"column:settings" json:"settings"`
	PublishedAt *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assessment) TableName() string { return "assessment" }

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ParsedSettings decodes Settings; an empty column yields the zero value.
func (a *Assessment) ParsedSettings() (Settings, error) {
	var s Settings
	if a == nil || len(a.Settings) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(a.Settings, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

type Category struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Weight       float64   `gorm:"column:weight;not null;default:0" json:"weight"`
	SortOrder    int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Question struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"assessment_id"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Prompt       string     `gorm:"column:prompt" json:"prompt"`
	MaxPoints    float64    `gorm:"column:max_points;not null;default:0" json:"max_points"`
	SortOrder    int        `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// ScoreTier is one labelled band of an assessment's [0,100] partition.
type ScoreTier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Label        string    `gorm:"column:label;not null" json:"label"`
	MinPct       int       `gorm:"column:min_pct;not null" json:"min_pct"`
	MaxPct       int       `gorm:"column:max_pct;not null" json:"max_pct"`
	Colour       string    `gorm:"column:colour" json:"colour"`
	Description  string    `gorm:"column:description" json:"description"`
	SortOrder    int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
}

func (ScoreTier) TableName() string { return "score_tier" }

func (t *ScoreTier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
