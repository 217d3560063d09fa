package leads

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
)

// Lead is one respondent attempt at one assessment. At most one started row exists per
// (assessment_id, email); retakes add rows rather than mutating completed ones.
type Lead struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_lead_started_email,priority:1,where:status = 'started'" json:"assessment_id"`
	OrgID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_lead_org_status,priority:1" json:"org_id"`
	Email        string         `gorm:"column:email;not null;index;uniqueIndex:idx_lead_started_email,priority:2" json:"email"`
	FirstName    string         `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName     string         `gorm:"column:last_name" json:"last_name,omitempty"`
	Phone        string         `gorm:"column:phone" json:"phone,omitempty"`
	Company      string         `gorm:"column:company" json:"company,omitempty"`
	JobTitle     string         `gorm:"column:job_title" json:"job_title,omitempty"`
	ConsentGiven bool           `gorm:"column:consent_given;not null;default:false" json:"consent_given"`
	Status       string         `gorm:"column:status;not null;default:'started';index:idx_lead_org_status,priority:2" json:"status"`
	UTM          datatypes.JSON `gorm:"column:utm" json:"utm,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	CompletedAt  *time.Time     `gorm:"column:completed_at;index" json:"completed_at,omitempty"`
}

func (Lead) TableName() string { return "lead" }

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *Lead) UTMMap() map[string]string {
	out := map[string]string{}
	if l == nil || len(l.UTM) == 0 {
		return out
	}
	_ = json.Unmarshal(l.UTM, &out)
	return out
}

// Answer is the points a lead earned on one question.
type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_lead_question,priority:1" json:"lead_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_lead_question,priority:2" json:"question_id"`
	Points     float64   `gorm:"column:points;not null;default:0" json:"points"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Answer) TableName() string { return "answer" }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type CategoryScore struct {
	Points     float64 `json:"points"`
	Possible   float64 `json:"possible"`
	Percentage int     `json:"percentage"`
	TierLabel  string  `json:"tier_label,omitempty"`
}

// Score is written once per completed lead and never updated.
type Score struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"lead_id"`
	AssessmentID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"assessment_id"`
	TotalPoints    float64        `gorm:"column:total_points;not null" json:"total_points"`
	TotalPossible  float64        `gorm:"column:total_possible;not null" json:"total_possible"`
	Percentage     int            `gorm:"column:percentage;not null" json:"percentage"`
	TierID         *uuid.UUID     `gorm:"type:uuid;column:tier_id" json:"tier_id,omitempty"`
	TierLabel      string         `gorm:"column:tier_label" json:"tier_label,omitempty"`
	CategoryScores datatypes.JSON `gorm:"column:category_scores" json:"category_scores"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Score) TableName() string { return "score" }

func (s *Score) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Score) Categories() map[string]CategoryScore {
	out := map[string]CategoryScore{}
	if s == nil || len(s.CategoryScores) == 0 {
		return out
	}
	_ = json.Unmarshal(s.CategoryScores, &out)
	return out
}
