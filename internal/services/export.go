package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dohigg1/advisory-hub/internal/clients/gcp"
	"github.com/dohigg1/advisory-hub/internal/data/dberr"
	"github.com/dohigg1/advisory-hub/internal/data/repos"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

var exportHeader = []string{
	"lead_id", "email", "first_name", "last_name", "company", "job_title", "phone",
	"status", "consent_given", "created_at", "completed_at", "percentage", "tier_label",
	"utm_source", "utm_medium", "utm_campaign",
}

type Export struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Rows        int    `json:"rows"`
	ObjectURI   string `json:"object_uri,omitempty"`
	Data        []byte `json:"-"`
}

type ExportService interface {
	// ExportLeads renders the assessment's leads as CSV and records one audit entry.
	ExportLeads(dbc dbctx.Context, orgID, actorID, assessmentID uuid.UUID) (*Export, error)
}

type exportService struct {
	log         *logger.Logger
	assessments repos.AssessmentRepo
	leads       repos.LeadRepo
	scores      repos.ScoreRepo
	audit       repos.AuditLogRepo
	store       gcp.ExportStore
	now         func() time.Time
}

// NewExportService accepts a nil store; exports are then returned inline only.
func NewExportService(
	log *logger.Logger,
	assessmentRepo repos.AssessmentRepo,
	leadRepo repos.LeadRepo,
	scoreRepo repos.ScoreRepo,
	auditRepo repos.AuditLogRepo,
	store gcp.ExportStore,
	now func() time.Time,
) ExportService {
	if now == nil {
		now = time.Now
	}
	return &exportService{
		log:         log.With("service", "ExportService"),
		assessments: assessmentRepo,
		leads:       leadRepo,
		scores:      scoreRepo,
		audit:       auditRepo,
		store:       store,
		now:         now,
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func (s *exportService) ExportLeads(dbc dbctx.Context, orgID, actorID, assessmentID uuid.UUID) (*Export, error) {
	a, err := s.assessments.GetByID(dbc, assessmentID)
	if err != nil {
		return nil, dberr.Map("load assessment", err)
	}
	if a == nil || a.OrgID != orgID {
		return nil, fmt.Errorf("assessment %s: %w", assessmentID, apperr.ErrNotFound)
	}

	leads, err := s.leads.ListByAssessment(dbc, a.ID)
	if err != nil {
		return nil, dberr.Map("list leads", err)
	}
	ids := make([]uuid.UUID, 0, len(leads))
	for _, l := range leads {
		ids = append(ids, l.ID)
	}
	scores, err := s.scores.GetByLeadIDs(dbc, ids)
	if err != nil {
		return nil, dberr.Map("load scores", err)
	}
	byLead := make(map[uuid.UUID]*types.Score, len(scores))
	for _, sc := range scores {
		byLead[sc.LeadID] = sc
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, l := range leads {
		utm := l.UTMMap()
		pct, tier := "", ""
		if sc := byLead[l.ID]; sc != nil {
			pct = strconv.Itoa(sc.Percentage)
			tier = sc.TierLabel
		}
		created := l.CreatedAt
		row := []string{
			l.ID.String(), l.Email, l.FirstName, l.LastName, l.Company, l.JobTitle, l.Phone,
			l.Status, strconv.FormatBool(l.ConsentGiven), formatTime(&created), formatTime(l.CompletedAt), pct, tier,
			utm["utm_source"], utm["utm_medium"], utm["utm_campaign"],
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	now := s.now().UTC()
	out := &Export{
		Filename:    fmt.Sprintf("leads-%s-%s.csv", a.ID.String(), now.Format("20060102T150405Z")),
		ContentType: "text/csv",
		Rows:        len(leads),
		Data:        buf.Bytes(),
	}
	if s.store != nil {
		key := fmt.Sprintf("exports/%s/%s", orgID.String(), out.Filename)
		uri, err := s.store.Upload(dbc.Ctx, key, out.ContentType, bytes.NewReader(out.Data))
		if err != nil {
			return nil, fmt.Errorf("upload export: %w", err)
		}
		out.ObjectURI = uri
	}

	meta, err := json.Marshal(map[string]any{
		"rows":       out.Rows,
		"filename":   out.Filename,
		"object_uri": out.ObjectURI,
	})
	if err != nil {
		return nil, err
	}
	entry := &types.AuditLog{
		OrgID:      orgID,
		Action:     types.AuditActionLeadsExport,
		EntityType: "assessment",
		EntityID:   &a.ID,
		Metadata:   datatypes.JSON(meta),
	}
	if actorID != uuid.Nil {
		entry.ActorUserID = &actorID
	}
	if err := s.audit.Create(dbc, entry); err != nil {
		return nil, dberr.Map("write audit log", err)
	}
	s.log.Info("leads exported", "org_id", orgID, "assessment_id", a.ID, "rows", out.Rows)
	return out, nil
}
