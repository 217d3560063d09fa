package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	"github.com/dohigg1/advisory-hub/internal/data/repos/testutil"
	types "github.com/dohigg1/advisory-hub/internal/domain"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type memoryExportStore struct {
	keys    []string
	content []byte
}

func (s *memoryExportStore) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	s.content = raw
	return "gs://exports/" + key, nil
}

func (s *memoryExportStore) Close() error { return nil }

func TestExportLeadsWritesCSVAndOneAuditRow(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := logger.Nop()

	org := testutil.SeedOrg(t, ctx, gdb, "professional")
	a := testutil.SeedAssessment(t, ctx, gdb, org.ID, types.AssessmentSettings{})
	done := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	scored := testutil.SeedLead(t, ctx, gdb, a, "jo@example.com", types.LeadStatusCompleted, &done)
	testutil.SeedLead(t, ctx, gdb, a, "sam@example.com", types.LeadStatusStarted, nil)

	scoreRepo := repos.NewScoreRepo(gdb, log)
	if err := scoreRepo.Create(dbc, &types.Score{LeadID: scored.ID, AssessmentID: a.ID, Percentage: 64, TierLabel: "Developing"}); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	auditRepo := repos.NewAuditLogRepo(gdb, log)
	store := &memoryExportStore{}
	svc := NewExportService(log, repos.NewAssessmentRepo(gdb, log), repos.NewLeadRepo(gdb, log), scoreRepo, auditRepo, store, fixedNow)

	actor := uuid.New()
	out, err := svc.ExportLeads(dbc, org.ID, actor, a.ID)
	if err != nil {
		t.Fatalf("ExportLeads: %v", err)
	}
	if out.Rows != 2 || out.ContentType != "text/csv" {
		t.Fatalf("export: got=%+v", out)
	}
	if len(store.keys) != 1 || out.ObjectURI != "gs://exports/"+store.keys[0] || !bytes.Equal(store.content, out.Data) {
		t.Fatalf("upload: keys=%v uri=%q", store.keys, out.ObjectURI)
	}

	records, err := csv.NewReader(bytes.NewReader(out.Data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 || records[0][0] != "lead_id" {
		t.Fatalf("csv rows: got=%v", records)
	}
	var found bool
	for _, r := range records[1:] {
		if r[1] == "jo@example.com" {
			found = true
			if r[11] != "64" || r[12] != "Developing" || r[10] != "2026-03-03T08:00:00Z" {
				t.Fatalf("scored row: got=%v", r)
			}
		}
	}
	if !found {
		t.Fatalf("scored lead missing from export")
	}

	logs, err := auditRepo.ListByOrg(dbc, org.ID, 10)
	if err != nil {
		t.Fatalf("ListByOrg: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "leads.export" || logs[0].ActorUserID == nil || *logs[0].ActorUserID != actor {
		t.Fatalf("audit rows: got=%+v", logs)
	}
}

func TestExportLeadsForeignAssessment(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := logger.Nop()

	owner := testutil.SeedOrg(t, ctx, gdb, "firm")
	other := testutil.SeedOrg(t, ctx, gdb, "firm")
	a := testutil.SeedAssessment(t, ctx, gdb, owner.ID, types.AssessmentSettings{})
	auditRepo := repos.NewAuditLogRepo(gdb, log)
	svc := NewExportService(log, repos.NewAssessmentRepo(gdb, log), repos.NewLeadRepo(gdb, log), repos.NewScoreRepo(gdb, log), auditRepo, nil, nil)

	if _, err := svc.ExportLeads(dbc, other.ID, uuid.New(), a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound got=%v", err)
	}
	if logs, _ := auditRepo.ListByOrg(dbc, other.ID, 10); len(logs) != 0 {
		t.Fatalf("failed export must not be audited: got=%d", len(logs))
	}
}
