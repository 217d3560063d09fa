package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dohigg1/advisory-hub/internal/domain"
)

func SeedOrg(tb testing.TB, ctx context.Context, tx *gorm.DB, tier string) *types.Organization {
	tb.Helper()
	org := &types.Organization{ID: uuid.New(), Name: "Acme Advisory", PlanTier: tier}
	if err := tx.WithContext(ctx).Create(org).Error; err != nil {
		tb.Fatalf("seed org: %v", err)
	}
	return org
}

func SeedAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, settings types.AssessmentSettings) *types.Assessment {
	tb.Helper()
	raw, err := json.Marshal(settings)
	if err != nil {
		tb.Fatalf("marshal settings: %v", err)
	}
	now := time.Now().UTC()
	a := &types.Assessment{
		ID:          uuid.New(),
		OrgID:       orgID,
		Title:       "Readiness Check",
		Status:      types.AssessmentStatusPublished,
		Settings:    raw,
		PublishedAt: &now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assessment: %v", err)
	}
	return a
}

func SeedLead(tb testing.TB, ctx context.Context, tx *gorm.DB, a *types.Assessment, email, status string, completedAt *time.Time) *types.Lead {
	tb.Helper()
	l := &types.Lead{
		ID:           uuid.New(),
		AssessmentID: a.ID,
		OrgID:        a.OrgID,
		Email:        email,
		Status:       status,
		CompletedAt:  completedAt,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lead: %v", err)
	}
	return l
}
