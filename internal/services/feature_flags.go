package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dohigg1/advisory-hub/internal/data/repos"
	"github.com/dohigg1/advisory-hub/internal/pkg/dbctx"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/rollout"
)

type FeatureFlagService interface {
	IsEnabled(dbc dbctx.Context, orgID uuid.UUID, name string) (bool, error)
	Evaluate(dbc dbctx.Context, orgID uuid.UUID, name string) (rollout.Decision, error)
}

type featureFlagService struct {
	log   *logger.Logger
	flags repos.FeatureFlagRepo
}

func NewFeatureFlagService(log *logger.Logger, flags repos.FeatureFlagRepo) FeatureFlagService {
	return &featureFlagService{
		log:   log.With("service", "FeatureFlagService"),
		flags: flags,
	}
}

func (s *featureFlagService) IsEnabled(dbc dbctx.Context, orgID uuid.UUID, name string) (bool, error) {
	d, err := s.Evaluate(dbc, orgID, name)
	if err != nil {
		return false, err
	}
	return d.Enabled, nil
}

// Evaluate resolves name for orgID. Unknown flags are disabled.
func (s *featureFlagService) Evaluate(dbc dbctx.Context, orgID uuid.UUID, name string) (rollout.Decision, error) {
	tenant := orgID.String()
	row, err := s.flags.GetByName(dbc, name)
	if err != nil {
		return rollout.Decision{}, fmt.Errorf("load flag %q: %w", name, err)
	}
	if row == nil {
		return rollout.Decision{Enabled: false, Source: rollout.SourceDefault, Bucket: rollout.Bucket(tenant)}, nil
	}

	var override *rollout.Override
	o, err := s.flags.GetOverride(dbc, row.ID, orgID)
	if err != nil {
		return rollout.Decision{}, fmt.Errorf("load flag override %q: %w", name, err)
	}
	if o != nil {
		override = &rollout.Override{Enabled: o.Enabled}
	}

	d := rollout.Resolve(rollout.Flag{
		Name:              row.Name,
		GlobalEnabled:     row.GlobalEnabled,
		RolloutPercentage: row.RolloutPercentage,
	}, override, tenant)
	s.log.Debug("flag resolved", "flag", name, "org_id", orgID, "enabled", d.Enabled, "source", d.Source)
	return d, nil
}
