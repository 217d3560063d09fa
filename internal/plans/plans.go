// Package plans holds the static subscription limits and the pure quota decision.
package plans

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tier string

const (
	TierFree         Tier = "free"
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierFirm         Tier = "firm"
)

type Resource string

const (
	ResourceAssessments       Resource = "assessments"
	ResourceResponsesPerMonth Resource = "responses_per_month"
	ResourceTeamMembers       Resource = "team_members"
)

// Unlimited marks a limit that is never enforced.
const Unlimited = -1

// GraceMultiplier inflates the monthly response quota before hard denial.
const GraceMultiplier = 1.1

var Resources = []Resource{ResourceAssessments, ResourceResponsesPerMonth, ResourceTeamMembers}

type Limits map[Resource]int

type Table map[Tier]Limits

// DefaultTable is the built-in limit table.
func DefaultTable() Table {
	return Table{
		TierFree:         {ResourceAssessments: 1, ResourceResponsesPerMonth: 50, ResourceTeamMembers: 1},
		TierStarter:      {ResourceAssessments: 5, ResourceResponsesPerMonth: 500, ResourceTeamMembers: 3},
		TierProfessional: {ResourceAssessments: 25, ResourceResponsesPerMonth: 2500, ResourceTeamMembers: 10},
		TierFirm:         {ResourceAssessments: Unlimited, ResourceResponsesPerMonth: Unlimited, ResourceTeamMembers: Unlimited},
	}
}

// ParseTier maps unknown or empty values to the free tier.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierStarter:
		return TierStarter
	case TierProfessional:
		return TierProfessional
	case TierFirm:
		return TierFirm
	default:
		return TierFree
	}
}

func ParseResource(s string) (Resource, bool) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Resources {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Limit returns the tier's limit for r. Missing entries fall back to the free tier, then to 0.
func (t Table) Limit(tier Tier, r Resource) int {
	if l, ok := t[tier][r]; ok {
		return l
	}
	if l, ok := t[TierFree][r]; ok {
		return l
	}
	return 0
}

type fileTable struct {
	Tiers map[string]map[string]int `yaml:"tiers"`
}

// LoadTable reads a YAML override file on top of DefaultTable.
//
//	tiers:
//	  starter:
//	    responses_per_month: 750
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	path = strings.TrimSpace(path)
	if path == "" {
		return table, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan limits: %w", err)
	}
	return mergeYAML(table, raw)
}

func mergeYAML(table Table, raw []byte) (Table, error) {
	var ft fileTable
	if err := yaml.Unmarshal(raw, &ft); err != nil {
		return nil, fmt.Errorf("parse plan limits: %w", err)
	}
	for tierName, limits := range ft.Tiers {
		tier := Tier(strings.ToLower(strings.TrimSpace(tierName)))
		if tier != ParseTier(tierName) {
			return nil, fmt.Errorf("unknown plan tier %q", tierName)
		}
		if table[tier] == nil {
			table[tier] = Limits{}
		}
		for resName, limit := range limits {
			res, ok := ParseResource(resName)
			if !ok {
				return nil, fmt.Errorf("unknown resource %q for tier %q", resName, tierName)
			}
			if limit < Unlimited {
				return nil, fmt.Errorf("invalid limit %d for %s.%s", limit, tierName, resName)
			}
			table[tier][res] = limit
		}
	}
	return table, nil
}

// Entitlement is the answer to "may this tenant use one more unit of a resource".
type Entitlement struct {
	Resource      Resource `json:"resource"`
	Allowed       bool     `json:"allowed"`
	Current       int      `json:"current"`
	Limit         int      `json:"limit"`
	Percentage    int      `json:"percentage"`
	GraceLimit    int      `json:"grace_limit"`
	SoftOverLimit bool     `json:"soft_over_limit"`
	Tier          Tier     `json:"tier"`
}

// GraceLimit returns the effective ceiling for r.
func GraceLimit(r Resource, limit int) int {
	if limit <= 0 || r != ResourceResponsesPerMonth {
		return limit
	}
	// ceil(limit*1.1) in integers; the float product turns 10 into 11.000000000000002.
	return (limit*11 + 9) / 10
}

// Evaluate decides whether current usage leaves room under limit.
// A zero limit always denies.
func Evaluate(tier Tier, r Resource, limit, current int) Entitlement {
	e := Entitlement{Resource: r, Current: current, Limit: limit, Tier: tier}
	switch {
	case limit == Unlimited:
		e.Allowed = true
		e.GraceLimit = Unlimited
		return e
	case limit <= 0:
		e.Limit = 0
		e.GraceLimit = 0
		e.Percentage = 100
		return e
	}
	e.GraceLimit = GraceLimit(r, limit)
	e.Allowed = current < e.GraceLimit
	e.Percentage = int(math.Round(float64(current) / float64(limit) * 100))
	e.SoftOverLimit = e.Allowed && current >= limit
	return e
}
