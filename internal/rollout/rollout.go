// Package rollout resolves feature flags for a tenant: explicit overrides first, then the
// global switch, then a deterministic percentage bucket derived from the tenant id.
package rollout

import "unicode/utf16"

type Source string

const (
	SourceOverride Source = "override"
	SourceGlobal   Source = "global"
	SourceRollout  Source = "rollout"
	SourceDefault  Source = "default"
)

// Flag is the process-wide definition of a feature.
type Flag struct {
	Name              string
	GlobalEnabled     bool
	RolloutPercentage int
}

// Override is a per-tenant setting that beats every other rule.
type Override struct {
	Enabled bool
}

type Decision struct {
	Enabled bool
	Source  Source
	Bucket  int
}

// Hash is the rolling polynomial hash h = h*31 + c over UTF-16 code units,
// wrapped to signed 32 bits at every step.
func Hash(tenantID string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(tenantID)) {
		h = h*31 + int32(c)
	}
	return h
}

// Bucket maps a tenant id to [0,99].
func Bucket(tenantID string) int {
	h := int64(Hash(tenantID))
	if h < 0 {
		h = -h
	}
	return int(h % 100)
}

func InRollout(tenantID string, pct int) bool {
	return Bucket(tenantID) < pct
}

// Resolve applies the precedence override > global > rollout > disabled.
func Resolve(flag Flag, override *Override, tenantID string) Decision {
	bucket := Bucket(tenantID)
	switch {
	case override != nil:
		return Decision{Enabled: override.Enabled, Source: SourceOverride, Bucket: bucket}
	case flag.GlobalEnabled:
		return Decision{Enabled: true, Source: SourceGlobal, Bucket: bucket}
	case flag.RolloutPercentage > 0 && bucket < flag.RolloutPercentage:
		return Decision{Enabled: true, Source: SourceRollout, Bucket: bucket}
	default:
		return Decision{Enabled: false, Source: SourceDefault, Bucket: bucket}
	}
}
