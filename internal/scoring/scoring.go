// Package scoring holds the pure score arithmetic used when a lead completes an assessment.
package scoring

import (
	"fmt"
	"math"
	"sort"
)

// CategoryResult is one category's raw percentage and its configured weight.
type CategoryResult struct {
	Percentage float64
	Weight     float64
}

// Tier is a labelled, inclusive percentage band.
type Tier struct {
	ID        string
	Label     string
	MinPct    int
	MaxPct    int
	SortOrder int
}

// RoundHalfUp rounds x to the nearest integer, ties away from zero for positives.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Percentage returns round(100*points/possible), or 0 when nothing was possible.
func Percentage(points, possible float64) int {
	if possible <= 0 {
		return 0
	}
	return RoundHalfUp(100 * points / possible)
}

// RawPercentage is Percentage without rounding.
func RawPercentage(points, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	return 100 * points / possible
}

// WeightedPercentage aggregates category percentages into one overall value.
// A zero weight sum falls back to the unweighted mean. Rounding happens once, at the end.
// Callers must not pass an empty slice.
func WeightedPercentage(categories []CategoryResult) int {
	if len(categories) == 0 {
		return 0
	}
	var weightSum, weighted, plain float64
	for _, c := range categories {
		w := c.Weight
		if w < 0 {
			w = 0
		}
		weightSum += w
		weighted += c.Percentage * w
		plain += c.Percentage
	}
	if weightSum == 0 {
		return RoundHalfUp(plain / float64(len(categories)))
	}
	return RoundHalfUp(weighted / weightSum)
}

func sortedTiers(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// MatchTier returns the first tier, in ascending sort order, whose band contains pct.
// Both band edges are inclusive.
func MatchTier(pct int, tiers []Tier) (Tier, bool) {
	for _, t := range sortedTiers(tiers) {
		if t.MinPct > t.MaxPct {
			continue
		}
		if pct >= t.MinPct && pct <= t.MaxPct {
			return t, true
		}
	}
	return Tier{}, false
}

// ValidateBands reports the first way the tiers fail to partition [0,100].
func ValidateBands(tiers []Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("no tiers configured")
	}
	sorted := sortedTiers(tiers)
	if sorted[0].MinPct != 0 {
		return fmt.Errorf("tier %q starts at %d, want 0", sorted[0].Label, sorted[0].MinPct)
	}
	for i, t := range sorted {
		if t.MinPct > t.MaxPct {
			return fmt.Errorf("tier %q has min %d above max %d", t.Label, t.MinPct, t.MaxPct)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		switch {
		case t.MinPct <= prev.MaxPct:
			return fmt.Errorf("tier %q overlaps %q", t.Label, prev.Label)
		case t.MinPct > prev.MaxPct+1:
			return fmt.Errorf("gap between %q and %q", prev.Label, t.Label)
		}
	}
	if last := sorted[len(sorted)-1]; last.MaxPct != 100 {
		return fmt.Errorf("tier %q ends at %d, want 100", last.Label, last.MaxPct)
	}
	return nil
}
