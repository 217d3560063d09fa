package scoring

import "testing"

func TestWeightedPercentage(t *testing.T) {
	cases := []struct {
		name string
		in   []CategoryResult
		want int
	}{
		{"weighted", []CategoryResult{{80, 40}, {60, 30}, {90, 30}}, 77},
		{"zero weights fall back to mean", []CategoryResult{{80, 0}, {60, 0}, {40, 0}}, 60},
		{"single category weight 100", []CategoryResult{{73, 100}}, 73},
		{"rounds once at the end", []CategoryResult{{33.4, 1}, {33.4, 1}}, 33},
		{"half rounds up", []CategoryResult{{50, 1}, {51, 1}}, 51},
		{"negative weight ignored", []CategoryResult{{100, -5}, {20, 1}}, 20},
	}
	for _, tc := range cases {
		if got := WeightedPercentage(tc.in); got != tc.want {
			t.Fatalf("%s: want=%d got=%d", tc.name, tc.want, got)
		}
	}
}

func TestWeightedPercentageMatchesFormula(t *testing.T) {
	in := []CategoryResult{{12.5, 3}, {99, 7}, {45.25, 2.5}}
	var num, den float64
	for _, c := range in {
		num += c.Percentage * c.Weight
		den += c.Weight
	}
	want := RoundHalfUp(num / den)
	if got := WeightedPercentage(in); got != want {
		t.Fatalf("want=%d got=%d", want, got)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(7, 9); got != 78 {
		t.Fatalf("Percentage(7,9): want=78 got=%d", got)
	}
	if got := Percentage(5, 0); got != 0 {
		t.Fatalf("Percentage(5,0): want=0 got=%d", got)
	}
}

func standardTiers() []Tier {
	return []Tier{
		{ID: "c", Label: "Advanced", MinPct: 71, MaxPct: 100, SortOrder: 2},
		{ID: "a", Label: "Beginner", MinPct: 0, MaxPct: 40, SortOrder: 0},
		{ID: "b", Label: "Developing", MinPct: 41, MaxPct: 70, SortOrder: 1},
	}
}

func TestMatchTierBoundaries(t *testing.T) {
	cases := map[int]string{0: "Beginner", 40: "Beginner", 41: "Developing", 70: "Developing", 71: "Advanced", 100: "Advanced"}
	for pct, want := range cases {
		got, ok := MatchTier(pct, standardTiers())
		if !ok || got.Label != want {
			t.Fatalf("MatchTier(%d): want=%q got=%q ok=%v", pct, want, got.Label, ok)
		}
	}
}

func TestMatchTierExactlyOneForEveryPercentage(t *testing.T) {
	tiers := standardTiers()
	for pct := 0; pct <= 100; pct++ {
		n := 0
		for _, tier := range tiers {
			if pct >= tier.MinPct && pct <= tier.MaxPct {
				n++
			}
		}
		if n != 1 {
			t.Fatalf("pct %d covered by %d tiers", pct, n)
		}
		if _, ok := MatchTier(pct, tiers); !ok {
			t.Fatalf("MatchTier(%d): no tier", pct)
		}
	}
}

func TestMatchTierEmptyAndOverlap(t *testing.T) {
	if _, ok := MatchTier(50, nil); ok {
		t.Fatalf("MatchTier on empty list should not match")
	}
	overlapping := []Tier{
		{Label: "Second", MinPct: 40, MaxPct: 100, SortOrder: 1},
		{Label: "First", MinPct: 0, MaxPct: 60, SortOrder: 0},
	}
	got, ok := MatchTier(50, overlapping)
	if !ok || got.Label != "First" {
		t.Fatalf("overlap: want=%q got=%q", "First", got.Label)
	}
}

func TestValidateBands(t *testing.T) {
	if err := ValidateBands(standardTiers()); err != nil {
		t.Fatalf("ValidateBands: %v", err)
	}
	gap := []Tier{{Label: "a", MinPct: 0, MaxPct: 40}, {Label: "b", MinPct: 45, MaxPct: 100, SortOrder: 1}}
	if err := ValidateBands(gap); err == nil {
		t.Fatalf("ValidateBands: expected gap error")
	}
	short := []Tier{{Label: "a", MinPct: 0, MaxPct: 90}}
	if err := ValidateBands(short); err == nil {
		t.Fatalf("ValidateBands: expected end error")
	}
}
