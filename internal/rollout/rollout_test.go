package rollout

import (
	"fmt"
	"testing"
)

func TestHashKnownValues(t *testing.T) {
	cases := map[string]int32{
		"":      0,
		"a":     97,
		"abc":   96354,
		"hello": 99162322,
		// wraps to exactly MinInt32
		"polygenelubricants": -2147483648,
	}
	for in, want := range cases {
		if got := Hash(in); got != want {
			t.Fatalf("Hash(%q): want=%d got=%d", in, want, got)
		}
	}
}

func TestBucket(t *testing.T) {
	cases := map[string]int{"": 0, "a": 97, "abc": 54, "hello": 22, "polygenelubricants": 48}
	for in, want := range cases {
		if got := Bucket(in); got != want {
			t.Fatalf("Bucket(%q): want=%d got=%d", in, want, got)
		}
	}
}

func TestBucketDeterministicAndInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("org-%d-%x", i, i*7919)
		b := Bucket(id)
		if b < 0 || b > 99 {
			t.Fatalf("Bucket(%q) out of range: %d", id, b)
		}
		if again := Bucket(id); again != b {
			t.Fatalf("Bucket(%q) unstable: %d vs %d", id, b, again)
		}
	}
}

func TestResolveRolloutExtremes(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("tenant-%d", i)
		if d := Resolve(Flag{RolloutPercentage: 100}, nil, id); !d.Enabled || d.Source != SourceRollout {
			t.Fatalf("pct=100 %q: got=%+v", id, d)
		}
		if d := Resolve(Flag{RolloutPercentage: 0}, nil, id); d.Enabled || d.Source != SourceDefault {
			t.Fatalf("pct=0 %q: got=%+v", id, d)
		}
	}
}

func TestResolvePrecedence(t *testing.T) {
	d := Resolve(Flag{GlobalEnabled: true, RolloutPercentage: 100}, &Override{Enabled: false}, "abc")
	if d.Enabled || d.Source != SourceOverride {
		t.Fatalf("disabled override: got=%+v", d)
	}
	d = Resolve(Flag{}, &Override{Enabled: true}, "abc")
	if !d.Enabled || d.Source != SourceOverride {
		t.Fatalf("enabled override: got=%+v", d)
	}
	d = Resolve(Flag{GlobalEnabled: true}, nil, "abc")
	if !d.Enabled || d.Source != SourceGlobal {
		t.Fatalf("global: got=%+v", d)
	}
	// "abc" lands in bucket 54
	if d = Resolve(Flag{RolloutPercentage: 55}, nil, "abc"); !d.Enabled {
		t.Fatalf("bucket 54 < 55 should be enabled: got=%+v", d)
	}
	if d = Resolve(Flag{RolloutPercentage: 54}, nil, "abc"); d.Enabled {
		t.Fatalf("bucket 54 < 54 should be disabled: got=%+v", d)
	}
}
