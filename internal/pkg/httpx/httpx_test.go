package httpx

import (
	"context"
	"testing"
	"time"
)

func TestIsSuccessStatus(t *testing.T) {
	cases := map[int]bool{199: false, 200: true, 204: true, 299: true, 300: false, 500: false}
	for code, want := range cases {
		if got := IsSuccessStatus(code); got != want {
			t.Fatalf("IsSuccessStatus(%d): want=%v got=%v", code, want, got)
		}
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	s := "abécd" // é is two bytes at offsets 2-3
	if got := Truncate(s, 3); got != "ab" {
		t.Fatalf("Truncate: want=%q got=%q", "ab", got)
	}
	if got := Truncate(s, 100); got != s {
		t.Fatalf("Truncate: want=%q got=%q", s, got)
	}
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); err == nil {
		t.Fatalf("SleepContext: expected context error")
	}
}
