package observability

import (
	"context"
	"testing"

	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

func TestSampleRatioClamped(t *testing.T) {
	cases := map[float64]float64{-0.5: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1}
	for in, want := range cases {
		if got := (OtelConfig{SampleRatio: in}).sampleRatio(); got != want {
			t.Fatalf("sampleRatio(%v): want=%v got=%v", in, want, got)
		}
	}
}

func TestInitOTelDisabledReturnsNilShutdown(t *testing.T) {
	if shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{Enabled: false}); shutdown != nil {
		t.Fatalf("disabled tracing should not install a provider")
	}
}
