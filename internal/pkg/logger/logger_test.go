package logger

import "testing"

func TestSanitizeValueRedactsSensitiveKeys(t *testing.T) {
	for _, key := range []string{"email", "webhook_secret", "x-webhook-signature", "authorization"} {
		if got := sanitizeValue(key, "value"); got != "[REDACTED]" {
			t.Fatalf("%s: want=%q got=%v", key, "[REDACTED]", got)
		}
	}
}

func TestSanitizeValueHashesLeadIDs(t *testing.T) {
	a := sanitizeValue("lead_id", "abc")
	b := sanitizeValue("lead_id", "abc")
	if a != b {
		t.Fatalf("hash not stable: %v vs %v", a, b)
	}
	s, ok := a.(string)
	if !ok || len(s) != len("hash:")+12 {
		t.Fatalf("unexpected hash shape: %v", a)
	}
}

func TestSanitizeValuePassesThroughPlainKeys(t *testing.T) {
	if got := sanitizeValue("attempt", 2); got != 2 {
		t.Fatalf("attempt: want=2 got=%v", got)
	}
}
