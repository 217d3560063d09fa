package dberr

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperr "github.com/dohigg1/advisory-hub/internal/pkg/errors"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: lead.assessment_id, lead.email"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestMap(t *testing.T) {
	if err := Map("op", gorm.ErrRecordNotFound); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("not found: got=%v", err)
	}
	if err := Map("op", &pgconn.PgError{Code: "23505"}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("conflict: got=%v", err)
	}
	if err := Map("op", errors.New("boom")); !errors.Is(err, apperr.ErrRetryable) {
		t.Fatalf("retryable: got=%v", err)
	}
	if Map("op", nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure should be transient")
	}
	if IsTransient(errors.New("syntax error")) {
		t.Fatalf("syntax error should not be transient")
	}
}
