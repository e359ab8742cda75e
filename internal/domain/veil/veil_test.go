package veil

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestAnonymize_Deterministic(t *testing.T) {
	id := uuid.New()

	a := Anonymize(id, "Backend Engineer")
	b := Anonymize(id, "Backend Engineer")

	if a != b {
		t.Fatalf("expected identical labels, got %q vs %q", a.Label, b.Label)
	}
	if !strings.HasPrefix(a.Label, "Backend Engineer Candidate #") {
		t.Fatalf("unexpected label %q", a.Label)
	}
	if len(a.Code) != codeLen {
		t.Fatalf("expected code length %d, got %d", codeLen, len(a.Code))
	}
}

func TestAnonymize_DistinctSubmissions(t *testing.T) {
	a := Anonymize(uuid.New(), "Backend Engineer")
	b := Anonymize(uuid.New(), "Backend Engineer")

	if a.Code == b.Code {
		t.Fatalf("expected distinct codes for distinct submissions")
	}
}

func TestAnonymize_EmptyTitleFallback(t *testing.T) {
	a := Anonymize(uuid.New(), "   ")
	if !strings.HasPrefix(a.Label, "Candidate #") {
		t.Fatalf("unexpected fallback label %q", a.Label)
	}
}
