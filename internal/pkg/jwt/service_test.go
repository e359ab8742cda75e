package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	actorID := uuid.New()

	tok, err := svc.GenerateActorToken(actorID, RoleClient)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.ActorID != actorID {
		t.Fatalf("actor id = %s, want %s", claims.ActorID, actorID)
	}
	if claims.Role != RoleClient {
		t.Fatalf("role = %q, want %q", claims.Role, RoleClient)
	}
}

func TestGenerateRejectsUnknownRole(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)

	if _, err := svc.GenerateActorToken(uuid.New(), "superuser"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	base := time.Now()
	svc.now = func() time.Time { return base }

	tok, err := svc.GenerateActorToken(uuid.New(), RoleRecruiter)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewHMACService("issuer-secret", time.Hour)
	verifier := NewHMACService("other-secret", time.Hour)

	tok, err := issuer.GenerateActorToken(uuid.New(), RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)

	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}
