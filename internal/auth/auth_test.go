package auth

import (
	"context"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", 1)

	token, err := tokens.Generate(7, "Asha", "accounts")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	actor, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if actor.ID != 7 || actor.Name != "Asha" || actor.Role != "accounts" {
		t.Errorf("actor = %+v, want {7 Asha accounts}", actor)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", 1).Generate(7, "Asha", "accounts")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := NewTokenManager("secret-b", 1).Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := NewTokenManager("secret", 1).Verify("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestActorFromFallsBackToSystem(t *testing.T) {
	actor := ActorFrom(context.Background())
	if actor.Name != "System" {
		t.Errorf("fallback actor = %+v, want System", actor)
	}

	ctx := WithActor(context.Background(), Actor{ID: 3, Name: "Ravi", Role: "admin"})
	actor = ActorFrom(ctx)
	if actor.ID != 3 || actor.Name != "Ravi" {
		t.Errorf("actor = %+v, want {3 Ravi admin}", actor)
	}
}
