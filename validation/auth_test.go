package validation

import (
	"testing"

	"github.com/kmoran/personal-library/models"
)

func TestValidateRegister(t *testing.T) {
	in := Register{Username: "alice", Email: "a@x.com", Password: "secret1"}
	if msgs := ValidateRegister(&in); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}

	in = Register{Username: "al", Email: "nope", Password: "short"}
	msgs := ValidateRegister(&in)
	for _, want := range []string{
		"username must be at least 3 characters",
		"email must be a valid email address",
		"password must be at least 6 characters",
	} {
		if !hasMessage(msgs, want) {
			t.Fatalf("missing %q in %v", want, msgs)
		}
	}
}

func TestValidateLogin(t *testing.T) {
	if msgs := ValidateLogin(&Login{Email: "a@x.com", Password: "pw"}); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
	msgs := ValidateLogin(&Login{})
	if !hasMessage(msgs, "email is required") || !hasMessage(msgs, "password is required") {
		t.Fatalf("expected required violations, got %v", msgs)
	}
}

func TestValidateNewUserLocalNeedsPassword(t *testing.T) {
	u := &models.User{
		Username:   "alice",
		Email:      "a@x.com",
		AuthMethod: models.AuthMethodLocal,
	}
	msgs := ValidateNewUser(u)
	if !hasMessage(msgs, "password is required for local authentication") {
		t.Fatalf("expected password violation, got %v", msgs)
	}

	u.Password = "$2a$10$hash"
	if msgs := ValidateNewUser(u); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
}

func TestValidateNewUserGoogleNeedsNoPassword(t *testing.T) {
	u := &models.User{
		Username:   "alice12345",
		Email:      "a@x.com",
		GoogleID:   "1234567890",
		AuthMethod: models.AuthMethodGoogle,
	}
	if msgs := ValidateNewUser(u); len(msgs) != 0 {
		t.Fatalf("expected no violations, got %v", msgs)
	}
}
