package validation

import (
	"github.com/kmoran/personal-library/models"
)

type Register struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func ValidateRegister(in *Register) []string {
	return check(in)
}

func ValidateLogin(in *Login) []string {
	return check(in)
}

// ValidateNewUser guards user documents built internally (registration and
// the OAuth callback) before they reach the store. A local account must
// carry a password hash; a federated one must not need it.
func ValidateNewUser(u *models.User) []string {
	var msgs []string
	if len(u.Username) < 3 || len(u.Username) > 30 {
		msgs = append(msgs, "username must be between 3 and 30 characters")
	}
	if u.Email == "" {
		msgs = append(msgs, "email is required")
	}
	switch u.AuthMethod {
	case models.AuthMethodLocal:
		if u.Password == "" {
			msgs = append(msgs, "password is required for local authentication")
		}
	case models.AuthMethodGoogle:
		if u.GoogleID == "" {
			msgs = append(msgs, "googleId is required for google authentication")
		}
	default:
		msgs = append(msgs, "authMethod must be one of: local, google")
	}
	return msgs
}
