package auth

import (
	"context"
	"strconv"

	"github.com/chillzone/chillzone-pos/internal/shared"
)

// User is a cashier account as returned by the backend.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the backend's login response. Some deployments omit the
// user, in which case it is fetched with the token.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Backend authenticates cashiers against the remote API.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Me(ctx context.Context, token string) (User, error)
}

func principalFor(user User, token string) shared.Principal {
	return shared.Principal{
		UserID:    strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Token:     token,
	}
}
