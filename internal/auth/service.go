package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
	"github.com/chillzone/chillzone-pos/internal/shared"
)

// ErrNotLoggedIn indicates the session has no cashier bound to it.
var ErrNotLoggedIn = fmt.Errorf("auth: not logged in: %w", httpx.ErrUnauthorized)

// FieldError lists invalid login fields.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string { return "auth: invalid credentials form" }

func (e *FieldError) Unwrap() error { return httpx.ErrValidation }

// Service logs cashiers in and out of their session.
type Service struct {
	backend  Backend
	validate *validator.Validate
}

// NewService constructs the auth service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend, validate: validator.New()}
}

// Login authenticates against the backend and binds the cashier to sess.
func (s *Service) Login(ctx context.Context, sess *shared.Session, creds Credentials) (User, error) {
	if sess == nil {
		return User{}, shared.ErrSessionMissing
	}
	creds.Email = strings.TrimSpace(creds.Email)
	if err := s.validate.Struct(creds); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
			return User{}, &FieldError{Fields: fields}
		}
		return User{}, err
	}

	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		return User{}, err
	}
	if result.Token == "" {
		return User{}, fmt.Errorf("auth: login returned no token: %w", httpx.ErrUpstream)
	}
	user := User{Email: creds.Email}
	if result.User != nil {
		user = *result.User
	} else {
		me, err := s.backend.Me(ctx, result.Token)
		if err != nil {
			return User{}, err
		}
		user = me
	}
	sess.SetPrincipal(principalFor(user, result.Token))
	return user, nil
}

// Me refreshes the session's cashier from the backend using the token held
// in the session.
func (s *Service) Me(ctx context.Context, sess *shared.Session) (User, error) {
	token := sess.Token()
	if token == "" {
		return User{}, ErrNotLoggedIn
	}
	user, err := s.backend.Me(ctx, token)
	if err != nil {
		return User{}, err
	}
	sess.SetPrincipal(principalFor(user, token))
	return user, nil
}
