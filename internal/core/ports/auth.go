package ports

import (
	"context"

	"github.com/hska/buch-catalog/internal/core/domain"
)

// UserRepository is the read-only credential store.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthService issues and validates bearer tokens.
type AuthService interface {
	// Login returns domain.ErrInvalidCredentials for both unknown users and
	// wrong passwords.
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	// Validate checks an Authorization header value and returns the subject id.
	Validate(ctx context.Context, authorization string) (string, error)
	// Authenticate validates the header and binds the subject into the returned context.
	Authenticate(ctx context.Context, authorization string) (context.Context, error)
	HasAnyRole(ctx context.Context, subjectID string, roles ...string) bool
}

// LoginLimiter throttles login attempts per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
