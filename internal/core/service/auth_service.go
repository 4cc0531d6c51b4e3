package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/core/ports"
	"github.com/hska/buch-catalog/internal/core/principal"
	"github.com/hska/buch-catalog/internal/core/token"
)

const (
	defaultTokenLifetime = time.Hour
	bearerScheme         = "Bearer"
)

// AuthConfig is the immutable auth configuration loaded at startup.
type AuthConfig struct {
	Issuer   string
	Lifetime time.Duration
	// BcryptCost is used for the dummy hash compared against when a user does
	// not exist. Stored hashes carry their own cost.
	BcryptCost int
}

// AuthService implements login and bearer token validation.
type AuthService struct {
	users     ports.UserRepository
	codec     *token.Codec
	issuer    string
	lifetime  time.Duration
	dummyHash []byte
	now       func() time.Time
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, codec *token.Codec, cfg AuthConfig, log zerolog.Logger) (*AuthService, error) {
	lifetime := cfg.Lifetime.Truncate(time.Second)
	if lifetime <= 0 {
		lifetime = defaultTokenLifetime
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	return &AuthService{
		users:     users,
		codec:     codec,
		issuer:    cfg.Issuer,
		lifetime:  lifetime,
		dummyHash: dummy,
		now:       time.Now,
		log:       log,
	}, nil
}

// Login checks the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.checkPassword(user, password) {
		s.log.Debug().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	signed, err := s.codec.Encode(jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.lifetime)),
		Issuer:    s.issuer,
		Subject:   user.ID,
		ID:        uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	roles := make([]string, len(user.Roles))
	copy(roles, user.Roles)

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")

	return &domain.LoginResult{
		Token:     signed,
		TokenType: domain.TokenTypeBearer,
		ExpiresIn: int64(s.lifetime / time.Second),
		Roles:     roles,
	}, nil
}

// checkPassword always runs one bcrypt comparison so unknown users cost as
// much as wrong passwords.
func (s *AuthService) checkPassword(user *domain.User, password string) bool {
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Validate checks an Authorization header value stage by stage and returns
// the id of the subject it was issued to.
func (s *AuthService) Validate(ctx context.Context, authorization string) (string, error) {
	if authorization == "" {
		return "", domain.ErrAuthorizationMissing
	}

	scheme, credential, ok := strings.Cut(authorization, " ")
	if !ok || scheme == "" || credential == "" {
		return "", domain.ErrAuthorizationMalformed
	}
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", domain.ErrSchemeInvalid
	}

	segments := strings.Split(credential, ".")
	if len(segments) != 3 || segments[1] == "" || segments[2] == "" {
		return "", domain.ErrTokenMalformed
	}

	decoded, err := s.codec.Decode(credential)
	if err != nil {
		return "", err
	}
	if decoded.Header.Algorithm != s.codec.Algorithm().Name() {
		return "", fmt.Errorf("%w: %q", domain.ErrAlgorithmMismatch, decoded.Header.Algorithm)
	}
	if err := s.codec.Verify(decoded); err != nil {
		return "", err
	}

	exp, err := decoded.Claims.GetExpirationTime()
	if err != nil || exp == nil || !s.now().Before(exp.Time) {
		return "", domain.ErrTokenExpired
	}

	if iss, err := decoded.Claims.GetIssuer(); err != nil || iss != s.issuer {
		return "", domain.ErrIssuerInvalid
	}

	sub, err := decoded.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrSubjectUnknown
	}
	user, err := s.users.FindByID(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrSubjectUnknown
		}
		return "", fmt.Errorf("validate: resolve subject: %w", err)
	}

	return user.ID, nil
}

// Authenticate validates authorization and returns ctx carrying the principal.
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (context.Context, error) {
	subjectID, err := s.Validate(ctx, authorization)
	if err != nil {
		return ctx, err
	}
	return principal.WithPrincipal(ctx, principal.Principal{SubjectID: subjectID}), nil
}

// HasAnyRole reports whether the subject holds at least one of roles. An
// empty role list always passes; an unknown subject never does.
func (s *AuthService) HasAnyRole(ctx context.Context, subjectID string, roles ...string) bool {
	if len(roles) == 0 {
		return true
	}

	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Warn().Err(err).Str("user_id", subjectID).Msg("role lookup failed")
		}
		return false
	}

	for _, role := range user.Roles {
		if slices.Contains(roles, role) {
			return true
		}
	}
	return false
}
