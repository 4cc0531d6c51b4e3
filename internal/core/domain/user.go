package domain

import "errors"

const (
	RoleAdmin       = "admin"
	RoleMitarbeiter = "mitarbeiter"
	RoleKunde       = "kunde"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User models an account in the credential store. The service only reads users.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email,omitempty"`
	PasswordHash string   `json:"-"`
	Roles        []string `json:"roles"`
}

// TokenTypeBearer is the only token type issued by login.
const TokenTypeBearer = "Bearer"

// LoginResult is returned once after a successful login.
type LoginResult struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"`
	Roles     []string `json:"roles"`
}
