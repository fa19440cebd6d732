package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthUser is the credential-bearing view of an account, joined with its
// primary role name for the token claims.
type AuthUser struct {
	ID                 int64
	FullName           string
	Email              string
	PasswordHash       string
	Status             string
	MustChangePassword bool
	Role               string
}

// Claims is the signed identity the gate and middleware trust without
// re-querying storage. Fine-grained permissions are deliberately absent; the
// resolver always recomputes those.
type Claims struct {
	UserID             int64  `json:"user_id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates signed identity tokens.
type TokenGenerator interface {
	Generate(user *AuthUser) (token string, expiresAt time.Time, err error)
	Validate(tokenString string) (*Claims, error)
}

type UserRepository interface {
	// GetByEmailWithRole loads the account plus its role name; a user with
	// no role assignment comes back with an empty role.
	GetByEmailWithRole(email string) (*AuthUser, error)
	GetByID(id int64) (*AuthUser, error)
	UpdatePassword(userID int64, passwordHash string, mustChange bool) error
}
