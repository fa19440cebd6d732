package auth

import (
	"crypto/rand"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/notification"
)

// Characters for generated temporary passwords. Ambiguous glyphs (0, O, 1,
// l, I) are left out.
const tempPasswordCharset = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@$%*?"

const tempPasswordLength = 12

type Service struct {
	repo       UserRepository
	tokens     TokenGenerator
	mailer     notification.Mailer
	audit      *audit.Service
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo UserRepository, tokens TokenGenerator, mailer notification.Mailer, auditSvc *audit.Service, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		mailer:     mailer,
		audit:      auditSvc,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// SignIn verifies credentials and issues an identity token. Inactive
// accounts are refused even with a correct password.
func (s *Service) SignIn(dto SignInDTO) (*SignInResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	user, err := s.repo.GetByEmailWithRole(email)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if user.Status != "Active" {
		return nil, internal.ErrUserInactive
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("failed to sign token", "user_id", user.ID, "error", err)
		return nil, internal.NewInternalError("Failed to sign in", err)
	}

	s.audit.Log(&user.ID, "SIGN_IN", map[string]interface{}{"email": email})

	return &SignInResult{
		Token:              token,
		ExpiresAt:          expiresAt,
		UserID:             user.ID,
		FullName:           user.FullName,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

// ForgotPassword issues a temporary password and mails it to the account.
// The response is identical whether or not the email exists, so the endpoint
// cannot be used to probe for accounts.
func (s *Service) ForgotPassword(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.GetByEmailWithRole(email)
	if err != nil {
		s.logger.Info("password reset requested for unknown email", "email", email)
		return
	}

	temp, err := generateTempPassword()
	if err != nil {
		s.logger.Error("failed to generate temporary password", "error", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(temp), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash temporary password", "error", err)
		return
	}

	if err := s.repo.UpdatePassword(user.ID, string(hashed), true); err != nil {
		s.logger.Error("failed to store temporary password", "user_id", user.ID, "error", err)
		return
	}

	s.audit.Log(&user.ID, "FORGOT_PASSWORD", map[string]interface{}{"email": email})

	body := "<p>Hello " + user.FullName + ",</p>" +
		"<p>Your temporary password is: <b>" + temp + "</b></p>" +
		"<p>You will be asked to change it on your next sign-in.</p>"
	if err := s.mailer.Send(user.Email, "Your temporary password", body); err != nil {
		s.logger.Error("failed to send temporary password email", "user_id", user.ID, "error", err)
	}
}

// SetPassword replaces the caller's password and clears the must-change
// flag, unblocking the rest of the API.
func (s *Service) SetPassword(userID int64, newPassword string) error {
	if len(newPassword) < 6 {
		return internal.NewValidationError("password must be at least 6 characters", internal.ErrCodePasswordTooShort)
	}

	if _, err := s.repo.GetByID(userID); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return internal.NewInternalError("Failed to set password", err)
	}

	if err := s.repo.UpdatePassword(userID, string(hashed), false); err != nil {
		s.logger.Error("failed to update password", "user_id", userID, "error", err)
		return internal.NewInternalError("Failed to set password", err)
	}

	s.audit.Log(&userID, "SET_PASSWORD", "User changed own password")
	return nil
}

// ValidateToken parses and verifies a signed identity token.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokens.Validate(tokenString)
}

func generateTempPassword() (string, error) {
	max := big.NewInt(int64(len(tempPasswordCharset)))
	out := make([]byte, tempPasswordLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordCharset[n.Int64()]
	}
	return string(out), nil
}

type SignInResult struct {
	Token              string    `json:"token"`
	ExpiresAt          time.Time `json:"expires_at"`
	UserID             int64     `json:"user_id"`
	FullName           string    `json:"full_name"`
	Role               string    `json:"role"`
	MustChangePassword bool      `json:"must_change_password"`
}
