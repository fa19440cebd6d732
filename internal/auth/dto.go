package auth

import (
	"strings"

	"github.com/frahmantamala/access-management/internal"
)

type SignInDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d SignInDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type SetPasswordDTO struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
