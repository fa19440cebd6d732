package user

import (
	"strings"

	"github.com/frahmantamala/access-management/internal"
)

type CreateUserDTO struct {
	FullName           string `json:"full_name" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required,min=6"`
	RoleID             *int64 `json:"role_id"`
	MustChangePassword bool   `json:"must_change_password"`
}

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.FullName) == "" {
		return internal.NewValidationFieldError("full_name", "full_name is required", internal.ErrCodeNameRequired)
	}
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "must be a valid email address", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 6 {
		return internal.NewValidationError("password must be at least 6 characters", internal.ErrCodePasswordTooShort)
	}
	return nil
}

// UpdateUserDTO is a partial update; nil fields are left untouched. A non-nil
// RoleID replaces all current role assignments.
type UpdateUserDTO struct {
	FullName *string `json:"full_name"`
	Status   *string `json:"user_status"`
	Password *string `json:"password"`
	RoleID   *int64  `json:"role_id"`
}
