package request

import (
	"strings"
	"time"

	"github.com/frahmantamala/access-management/internal"
)

type SubmitRequestDTO struct {
	PermissionID int64      `json:"permission_id" validate:"required"`
	Reason       string     `json:"reason" validate:"required"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

func (d SubmitRequestDTO) Validate() error {
	if d.PermissionID <= 0 {
		return internal.NewValidationFieldError("permission_id", "permission_id is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Reason) == "" {
		return internal.NewValidationFieldError("reason", "reason is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RejectRequestDTO struct {
	RejectionReason string `json:"rejection_reason" validate:"required"`
}
