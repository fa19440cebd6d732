package request

import "time"

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// PermissionRequest transitions exactly once, Pending to Approved or
// Rejected, and is immutable afterwards.
type PermissionRequest struct {
	RequestID       int64      `gorm:"primaryKey;column:request_id"`
	UserID          int64      `gorm:"column:user_id;not null;index"`
	PermissionID    int64      `gorm:"column:permission_id;not null"`
	Reason          string     `gorm:"column:reason"`
	RequestedAt     time.Time  `gorm:"column:requested_at;default:now()"`
	Status          string     `gorm:"column:status;default:Pending;index"`
	ReviewedBy      *int64     `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	ExpiresAt       *time.Time `gorm:"column:expires_at"`
}

func (PermissionRequest) TableName() string { return "permission_requests" }
