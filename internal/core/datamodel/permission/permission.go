package permission

import "time"

type Permission struct {
	PermissionID int64     `gorm:"primaryKey;column:permission_id"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	Description  *string   `gorm:"column:description"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (Permission) TableName() string { return "permissions" }

// UserPermission is a direct grant. Deliberately not unique on
// (user_id, permission_id): duplicate grants are allowed, and an expired row
// is inert rather than deleted.
type UserPermission struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;not null;index"`
	PermissionID int64      `gorm:"column:permission_id;not null;index"`
	ExpiresAt    *time.Time `gorm:"column:expires_at"`
	GrantedBy    *int64     `gorm:"column:granted_by"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
}

func (UserPermission) TableName() string { return "user_permissions" }
