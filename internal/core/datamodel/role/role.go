package role

import "time"

type Role struct {
	RoleID       int64     `gorm:"primaryKey;column:role_id"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	DepartmentID *int64    `gorm:"column:department_id"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (Role) TableName() string { return "roles" }

type RolePermission struct {
	ID           int64 `gorm:"primaryKey"`
	RoleID       int64 `gorm:"column:role_id;not null;uniqueIndex:idx_role_permission"`
	PermissionID int64 `gorm:"column:permission_id;not null;uniqueIndex:idx_role_permission"`
}

func (RolePermission) TableName() string { return "role_permissions" }
