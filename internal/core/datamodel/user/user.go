package user

import "time"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type User struct {
	UserID             int64     `gorm:"primaryKey;column:user_id"`
	FullName           string    `gorm:"column:full_name;not null"`
	Email              string    `gorm:"column:email;uniqueIndex;not null"`
	Password           string    `gorm:"column:password;not null"`
	UserStatus         string    `gorm:"column:user_status;default:Active"`
	MustChangePassword bool      `gorm:"column:must_change_password;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string { return "users" }

type UserRole struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"column:user_id;not null;index"`
	RoleID int64 `gorm:"column:role_id;not null;index"`
}

func (UserRole) TableName() string { return "user_roles" }
