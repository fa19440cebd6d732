package menu

import "time"

type Menu struct {
	ID        int64     `gorm:"primaryKey"`
	Label     string    `gorm:"column:label;not null"`
	Route     string    `gorm:"column:route;not null"`
	MenuKey   string    `gorm:"column:menu_key;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
}

func (Menu) TableName() string { return "menus" }

type MenuPermission struct {
	ID           int64 `gorm:"primaryKey"`
	MenuID       int64 `gorm:"column:menu_id;not null;index"`
	PermissionID int64 `gorm:"column:permission_id;not null;index"`
}

func (MenuPermission) TableName() string { return "menu_permissions" }
