package department

import "time"

type Department struct {
	DepartmentID int64     `gorm:"primaryKey;column:department_id"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	Description  *string   `gorm:"column:description"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (Department) TableName() string { return "departments" }
