package audit

import "time"

// AuditLog rows are append-only; nothing updates or deletes them.
type AuditLog struct {
	LogID         int64     `gorm:"primaryKey;column:log_id"`
	UserID        *int64    `gorm:"column:user_id"`
	ActionType    string    `gorm:"column:action_type;not null;index"`
	ActionDetails string    `gorm:"column:action_details"`
	ActionTime    time.Time `gorm:"column:action_time;default:now()"`
}

func (AuditLog) TableName() string { return "audit_logs" }
