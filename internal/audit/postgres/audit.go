package postgres

import (
	"github.com/frahmantamala/access-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(userID *int64, actionType, actionDetails string) error {
	entry := auditDatamodel.AuditLog{
		UserID:        userID,
		ActionType:    actionType,
		ActionDetails: actionDetails,
	}
	return r.db.Create(&entry).Error
}

func (r *AuditRepository) List(page, limit int, search string) (*audit.Page, error) {
	offset := (page - 1) * limit
	like := "%" + search + "%"

	base := r.db.Table("audit_logs al").
		Joins("LEFT JOIN users u ON u.user_id = al.user_id")
	if search != "" {
		base = base.Where(
			"al.action_type LIKE ? OR al.action_details LIKE ? OR u.email LIKE ? OR u.full_name LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []audit.Entry
	err := base.Session(&gorm.Session{}).
		Select("al.log_id AS id, al.user_id, u.full_name AS user_name, u.email AS user_email, al.action_type, al.action_details, al.action_time").
		Order("al.action_time DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return &audit.Page{Rows: rows, Total: total, Page: page, Limit: limit}, nil
}
