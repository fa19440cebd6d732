package postgres

import (
	"time"

	permissionDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/permission"
	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.Repository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetAll() ([]permission.Permission, error) {
	var rows []permissionDatamodel.Permission
	if err := r.db.Order("permission_id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	perms := make([]permission.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, toDomain(row))
	}
	return perms, nil
}

func (r *PermissionRepository) GetByID(id int64) (*permission.Permission, error) {
	var row permissionDatamodel.Permission
	if err := r.db.Where("permission_id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrPermissionNotFound
		}
		return nil, err
	}
	perm := toDomain(row)
	return &perm, nil
}

func (r *PermissionRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&permissionDatamodel.Permission{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("permission_id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PermissionRepository) Create(p *permission.Permission) error {
	row := permissionDatamodel.Permission{
		Name:        p.Name,
		Description: p.Description,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	p.ID = row.PermissionID
	p.CreatedAt = row.CreatedAt
	return nil
}

func (r *PermissionRepository) Update(p *permission.Permission) error {
	return r.db.Model(&permissionDatamodel.Permission{}).
		Where("permission_id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
		}).Error
}

func (r *PermissionRepository) Delete(id int64) (bool, error) {
	res := r.db.Where("permission_id = ?", id).Delete(&permissionDatamodel.Permission{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PermissionRepository) IsAttachedToRoles(id int64) (bool, error) {
	var count int64
	err := r.db.Table("role_permissions").Where("permission_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *PermissionRepository) IsGrantedToUsers(id int64) (bool, error) {
	var count int64
	err := r.db.Table("user_permissions").Where("permission_id = ?", id).Count(&count).Error
	return count > 0, err
}

// EffectiveForUser unions role-derived permissions with direct grants whose
// expiry is null or strictly in the future. The UNION deduplicates a
// permission held both ways.
func (r *PermissionRepository) EffectiveForUser(userID int64, now time.Time) ([]permission.Permission, error) {
	var rows []struct {
		PermissionID int64
		Name         string
	}
	err := r.db.Raw(`
		SELECT DISTINCT p.permission_id, p.name
		FROM permissions p
		JOIN role_permissions rp ON p.permission_id = rp.permission_id
		JOIN user_roles ur ON rp.role_id = ur.role_id
		WHERE ur.user_id = ?
		UNION
		SELECT DISTINCT p.permission_id, p.name
		FROM permissions p
		JOIN user_permissions up ON p.permission_id = up.permission_id
		WHERE up.user_id = ? AND (up.expires_at IS NULL OR up.expires_at > ?)
	`, userID, userID, now).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	perms := make([]permission.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, permission.Permission{ID: row.PermissionID, Name: row.Name})
	}
	return perms, nil
}

func toDomain(row permissionDatamodel.Permission) permission.Permission {
	return permission.Permission{
		ID:          row.PermissionID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}
