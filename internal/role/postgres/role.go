package postgres

import (
	"github.com/frahmantamala/access-management/internal"
	roleDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/role"
	"github.com/frahmantamala/access-management/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.Repository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetAll() ([]role.Role, error) {
	var rows []roleDatamodel.Role
	if err := r.db.Order("role_id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	roles := make([]role.Role, 0, len(rows))
	for _, row := range rows {
		domain, err := r.hydrate(row)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *domain)
	}
	return roles, nil
}

func (r *RoleRepository) GetByID(id int64) (*role.Role, error) {
	var row roleDatamodel.Role
	if err := r.db.Where("role_id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRoleNotFound
		}
		return nil, err
	}
	return r.hydrate(row)
}

// hydrate attaches the aggregated permission ids/names and the department
// name to a role row.
func (r *RoleRepository) hydrate(row roleDatamodel.Role) (*role.Role, error) {
	var perms []struct {
		PermissionID int64
		Name         string
	}
	err := r.db.Raw(`
		SELECT p.permission_id, p.name
		FROM permissions p
		JOIN role_permissions rp ON p.permission_id = rp.permission_id
		WHERE rp.role_id = ?
		ORDER BY p.permission_id ASC
	`, row.RoleID).Scan(&perms).Error
	if err != nil {
		return nil, err
	}

	domain := &role.Role{
		ID:            row.RoleID,
		Name:          row.Name,
		DepartmentID:  row.DepartmentID,
		PermissionIDs: make([]int64, 0, len(perms)),
		Permissions:   make([]string, 0, len(perms)),
		CreatedAt:     row.CreatedAt,
	}
	for _, p := range perms {
		domain.PermissionIDs = append(domain.PermissionIDs, p.PermissionID)
		domain.Permissions = append(domain.Permissions, p.Name)
	}

	if row.DepartmentID != nil {
		var deptName string
		err := r.db.Table("departments").
			Where("department_id = ?", *row.DepartmentID).
			Pluck("name", &deptName).Error
		if err != nil {
			return nil, err
		}
		if deptName != "" {
			domain.DepartmentName = &deptName
		}
	}
	return domain, nil
}

func (r *RoleRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&roleDatamodel.Role{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("role_id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RoleRepository) CreateWithPermissions(domain *role.Role, permissionIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		row := roleDatamodel.Role{
			Name:         domain.Name,
			DepartmentID: domain.DepartmentID,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		domain.ID = row.RoleID
		domain.CreatedAt = row.CreatedAt

		if len(permissionIDs) == 0 {
			return nil
		}

		links := make([]roleDatamodel.RolePermission, 0, len(permissionIDs))
		for _, pid := range permissionIDs {
			links = append(links, roleDatamodel.RolePermission{
				RoleID:       row.RoleID,
				PermissionID: pid,
			})
		}
		return tx.Create(&links).Error
	})
}

func (r *RoleRepository) UpdateWithPermissions(domain *role.Role, grant, revoke []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&roleDatamodel.Role{}).
			Where("role_id = ?", domain.ID).
			Updates(map[string]interface{}{
				"name":          domain.Name,
				"department_id": domain.DepartmentID,
			}).Error
		if err != nil {
			return err
		}

		if len(revoke) > 0 {
			err := tx.Where("role_id = ? AND permission_id IN ?", domain.ID, revoke).
				Delete(&roleDatamodel.RolePermission{}).Error
			if err != nil {
				return err
			}
		}

		for _, pid := range grant {
			var count int64
			err := tx.Model(&roleDatamodel.RolePermission{}).
				Where("role_id = ? AND permission_id = ?", domain.ID, pid).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			link := roleDatamodel.RolePermission{RoleID: domain.ID, PermissionID: pid}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RoleRepository) Delete(id int64) (bool, error) {
	res := r.db.Where("role_id = ?", id).Delete(&roleDatamodel.Role{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RoleRepository) IsAssignedToUsers(id int64) (bool, error) {
	var count int64
	err := r.db.Table("user_roles").Where("role_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) HasPermissionLinks(id int64) (bool, error) {
	var count int64
	err := r.db.Table("role_permissions").Where("role_id = ?", id).Count(&count).Error
	return count > 0, err
}
