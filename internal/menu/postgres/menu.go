package postgres

import (
	menuDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/menu"
	permissionDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/permission"
	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/menu"
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) menu.Repository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) GetAll() ([]menu.Menu, error) {
	var rows []menuDatamodel.Menu
	if err := r.db.Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	menus := make([]menu.Menu, 0, len(rows))
	for _, row := range rows {
		menus = append(menus, toDomain(row))
	}
	return menus, nil
}

func (r *MenuRepository) GetByID(id int64) (*menu.Menu, error) {
	var row menuDatamodel.Menu
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrMenuNotFound
		}
		return nil, err
	}
	m := toDomain(row)
	return &m, nil
}

func (r *MenuRepository) ExistsByKey(menuKey string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&menuDatamodel.Menu{}).Where("menu_key = ?", menuKey)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithPermissionLinks inserts the menu, then links every permission
// whose name contains the menu key, all in one transaction.
func (r *MenuRepository) CreateWithPermissionLinks(m *menu.Menu) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&menuDatamodel.Menu{}).Where("menu_key = ?", m.MenuKey).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return internal.ErrDuplicateMenuKey
		}

		row := menuDatamodel.Menu{
			Label:   m.Label,
			Route:   m.Route,
			MenuKey: m.MenuKey,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		var perms []permissionDatamodel.Permission
		if err := tx.Where("name LIKE ?", "%"+m.MenuKey+"%").Find(&perms).Error; err != nil {
			return err
		}

		links := make([]menuDatamodel.MenuPermission, 0, len(perms))
		for _, p := range perms {
			links = append(links, menuDatamodel.MenuPermission{
				MenuID:       row.ID,
				PermissionID: p.PermissionID,
			})
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return err
			}
		}

		m.ID = row.ID
		m.CreatedAt = row.CreatedAt
		return nil
	})
}

func (r *MenuRepository) Update(m *menu.Menu) error {
	return r.db.Model(&menuDatamodel.Menu{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"label":    m.Label,
			"route":    m.Route,
			"menu_key": m.MenuKey,
		}).Error
}

func (r *MenuRepository) Delete(id int64) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_id = ?", id).Delete(&menuDatamodel.MenuPermission{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&menuDatamodel.Menu{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// AllMenuKeys preserves menu-definition order (insertion order by id).
func (r *MenuRepository) AllMenuKeys() ([]string, error) {
	var keys []string
	err := r.db.Model(&menuDatamodel.Menu{}).
		Order("id ASC").
		Pluck("menu_key", &keys).Error
	return keys, err
}

func (r *MenuRepository) LinkedToPermissions(permissionIDs []int64) ([]menu.Menu, error) {
	if len(permissionIDs) == 0 {
		return []menu.Menu{}, nil
	}

	var rows []menuDatamodel.Menu
	err := r.db.
		Distinct("menus.id", "menus.label", "menus.route", "menus.menu_key", "menus.created_at").
		Joins("JOIN menu_permissions mp ON menus.id = mp.menu_id").
		Where("mp.permission_id IN ?", permissionIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	menus := make([]menu.Menu, 0, len(rows))
	for _, row := range rows {
		menus = append(menus, toDomain(row))
	}
	return menus, nil
}

func toDomain(row menuDatamodel.Menu) menu.Menu {
	return menu.Menu{
		ID:        row.ID,
		Label:     row.Label,
		Route:     row.Route,
		MenuKey:   row.MenuKey,
		CreatedAt: row.CreatedAt,
	}
}
