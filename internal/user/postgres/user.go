package postgres

import (
	"strings"
	"time"

	"github.com/frahmantamala/access-management/internal"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"github.com/frahmantamala/access-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.Order("user_id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		domain, err := r.hydrate(row)
		if err != nil {
			return nil, err
		}
		users = append(users, *domain)
	}
	return users, nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("user_id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return r.hydrate(row)
}

func (r *UserRepository) hydrate(row userDatamodel.User) (*user.User, error) {
	var roles []struct {
		RoleID int64
		Name   string
	}
	err := r.db.Raw(`
		SELECT r.role_id, r.name
		FROM roles r
		JOIN user_roles ur ON r.role_id = ur.role_id
		WHERE ur.user_id = ?
		ORDER BY r.role_id ASC
	`, row.UserID).Scan(&roles).Error
	if err != nil {
		return nil, err
	}

	updatedAt := row.UpdatedAt
	domain := &user.User{
		ID:                 row.UserID,
		FullName:           row.FullName,
		Email:              row.Email,
		Password:           row.Password,
		Status:             row.UserStatus,
		MustChangePassword: row.MustChangePassword,
		RoleIDs:            make([]int64, 0, len(roles)),
		Roles:              make([]string, 0, len(roles)),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          &updatedAt,
	}
	for _, ro := range roles {
		domain.RoleIDs = append(domain.RoleIDs, ro.RoleID)
		domain.Roles = append(domain.Roles, ro.Name)
	}
	return domain, nil
}

func (r *UserRepository) ExistsByEmail(email string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.Model(&userDatamodel.User{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if excludeID != 0 {
		q = q.Where("user_id != ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) CreateWithRole(u *user.User, roleID *int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		row := userDatamodel.User{
			FullName:           u.FullName,
			Email:              u.Email,
			Password:           u.Password,
			UserStatus:         u.Status,
			MustChangePassword: u.MustChangePassword,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		u.ID = row.UserID
		u.CreatedAt = row.CreatedAt

		if roleID == nil {
			return nil
		}
		link := userDatamodel.UserRole{UserID: row.UserID, RoleID: *roleID}
		return tx.Create(&link).Error
	})
}

func (r *UserRepository) UpdateWithRole(id int64, changes map[string]interface{}, roleID *int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(changes) > 0 {
			changes["updated_at"] = time.Now()
			err := tx.Model(&userDatamodel.User{}).
				Where("user_id = ?", id).
				Updates(changes).Error
			if err != nil {
				return err
			}
		}

		if roleID == nil {
			return nil
		}

		// Single-role replace: drop all assignments, then insert the new one.
		err := tx.Where("user_id = ?", id).Delete(&userDatamodel.UserRole{}).Error
		if err != nil {
			return err
		}
		link := userDatamodel.UserRole{UserID: id, RoleID: *roleID}
		return tx.Create(&link).Error
	})
}

func (r *UserRepository) Delete(id int64) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", id).Delete(&userDatamodel.UserRole{}).Error
		if err != nil {
			return err
		}
		res := tx.Where("user_id = ?", id).Delete(&userDatamodel.User{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
