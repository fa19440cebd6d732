package postgres

import (
	"time"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/auth"
	userDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserRepository {
	return &AuthRepository{db: db}
}

type authRow struct {
	UserID             int64
	FullName           string
	Email              string
	Password           string
	UserStatus         string
	MustChangePassword bool
	RoleName           *string
}

const authSelect = `
	SELECT u.user_id, u.full_name, u.email, u.password, u.user_status,
	       u.must_change_password, r.name AS role_name
	FROM users u
	LEFT JOIN user_roles ur ON u.user_id = ur.user_id
	LEFT JOIN roles r ON ur.role_id = r.role_id
`

func (r *AuthRepository) GetByEmailWithRole(email string) (*auth.AuthUser, error) {
	var row authRow
	err := r.db.Raw(authSelect+` WHERE LOWER(u.email) = LOWER(?) LIMIT 1`, email).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UserID == 0 {
		return nil, internal.ErrUserNotFound
	}
	return toAuthUser(row), nil
}

func (r *AuthRepository) GetByID(id int64) (*auth.AuthUser, error) {
	var row authRow
	err := r.db.Raw(authSelect+` WHERE u.user_id = ? LIMIT 1`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UserID == 0 {
		return nil, internal.ErrUserNotFound
	}
	return toAuthUser(row), nil
}

func (r *AuthRepository) UpdatePassword(userID int64, passwordHash string, mustChange bool) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"password":             passwordHash,
			"must_change_password": mustChange,
			"updated_at":           time.Now(),
		}).Error
}

func toAuthUser(row authRow) *auth.AuthUser {
	u := &auth.AuthUser{
		ID:                 row.UserID,
		FullName:           row.FullName,
		Email:              row.Email,
		PasswordHash:       row.Password,
		Status:             row.UserStatus,
		MustChangePassword: row.MustChangePassword,
	}
	if row.RoleName != nil {
		u.Role = *row.RoleName
	}
	return u
}
