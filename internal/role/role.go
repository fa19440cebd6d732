package role

import "time"

// Role is a named bundle of permissions, optionally scoped to a department.
type Role struct {
	ID             int64     `json:"role_id"`
	Name           string    `json:"name"`
	DepartmentID   *int64    `json:"department_id"`
	DepartmentName *string   `json:"department_name,omitempty"`
	PermissionIDs  []int64   `json:"permission_ids"`
	Permissions    []string  `json:"permissions"`
	CreatedAt      time.Time `json:"created_at"`
}

type Repository interface {
	GetAll() ([]Role, error)
	GetByID(id int64) (*Role, error)
	ExistsByName(name string, excludeID int64) (bool, error)

	// CreateWithPermissions inserts the role and its permission links in one
	// transaction.
	CreateWithPermissions(r *Role, permissionIDs []int64) error

	// UpdateWithPermissions renames the role and applies the grant/revoke
	// lists in one transaction.
	UpdateWithPermissions(r *Role, grant, revoke []int64) error

	Delete(id int64) (bool, error)
	IsAssignedToUsers(id int64) (bool, error)
	HasPermissionLinks(id int64) (bool, error)
}
