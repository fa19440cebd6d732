package user

import "time"

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// User is an account identity plus its current role assignments. Password is
// never serialized.
type User struct {
	ID                 int64      `json:"user_id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	Password           string     `json:"-"`
	Status             string     `json:"user_status"`
	MustChangePassword bool       `json:"must_change_password"`
	RoleIDs            []int64    `json:"role_ids"`
	Roles              []string   `json:"roles"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

type Repository interface {
	GetAll() ([]User, error)
	GetByID(id int64) (*User, error)
	ExistsByEmail(email string, excludeID int64) (bool, error)

	// CreateWithRole inserts the user and, when roleID is non-nil, its role
	// assignment in one transaction.
	CreateWithRole(u *User, roleID *int64) error

	// UpdateWithRole applies the given column changes and, when roleID is
	// non-nil, replaces all role assignments with the single given role, in
	// one transaction.
	UpdateWithRole(id int64, changes map[string]interface{}, roleID *int64) error

	// Delete removes the user's role assignments and then the user row in one
	// transaction.
	Delete(id int64) (bool, error)
}
