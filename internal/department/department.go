package department

import "time"

type Department struct {
	ID          int64     `json:"department_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	GetAll() ([]Department, error)
	GetByID(id int64) (*Department, error)
	ExistsByName(name string, excludeID int64) (bool, error)
	Create(d *Department) error
	Update(d *Department) error
	Delete(id int64) (bool, error)
	IsReferencedByRoles(id int64) (bool, error)
}
