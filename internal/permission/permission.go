package permission

import "time"

type Permission struct {
	ID          int64     `json:"permission_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// EffectiveSet is a user's effective permissions at one instant: the union of
// role-derived permissions and non-expired direct grants, deduplicated by
// permission identity. Names and IDs are index-aligned.
type EffectiveSet struct {
	Names []string
	IDs   []int64
}

func (s *EffectiveSet) IsEmpty() bool {
	return len(s.IDs) == 0
}

func (s *EffectiveSet) HasName(name string) bool {
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

type Repository interface {
	GetAll() ([]Permission, error)
	GetByID(id int64) (*Permission, error)
	ExistsByName(name string, excludeID int64) (bool, error)
	Create(p *Permission) error
	Update(p *Permission) error
	Delete(id int64) (bool, error)
	IsAttachedToRoles(id int64) (bool, error)
	IsGrantedToUsers(id int64) (bool, error)

	// EffectiveForUser re-reads current role assignments and direct grants;
	// grants expiring at or before now are excluded.
	EffectiveForUser(userID int64, now time.Time) ([]Permission, error)
}
