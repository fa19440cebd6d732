package menu

import "time"

// MiscKey is the reserved bucket for permissions matching no menu key.
// Permissions grouped here never surface a menu entry on their own.
const MiscKey = "misc"

type Menu struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Route     string    `json:"route"`
	MenuKey   string    `json:"menu_key"`
	CreatedAt time.Time `json:"created_at"`
}

// MenuEntry is one navigable item in a user's projected menu.
type MenuEntry struct {
	Label       string   `json:"label"`
	Key         string   `json:"key"`
	Route       string   `json:"route"`
	Permissions []string `json:"permissions"`
}

type Repository interface {
	GetAll() ([]Menu, error)
	GetByID(id int64) (*Menu, error)
	ExistsByKey(menuKey string, excludeID int64) (bool, error)

	// CreateWithPermissionLinks inserts the menu and, in the same
	// transaction, links every permission whose name contains the menu key.
	CreateWithPermissionLinks(m *Menu) error
	Update(m *Menu) error
	Delete(id int64) (bool, error)

	// AllMenuKeys returns menu keys in menu-definition order; the projector's
	// first-match-wins tie-break depends on this ordering.
	AllMenuKeys() ([]string, error)

	// LinkedToPermissions returns menus whose required-permission links
	// intersect the given permission ids.
	LinkedToPermissions(permissionIDs []int64) ([]Menu, error)
}
