package menu_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/access-management/internal/menu"
	"github.com/frahmantamala/access-management/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMenuProjector(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Menu Projector Suite")
}

// MockRepository implements menu.Repository for testing
type MockRepository struct {
	menus      []menu.Menu
	links      map[int64][]int64 // menu id -> linked permission ids
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{links: make(map[int64][]int64)}
}

func (m *MockRepository) GetAll() ([]menu.Menu, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.menus, nil
}

func (m *MockRepository) GetByID(id int64) (*menu.Menu, error) {
	for i := range m.menus {
		if m.menus[i].ID == id {
			return &m.menus[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (m *MockRepository) ExistsByKey(key string, excludeID int64) (bool, error) {
	for _, mn := range m.menus {
		if mn.MenuKey == key && mn.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) CreateWithPermissionLinks(mn *menu.Menu) error {
	mn.ID = int64(len(m.menus) + 1)
	m.menus = append(m.menus, *mn)
	return nil
}

func (m *MockRepository) Update(mn *menu.Menu) error { return nil }

func (m *MockRepository) Delete(id int64) (bool, error) { return true, nil }

func (m *MockRepository) AllMenuKeys() ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	keys := make([]string, 0, len(m.menus))
	for _, mn := range m.menus {
		keys = append(keys, mn.MenuKey)
	}
	return keys, nil
}

func (m *MockRepository) LinkedToPermissions(permissionIDs []int64) ([]menu.Menu, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	held := make(map[int64]bool, len(permissionIDs))
	for _, id := range permissionIDs {
		held[id] = true
	}
	var out []menu.Menu
	for _, mn := range m.menus {
		for _, pid := range m.links[mn.ID] {
			if held[pid] {
				out = append(out, mn)
				break
			}
		}
	}
	return out, nil
}

func (m *MockRepository) AddMenu(id int64, label, key, route string, linkedPermIDs ...int64) {
	m.menus = append(m.menus, menu.Menu{ID: id, Label: label, MenuKey: key, Route: route})
	m.links[id] = linkedPermIDs
}

var _ = Describe("GroupByMenuKey", func() {
	It("buckets a permission under the key its name contains", func() {
		grouped := menu.GroupByMenuKey([]string{"users.view"}, []string{"users", "roles"})
		Expect(grouped).To(HaveKeyWithValue("users", ConsistOf("users.view")))
	})

	It("resolves a multi-key match to the first key in menu-definition order", func() {
		// "admin.users" contains both keys; "admin" is defined first.
		grouped := menu.GroupByMenuKey([]string{"admin.users"}, []string{"admin", "users"})
		Expect(grouped).To(HaveKeyWithValue("admin", ConsistOf("admin.users")))
		Expect(grouped).NotTo(HaveKey("users"))
	})

	It("puts a permission matching no key into the misc bucket", func() {
		grouped := menu.GroupByMenuKey([]string{"orphan.permission"}, []string{"users", "roles"})
		Expect(grouped).To(HaveKeyWithValue(menu.MiscKey, ConsistOf("orphan.permission")))
	})

	It("keeps every permission of a shared key together", func() {
		grouped := menu.GroupByMenuKey([]string{"users.view", "users.manage", "roles.view"}, []string{"users", "roles"})
		Expect(grouped["users"]).To(ConsistOf("users.view", "users.manage"))
		Expect(grouped["roles"]).To(ConsistOf("roles.view"))
	})
})

var _ = Describe("Projector", func() {
	var (
		repo      *MockRepository
		projector *menu.Projector
		logger    *slog.Logger
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		projector = menu.NewProjector(repo, logger)
	})

	Context("when a menu is id-linked and its key matches by substring", func() {
		BeforeEach(func() {
			repo.AddMenu(1, "Users", "users", "/users", 10)
		})

		It("includes the entry with its grouped permissions", func() {
			set := &permission.EffectiveSet{Names: []string{"users.view"}, IDs: []int64{10}}
			entries, grouped, err := projector.Project(set)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Key).To(Equal("users"))
			Expect(entries[0].Route).To(Equal("/users"))
			Expect(entries[0].Permissions).To(ConsistOf("users.view"))
			Expect(grouped).To(HaveKey("users"))
		})
	})

	Context("when a menu is id-linked but its key has no substring match", func() {
		BeforeEach(func() {
			// Linked by id to permission 10, but "reports" is not a substring
			// of any held permission name.
			repo.AddMenu(1, "Reports", "reports", "/reports", 10)
		})

		It("silently excludes the entry", func() {
			set := &permission.EffectiveSet{Names: []string{"orphan.permission"}, IDs: []int64{10}}
			entries, grouped, err := projector.Project(set)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
			Expect(grouped).To(HaveKeyWithValue(menu.MiscKey, ConsistOf("orphan.permission")))
		})
	})

	Context("when a key matches by substring but no id link exists", func() {
		BeforeEach(func() {
			repo.AddMenu(1, "Users", "users", "/users") // no linked permissions
		})

		It("excludes the entry", func() {
			set := &permission.EffectiveSet{Names: []string{"users.view"}, IDs: []int64{10}}
			entries, _, err := projector.Project(set)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Context("when the permission set is empty", func() {
		BeforeEach(func() {
			repo.AddMenu(1, "Users", "users", "/users", 10)
		})

		It("returns an empty projection, not an error", func() {
			set := &permission.EffectiveSet{}
			entries, grouped, err := projector.Project(set)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
			Expect(grouped).To(BeEmpty())
		})
	})

	Context("when the repository fails", func() {
		BeforeEach(func() {
			repo.shouldFail = true
			repo.failError = errors.New("database error")
		})

		It("returns an internal error", func() {
			set := &permission.EffectiveSet{Names: []string{"users.view"}, IDs: []int64{10}}
			_, _, err := projector.Project(set)
			Expect(err).To(HaveOccurred())
		})
	})
})
