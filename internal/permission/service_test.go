package permission_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPermissionService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Service Suite")
}

// MockRepository implements permission.Repository for testing
type MockRepository struct {
	permissions map[int64]*permission.Permission
	effective   []permission.Permission
	inRoles     map[int64]bool
	inUsers     map[int64]bool
	nextID      int64
	shouldFail  bool
	failError   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		permissions: make(map[int64]*permission.Permission),
		inRoles:     make(map[int64]bool),
		inUsers:     make(map[int64]bool),
		nextID:      1,
	}
}

func (m *MockRepository) GetAll() ([]permission.Permission, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	out := make([]permission.Permission, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, *p)
	}
	return out, nil
}

func (m *MockRepository) GetByID(id int64) (*permission.Permission, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	p, ok := m.permissions[id]
	if !ok {
		return nil, internal.ErrPermissionNotFound
	}
	return p, nil
}

func (m *MockRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	for _, p := range m.permissions {
		if p.Name == name && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) Create(p *permission.Permission) error {
	if m.shouldFail {
		return m.failError
	}
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.permissions[p.ID] = &cp
	return nil
}

func (m *MockRepository) Update(p *permission.Permission) error {
	if m.shouldFail {
		return m.failError
	}
	cp := *p
	m.permissions[p.ID] = &cp
	return nil
}

func (m *MockRepository) Delete(id int64) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	if _, ok := m.permissions[id]; !ok {
		return false, nil
	}
	delete(m.permissions, id)
	return true, nil
}

func (m *MockRepository) IsAttachedToRoles(id int64) (bool, error) {
	return m.inRoles[id], nil
}

func (m *MockRepository) IsGrantedToUsers(id int64) (bool, error) {
	return m.inUsers[id], nil
}

func (m *MockRepository) EffectiveForUser(userID int64, now time.Time) ([]permission.Permission, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.effective, nil
}

// memoryAuditRepo satisfies audit.Repository so services can run with a real
// audit.Service.
type memoryAuditRepo struct {
	entries []string
}

func (m *memoryAuditRepo) Append(userID *int64, actionType, details string) error {
	m.entries = append(m.entries, actionType)
	return nil
}

func (m *memoryAuditRepo) List(page, limit int, search string) (*audit.Page, error) {
	return &audit.Page{}, nil
}

var _ = Describe("Permission Service", func() {
	var (
		repo     *MockRepository
		auditLog *memoryAuditRepo
		service  *permission.Service
		logger   *slog.Logger
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		auditLog = &memoryAuditRepo{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = permission.NewService(repo, audit.NewService(auditLog, logger), logger)
	})

	Describe("Resolve", func() {
		It("returns names and ids aligned by index", func() {
			repo.effective = []permission.Permission{
				{ID: 1, Name: "users.view"},
				{ID: 2, Name: "roles.view"},
			}
			set, err := service.Resolve(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Names).To(Equal([]string{"users.view", "roles.view"}))
			Expect(set.IDs).To(Equal([]int64{1, 2}))
		})

		It("treats a user with no permissions as an empty set, not an error", func() {
			set, err := service.Resolve(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(set.IsEmpty()).To(BeTrue())
			Expect(set.Names).To(BeEmpty())
		})

		It("surfaces storage failures as internal errors", func() {
			repo.shouldFail = true
			repo.failError = errors.New("database error")
			_, err := service.Resolve(42)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("Create", func() {
		It("creates a permission and writes an audit entry", func() {
			p, err := service.Create(1, "users.view", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeZero())
			Expect(auditLog.entries).To(ContainElement("CREATE_PERMISSION"))
		})

		It("rejects an empty name", func() {
			_, err := service.Create(1, "   ", nil)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a duplicate name with a conflict", func() {
			_, err := service.Create(1, "users.view", nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(1, "users.view", nil)
			Expect(err).To(MatchError(internal.ErrDuplicatePermission))
		})
	})

	Describe("Update", func() {
		var existing *permission.Permission

		BeforeEach(func() {
			var err error
			existing, err = service.Create(1, "users.view", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("allows updating a permission to its own name", func() {
			err := service.Update(1, existing.ID, "users.view", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects renaming to a name held by another permission", func() {
			other, err := service.Create(1, "roles.view", nil)
			Expect(err).NotTo(HaveOccurred())

			err = service.Update(1, other.ID, "users.view", nil)
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicatePermission))
		})
	})

	Describe("Delete", func() {
		var existing *permission.Permission

		BeforeEach(func() {
			var err error
			existing, err = service.Create(1, "users.view", nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses while the permission is attached to a role", func() {
			repo.inRoles[existing.ID] = true
			err := service.Delete(1, existing.ID)
			Expect(err).To(MatchError(internal.ErrPermissionInRoles))
		})

		It("refuses while the permission is granted to a user", func() {
			repo.inUsers[existing.ID] = true
			err := service.Delete(1, existing.ID)
			Expect(err).To(MatchError(internal.ErrPermissionInUsers))
		})

		It("deletes once nothing references it", func() {
			err := service.Delete(1, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(auditLog.entries).To(ContainElement("DELETE_PERMISSION"))
		})

		It("returns not found for an unknown id", func() {
			err := service.Delete(1, 9999)
			Expect(err).To(MatchError(internal.ErrPermissionNotFound))
		})
	})
})
