package department_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/department"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDepartmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Service Suite")
}

// MockRepository implements department.Repository for testing
type MockRepository struct {
	departments map[int64]*department.Department
	referenced  map[int64]bool
	nextID      int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		departments: make(map[int64]*department.Department),
		referenced:  make(map[int64]bool),
		nextID:      1,
	}
}

func (m *MockRepository) GetAll() ([]department.Department, error) {
	all := make([]department.Department, 0, len(m.departments))
	for _, d := range m.departments {
		all = append(all, *d)
	}
	return all, nil
}

func (m *MockRepository) GetByID(id int64) (*department.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, internal.ErrDepartmentNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MockRepository) ExistsByName(name string, excludeID int64) (bool, error) {
	for _, d := range m.departments {
		if d.Name == name && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) Create(d *department.Department) error {
	d.ID = m.nextID
	m.nextID++
	cp := *d
	m.departments[d.ID] = &cp
	return nil
}

func (m *MockRepository) Update(d *department.Department) error {
	stored := m.departments[d.ID]
	stored.Name = d.Name
	stored.Description = d.Description
	return nil
}

func (m *MockRepository) Delete(id int64) (bool, error) {
	if _, ok := m.departments[id]; !ok {
		return false, nil
	}
	delete(m.departments, id)
	return true, nil
}

func (m *MockRepository) IsReferencedByRoles(id int64) (bool, error) {
	return m.referenced[id], nil
}

type memoryAuditRepo struct {
	actions []string
}

func (m *memoryAuditRepo) Append(userID *int64, actionType, details string) error {
	m.actions = append(m.actions, actionType)
	return nil
}

func (m *memoryAuditRepo) List(page, limit int, search string) (*audit.Page, error) {
	return &audit.Page{}, nil
}

var _ = Describe("Department Service", func() {
	var (
		repo     *MockRepository
		auditLog *memoryAuditRepo
		service  *department.Service
	)

	const actorID int64 = 99

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		auditLog = &memoryAuditRepo{}
		service = department.NewService(repo, audit.NewService(auditLog, logger), logger)
	})

	Describe("Create", func() {
		It("trims the name and audits the creation", func() {
			dept, err := service.Create(actorID, "  Engineering ", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(dept.Name).To(Equal("Engineering"))
			Expect(auditLog.actions).To(ContainElement("CREATE_DEPARTMENT"))
		})

		It("rejects a duplicate name", func() {
			_, err := service.Create(actorID, "Engineering", nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(actorID, "Engineering", nil)
			Expect(err).To(MatchError(internal.ErrDuplicateDepartment))
		})

		It("rejects a blank name", func() {
			_, err := service.Create(actorID, "   ", nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNameRequired))
		})
	})

	Describe("Update", func() {
		It("permits keeping the current name but not taking another's", func() {
			first, err := service.Create(actorID, "Engineering", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(actorID, "Finance", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Update(actorID, first.ID, "Engineering", nil)).To(Succeed())

			err = service.Update(actorID, first.ID, "Finance", nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateDepartment))
		})

		It("fails for an unknown department", func() {
			Expect(service.Update(actorID, 9999, "Engineering", nil)).
				To(MatchError(internal.ErrDepartmentNotFound))
		})
	})

	Describe("Delete", func() {
		It("refuses while a role still references the department", func() {
			dept, err := service.Create(actorID, "Engineering", nil)
			Expect(err).NotTo(HaveOccurred())
			repo.referenced[dept.ID] = true

			Expect(service.Delete(actorID, dept.ID)).To(MatchError(internal.ErrDepartmentInUse))

			repo.referenced[dept.ID] = false
			Expect(service.Delete(actorID, dept.ID)).To(Succeed())
			Expect(repo.departments).To(BeEmpty())
		})

		It("fails for an unknown department", func() {
			Expect(service.Delete(actorID, 9999)).To(MatchError(internal.ErrDepartmentNotFound))
		})
	})
})
