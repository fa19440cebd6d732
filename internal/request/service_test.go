package request_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	"github.com/frahmantamala/access-management/internal/core/events"
	"github.com/frahmantamala/access-management/internal/permission"
	"github.com/frahmantamala/access-management/internal/request"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRequestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Request Service Suite")
}

type grant struct {
	userID       int64
	permissionID int64
	expiresAt    *time.Time
}

// MockRepository implements request.Repository with the same Pending
// re-check semantics the transactional store enforces.
type MockRepository struct {
	mu          sync.Mutex
	requests    map[int64]*request.AccessRequest
	grants      []grant
	adminEmails []string
	nextID      int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		requests: make(map[int64]*request.AccessRequest),
		nextID:   1,
	}
}

func (m *MockRepository) Create(req *request.AccessRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.nextID
	m.nextID++
	req.RequestedAt = time.Now()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *MockRepository) GetByID(id int64) (*request.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, internal.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *MockRepository) ListForAdmin(adminID int64, status string) ([]request.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.AccessRequest
	for _, req := range m.requests {
		if req.Status != status {
			continue
		}
		if status != requestDatamodel.StatusPending && (req.ReviewedBy == nil || *req.ReviewedBy != adminID) {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (m *MockRepository) ListForUser(userID int64, status string) ([]request.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.AccessRequest
	for _, req := range m.requests {
		if req.UserID == userID && req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *MockRepository) Approve(requestID, reviewerID int64, reviewedAt time.Time) (*request.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return nil, internal.ErrRequestNotFound
	}
	if req.Status != requestDatamodel.StatusPending {
		return nil, internal.ErrRequestAlreadyProcessed
	}
	m.grants = append(m.grants, grant{userID: req.UserID, permissionID: req.PermissionID, expiresAt: req.ExpiresAt})
	req.Status = requestDatamodel.StatusApproved
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &reviewedAt
	cp := *req
	return &cp, nil
}

func (m *MockRepository) Reject(requestID, reviewerID int64, reason string, reviewedAt time.Time) (*request.AccessRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return nil, internal.ErrRequestNotFound
	}
	if req.Status != requestDatamodel.StatusPending {
		return nil, internal.ErrRequestAlreadyProcessed
	}
	req.Status = requestDatamodel.StatusRejected
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &reviewedAt
	req.RejectionReason = &reason
	cp := *req
	return &cp, nil
}

func (m *MockRepository) ActiveAdminEmails() ([]string, error) {
	return m.adminEmails, nil
}

// MockPermissionRepo provides only the lookups the workflow needs.
type MockPermissionRepo struct {
	permissions map[int64]*permission.Permission
}

func (m *MockPermissionRepo) GetAll() ([]permission.Permission, error) { return nil, nil }

func (m *MockPermissionRepo) GetByID(id int64) (*permission.Permission, error) {
	p, ok := m.permissions[id]
	if !ok {
		return nil, internal.ErrPermissionNotFound
	}
	return p, nil
}

func (m *MockPermissionRepo) ExistsByName(name string, excludeID int64) (bool, error) {
	return false, nil
}
func (m *MockPermissionRepo) Create(p *permission.Permission) error     { return nil }
func (m *MockPermissionRepo) Update(p *permission.Permission) error     { return nil }
func (m *MockPermissionRepo) Delete(id int64) (bool, error)             { return false, nil }
func (m *MockPermissionRepo) IsAttachedToRoles(id int64) (bool, error)  { return false, nil }
func (m *MockPermissionRepo) IsGrantedToUsers(id int64) (bool, error)   { return false, nil }
func (m *MockPermissionRepo) EffectiveForUser(userID int64, now time.Time) ([]permission.Permission, error) {
	return nil, nil
}

type memoryAuditRepo struct {
	mu      sync.Mutex
	entries []string
}

func (m *memoryAuditRepo) Append(userID *int64, actionType, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, actionType)
	return nil
}

func (m *memoryAuditRepo) List(page, limit int, search string) (*audit.Page, error) {
	return &audit.Page{}, nil
}

var _ = Describe("Request Workflow", func() {
	var (
		repo     *MockRepository
		perms    *MockPermissionRepo
		auditLog *memoryAuditRepo
		bus      *events.EventBus
		service  *request.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = NewMockRepository()
		perms = &MockPermissionRepo{permissions: map[int64]*permission.Permission{
			7: {ID: 7, Name: "reports.view"},
		}}
		auditLog = &memoryAuditRepo{}
		bus = events.NewEventBus(logger)
		service = request.NewService(repo, perms, audit.NewService(auditLog, logger), bus, logger)
		ctx = context.Background()
	})

	Describe("Submit", func() {
		It("creates a Pending request", func() {
			req, err := service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{
				PermissionID: 7,
				Reason:       "need the reports",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(requestDatamodel.StatusPending))
			Expect(req.ID).NotTo(BeZero())
			Expect(auditLog.entries).To(ContainElement("CREATE_PERMISSION_REQUEST"))
		})

		It("rejects an unknown permission", func() {
			_, err := service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{
				PermissionID: 999,
				Reason:       "please",
			})
			Expect(err).To(MatchError(internal.ErrPermissionNotFound))
		})

		It("requires a reason", func() {
			_, err := service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{
				PermissionID: 7,
				Reason:       "  ",
			})
			Expect(err).To(HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("notifies every active admin", func() {
			repo.adminEmails = []string{"a@example.com", "b@example.com"}

			var mu sync.Mutex
			var received []string
			done := make(chan struct{})
			bus.Subscribe(events.EventTypeRequestSubmitted, func(_ context.Context, event events.Event) error {
				submitted := event.(*events.RequestSubmittedEvent)
				mu.Lock()
				received = submitted.AdminEmails
				mu.Unlock()
				close(done)
				return nil
			})

			_, err := service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{
				PermissionID: 7,
				Reason:       "need the reports",
			})
			Expect(err).NotTo(HaveOccurred())

			Eventually(done).Should(BeClosed())
			mu.Lock()
			defer mu.Unlock()
			Expect(received).To(ConsistOf("a@example.com", "b@example.com"))
		})
	})

	Describe("Approve", func() {
		var req *request.AccessRequest

		BeforeEach(func() {
			var err error
			expiry := time.Now().Add(48 * time.Hour)
			req, err = service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{
				PermissionID: 7,
				Reason:       "need the reports",
				ExpiresAt:    &expiry,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("inserts exactly one grant and marks the request Approved", func() {
			err := service.Approve(ctx, 1, req.ID)
			Expect(err).NotTo(HaveOccurred())

			stored, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(requestDatamodel.StatusApproved))
			Expect(*stored.ReviewedBy).To(Equal(int64(1)))
			Expect(repo.grants).To(HaveLen(1))
			Expect(repo.grants[0].userID).To(Equal(int64(42)))
			Expect(repo.grants[0].permissionID).To(Equal(int64(7)))
			Expect(repo.grants[0].expiresAt).NotTo(BeNil())
		})

		It("fails the second approval and writes no extra grant", func() {
			Expect(service.Approve(ctx, 1, req.ID)).To(Succeed())

			err := service.Approve(ctx, 2, req.ID)
			Expect(err).To(MatchError(internal.ErrRequestAlreadyProcessed))
			Expect(repo.grants).To(HaveLen(1))
		})

		It("fails for an unknown request", func() {
			err := service.Approve(ctx, 1, 9999)
			Expect(err).To(MatchError(internal.ErrRequestNotFound))
		})
	})

	Describe("Reject", func() {
		var req *request.AccessRequest

		BeforeEach(func() {
			var err error
			req, err = service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{
				PermissionID: 7,
				Reason:       "need the reports",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("marks the request Rejected and never creates a grant", func() {
			err := service.Reject(ctx, 1, req.ID, "not justified")
			Expect(err).NotTo(HaveOccurred())

			stored, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(requestDatamodel.StatusRejected))
			Expect(*stored.RejectionReason).To(Equal("not justified"))
			Expect(repo.grants).To(BeEmpty())
		})

		It("requires a rejection reason", func() {
			err := service.Reject(ctx, 1, req.ID, "   ")
			Expect(err).To(HaveOccurred())
		})

		It("refuses once the request already left Pending", func() {
			Expect(service.Reject(ctx, 1, req.ID, "no")).To(Succeed())

			err := service.Approve(ctx, 2, req.ID)
			Expect(err).To(MatchError(internal.ErrRequestAlreadyProcessed))
			Expect(repo.grants).To(BeEmpty())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := service.Submit(ctx, 42, "Jess", request.SubmitRequestDTO{PermissionID: 7, Reason: "a"})
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Submit(ctx, 43, "Sam", request.SubmitRequestDTO{PermissionID: 7, Reason: "b"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Approve(ctx, 1, second.ID)).To(Succeed())
		})

		It("shows admins the shared Pending queue", func() {
			reqs, err := service.List(1, true, "pending")
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].UserID).To(Equal(int64(42)))
		})

		It("shows admins only requests they reviewed for terminal statuses", func() {
			mine, err := service.List(1, true, "approved")
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			other, err := service.List(2, true, "approved")
			Expect(err).NotTo(HaveOccurred())
			Expect(other).To(BeEmpty())
		})

		It("shows users only their own requests", func() {
			reqs, err := service.List(42, false, "pending")
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].UserID).To(Equal(int64(42)))
		})

		It("rejects an unknown status filter", func() {
			_, err := service.List(42, false, "bogus")
			Expect(err).To(HaveOccurred())
		})
	})
})
