package department

import (
	"log/slog"
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
)

type Service struct {
	repo   Repository
	audit  *audit.Service
	logger *slog.Logger
}

func NewService(repo Repository, auditSvc *audit.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  auditSvc,
		logger: logger,
	}
}

func (s *Service) GetAll(actorID int64) ([]Department, error) {
	depts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("Failed to fetch departments", err)
	}

	s.audit.Log(&actorID, "VIEW_DEPARTMENTS", "Fetched all departments")
	return depts, nil
}

func (s *Service) GetByID(actorID, id int64) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.audit.Log(&actorID, "VIEW_DEPARTMENT", map[string]interface{}{"department_id": id})
	return dept, nil
}

func (s *Service) Create(actorID int64, name string, description *string) (*Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, internal.NewValidationError("department name is required", internal.ErrCodeNameRequired)
	}

	exists, err := s.repo.ExistsByName(name, 0)
	if err != nil {
		return nil, internal.NewInternalError("Failed to create department", err)
	}
	if exists {
		return nil, internal.ErrDuplicateDepartment
	}

	dept := &Department{Name: name, Description: description}
	if err := s.repo.Create(dept); err != nil {
		s.logger.Error("failed to create department", "name", name, "error", err)
		return nil, internal.NewInternalError("Failed to create department", err)
	}

	s.audit.Log(&actorID, "CREATE_DEPARTMENT", map[string]interface{}{
		"department_id": dept.ID,
		"name":          name,
	})
	return dept, nil
}

func (s *Service) Update(actorID, id int64, name string, description *string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return internal.NewValidationError("department name is required", internal.ErrCodeNameRequired)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	exists, err := s.repo.ExistsByName(name, id)
	if err != nil {
		return internal.NewInternalError("Failed to update department", err)
	}
	if exists {
		return internal.NewConflictError("Another department with this name already exists.", internal.ErrCodeDuplicateDepartment)
	}

	if err := s.repo.Update(&Department{ID: id, Name: name, Description: description}); err != nil {
		s.logger.Error("failed to update department", "department_id", id, "error", err)
		return internal.NewInternalError("Failed to update department", err)
	}

	s.audit.Log(&actorID, "UPDATE_DEPARTMENT", map[string]interface{}{
		"department_id": id,
		"name":          name,
	})
	return nil
}

// Delete refuses while any role still references the department.
func (s *Service) Delete(actorID, id int64) error {
	inUse, err := s.repo.IsReferencedByRoles(id)
	if err != nil {
		return internal.NewInternalError("Failed to delete department", err)
	}
	if inUse {
		return internal.ErrDepartmentInUse
	}

	deleted, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete department", "department_id", id, "error", err)
		return internal.NewInternalError("Failed to delete department", err)
	}
	if !deleted {
		return internal.ErrDepartmentNotFound
	}

	s.audit.Log(&actorID, "DELETE_DEPARTMENT", map[string]interface{}{"department_id": id})
	return nil
}
