package role

import (
	"log/slog"
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
)

// Service owns role CRUD including the transactional permission-link writes.
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

func (s *Service) GetAll(actorID int64) ([]Role, error) {
	roles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewInternalError("Failed to fetch roles", err)
	}

	s.audit.Log(&actorID, "VIEW_ROLES", "Fetched all roles")
	return roles, nil
}

func (s *Service) GetByID(actorID, id int64) (*Role, error) {
	role, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.audit.Log(&actorID, "VIEW_ROLE", map[string]interface{}{"role_id": id})
	return role, nil
}

func (s *Service) Create(actorID int64, dto CreateRoleDTO) (*Role, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, internal.NewValidationError("role name is required", internal.ErrCodeNameRequired)
	}

	exists, err := s.repo.ExistsByName(name, 0)
	if err != nil {
		return nil, internal.NewInternalError("Failed to create role", err)
	}
	if exists {
		return nil, internal.ErrDuplicateRole
	}

	role := &Role{Name: name, DepartmentID: dto.DepartmentID}
	if err := s.repo.CreateWithPermissions(role, dto.PermissionIDs); err != nil {
		s.logger.Error("failed to create role", "name", name, "error", err)
		return nil, internal.NewInternalError("Failed to create role", err)
	}

	s.audit.Log(&actorID, "CREATE_ROLE", map[string]interface{}{
		"role_id":        role.ID,
		"name":           name,
		"permission_ids": dto.PermissionIDs,
	})
	return role, nil
}

func (s *Service) Update(actorID, id int64, dto UpdateRoleDTO) error {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return internal.NewValidationError("role name is required", internal.ErrCodeNameRequired)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	// Renaming to the current name is fine; only another row holding it
	// conflicts.
	exists, err := s.repo.ExistsByName(name, id)
	if err != nil {
		return internal.NewInternalError("Failed to update role", err)
	}
	if exists {
		return internal.NewConflictError("Another role with this name already exists.", internal.ErrCodeDuplicateRole)
	}

	role := &Role{ID: id, Name: name, DepartmentID: dto.DepartmentID}
	if err := s.repo.UpdateWithPermissions(role, dto.GrantPermissionIDs, dto.RevokePermissionIDs); err != nil {
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return internal.NewInternalError("Failed to update role", err)
	}

	s.audit.Log(&actorID, "UPDATE_ROLE", map[string]interface{}{
		"role_id": id,
		"name":    name,
		"granted": dto.GrantPermissionIDs,
		"revoked": dto.RevokePermissionIDs,
	})
	return nil
}

// Delete refuses while any user holds the role or any permission link remains;
// the role must be explicitly emptied first.
func (s *Service) Delete(actorID, id int64) error {
	assigned, err := s.repo.IsAssignedToUsers(id)
	if err != nil {
		return internal.NewInternalError("Failed to delete role", err)
	}
	if assigned {
		return internal.ErrRoleInUseUsers
	}

	hasPerms, err := s.repo.HasPermissionLinks(id)
	if err != nil {
		return internal.NewInternalError("Failed to delete role", err)
	}
	if hasPerms {
		return internal.ErrRoleInUsePermissions
	}

	deleted, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete role", "role_id", id, "error", err)
		return internal.NewInternalError("Failed to delete role", err)
	}
	if !deleted {
		return internal.ErrRoleNotFound
	}

	s.audit.Log(&actorID, "DELETE_ROLE", map[string]interface{}{"role_id": id})
	return nil
}
