package permission

import (
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
)

// Service owns permission CRUD and effective-permission resolution.
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

// Resolve computes the caller's effective permission set. Each call re-reads
// current state so revocations and expirations take effect on the next call;
// an empty set is a valid result, not an error.
func (s *Service) Resolve(userID int64) (*EffectiveSet, error) {
	perms, err := s.repo.EffectiveForUser(userID, time.Now())
	if err != nil {
		s.logger.Error("failed to resolve permissions", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("Failed to resolve permissions", err)
	}

	set := &EffectiveSet{
		Names: make([]string, 0, len(perms)),
		IDs:   make([]int64, 0, len(perms)),
	}
	for _, p := range perms {
		set.Names = append(set.Names, p.Name)
		set.IDs = append(set.IDs, p.ID)
	}
	return set, nil
}

func (s *Service) GetAll(actorID int64) ([]Permission, error) {
	perms, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, internal.NewInternalError("Failed to fetch permissions", err)
	}

	s.audit.Log(&actorID, "VIEW_PERMISSIONS", "Fetched all permissions")
	return perms, nil
}

func (s *Service) GetByID(actorID, id int64) (*Permission, error) {
	perm, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.audit.Log(&actorID, "VIEW_PERMISSION", map[string]interface{}{"permission_id": id})
	return perm, nil
}

func (s *Service) Create(actorID int64, name string, description *string) (*Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, internal.NewValidationError("permission name is required", internal.ErrCodeNameRequired)
	}

	exists, err := s.repo.ExistsByName(name, 0)
	if err != nil {
		return nil, internal.NewInternalError("Failed to create permission", err)
	}
	if exists {
		return nil, internal.ErrDuplicatePermission
	}

	perm := &Permission{Name: name, Description: description}
	if err := s.repo.Create(perm); err != nil {
		s.logger.Error("failed to create permission", "name", name, "error", err)
		return nil, internal.NewInternalError("Failed to create permission", err)
	}

	s.audit.Log(&actorID, "CREATE_PERMISSION", map[string]interface{}{
		"permission_id": perm.ID,
		"name":          name,
	})
	return perm, nil
}

func (s *Service) Update(actorID, id int64, name string, description *string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return internal.NewValidationError("permission name is required", internal.ErrCodeNameRequired)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	// Updating a row to its own name is fine; only a different row with the
	// same name conflicts.
	exists, err := s.repo.ExistsByName(name, id)
	if err != nil {
		return internal.NewInternalError("Failed to update permission", err)
	}
	if exists {
		return internal.NewConflictError("Another permission with this name already exists.", internal.ErrCodeDuplicatePermission)
	}

	if err := s.repo.Update(&Permission{ID: id, Name: name, Description: description}); err != nil {
		s.logger.Error("failed to update permission", "permission_id", id, "error", err)
		return internal.NewInternalError("Failed to update permission", err)
	}

	s.audit.Log(&actorID, "UPDATE_PERMISSION", map[string]interface{}{
		"permission_id": id,
		"name":          name,
	})
	return nil
}

// Delete refuses while the permission is referenced by any role or user.
func (s *Service) Delete(actorID, id int64) error {
	inRoles, err := s.repo.IsAttachedToRoles(id)
	if err != nil {
		return internal.NewInternalError("Failed to delete permission", err)
	}
	if inRoles {
		return internal.ErrPermissionInRoles
	}

	inUsers, err := s.repo.IsGrantedToUsers(id)
	if err != nil {
		return internal.NewInternalError("Failed to delete permission", err)
	}
	if inUsers {
		return internal.ErrPermissionInUsers
	}

	deleted, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete permission", "permission_id", id, "error", err)
		return internal.NewInternalError("Failed to delete permission", err)
	}
	if !deleted {
		return internal.ErrPermissionNotFound
	}

	s.audit.Log(&actorID, "DELETE_PERMISSION", map[string]interface{}{"permission_id": id})
	return nil
}
