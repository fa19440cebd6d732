package menu

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

func (s *Service) GetAll(actorID int64) ([]Menu, error) {
	menus, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list menus", "error", err)
		return nil, internal.NewInternalError("Failed to fetch menus", err)
	}

	s.audit.Log(&actorID, "VIEW_MENUS", "Fetched all menus")
	return menus, nil
}

func (s *Service) Create(actorID int64, dto UpsertMenuDTO) (*Menu, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m := &Menu{
		Label:   strings.TrimSpace(dto.Label),
		Route:   strings.TrimSpace(dto.Route),
		MenuKey: strings.TrimSpace(dto.MenuKey),
	}
	if err := s.repo.CreateWithPermissionLinks(m); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create menu", "menu_key", m.MenuKey, "error", err)
		return nil, internal.NewInternalError("Failed to create menu", err)
	}

	s.audit.Log(&actorID, "CREATE_MENU", map[string]interface{}{
		"menu_id":  m.ID,
		"label":    m.Label,
		"route":    m.Route,
		"menu_key": m.MenuKey,
	})
	return m, nil
}

func (s *Service) Update(actorID, id int64, dto UpsertMenuDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	menuKey := strings.TrimSpace(dto.MenuKey)
	exists, err := s.repo.ExistsByKey(menuKey, id)
	if err != nil {
		return internal.NewInternalError("Failed to update menu", err)
	}
	if exists {
		return internal.NewConflictError("Another menu with this key already exists.", internal.ErrCodeDuplicateMenuKey)
	}

	m := &Menu{
		ID:      id,
		Label:   strings.TrimSpace(dto.Label),
		Route:   strings.TrimSpace(dto.Route),
		MenuKey: menuKey,
	}
	if err := s.repo.Update(m); err != nil {
		s.logger.Error("failed to update menu", "menu_id", id, "error", err)
		return internal.NewInternalError("Failed to update menu", err)
	}

	s.audit.Log(&actorID, "UPDATE_MENU", map[string]interface{}{
		"menu_id":  id,
		"label":    m.Label,
		"route":    m.Route,
		"menu_key": m.MenuKey,
	})
	return nil
}

func (s *Service) Delete(actorID, id int64) error {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete menu", "menu_id", id, "error", err)
		return internal.NewInternalError("Failed to delete menu", err)
	}
	if !deleted {
		return internal.ErrMenuNotFound
	}

	s.audit.Log(&actorID, "DELETE_MENU", map[string]interface{}{"menu_id": id})
	return nil
}
