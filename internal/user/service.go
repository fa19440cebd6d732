package user

import (
	"log/slog"
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	"golang.org/x/crypto/bcrypt"
)

// Service owns user CRUD. Role assignment changes ride in the same
// transaction as the user row so a half-assigned user is never observable.
type Service struct {
	repo       Repository
	audit      *audit.Service
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo Repository, auditSvc *audit.Service, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		audit:      auditSvc,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) GetAll(actorID int64) ([]User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("Failed to fetch users", err)
	}

	s.audit.Log(&actorID, "VIEW_USERS", "Fetched all users")
	return users, nil
}

func (s *Service) GetByID(actorID, id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.audit.Log(&actorID, "VIEW_USER", map[string]interface{}{"user_id": id})
	return u, nil
}

func (s *Service) Create(actorID int64, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	exists, err := s.repo.ExistsByEmail(email, 0)
	if err != nil {
		return nil, internal.NewInternalError("Failed to create user", err)
	}
	if exists {
		return nil, internal.ErrDuplicateUserEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("Failed to create user", err)
	}

	u := &User{
		FullName:           strings.TrimSpace(dto.FullName),
		Email:              email,
		Password:           string(hashed),
		Status:             StatusActive,
		MustChangePassword: dto.MustChangePassword,
	}
	if err := s.repo.CreateWithRole(u, dto.RoleID); err != nil {
		s.logger.Error("failed to create user", "email", email, "error", err)
		return nil, internal.NewInternalError("Failed to create user", err)
	}

	s.audit.Log(&actorID, "CREATE_USER", map[string]interface{}{
		"user_id": u.ID,
		"email":   email,
		"role_id": dto.RoleID,
	})
	return u, nil
}

func (s *Service) Update(actorID, id int64, dto UpdateUserDTO) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	changes := map[string]interface{}{}
	if dto.FullName != nil {
		name := strings.TrimSpace(*dto.FullName)
		if name == "" {
			return internal.NewValidationError("full name cannot be empty", internal.ErrCodeNameRequired)
		}
		changes["full_name"] = name
	}
	if dto.Status != nil {
		if *dto.Status != StatusActive && *dto.Status != StatusInactive {
			return internal.NewValidationFieldError("user_status", "must be Active or Inactive", internal.ErrCodeValidationFailed)
		}
		changes["user_status"] = *dto.Status
	}
	if dto.Password != nil {
		if len(*dto.Password) < 6 {
			return internal.NewValidationError("password must be at least 6 characters", internal.ErrCodePasswordTooShort)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return internal.NewInternalError("Failed to update user", err)
		}
		changes["password"] = string(hashed)
		changes["must_change_password"] = false
	}

	if len(changes) == 0 && dto.RoleID == nil {
		return internal.NewValidationError("no fields to update", internal.ErrCodeValidationFailed)
	}

	if err := s.repo.UpdateWithRole(id, changes, dto.RoleID); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return internal.NewInternalError("Failed to update user", err)
	}

	s.audit.Log(&actorID, "UPDATE_USER", map[string]interface{}{
		"user_id": id,
		"role_id": dto.RoleID,
	})
	return nil
}

func (s *Service) Delete(actorID, id int64) error {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return internal.NewInternalError("Failed to delete user", err)
	}
	if !deleted {
		return internal.ErrUserNotFound
	}

	s.audit.Log(&actorID, "DELETE_USER", map[string]interface{}{"user_id": id})
	return nil
}
