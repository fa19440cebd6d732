package request

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	"github.com/frahmantamala/access-management/internal/core/datamodel/request"
	"github.com/frahmantamala/access-management/internal/core/events"
	"github.com/frahmantamala/access-management/internal/permission"
)

// Service drives the access-request state machine. Approval writes the direct
// grant and the status flip in one transaction; notification fan-out is
// best-effort and never fails the operation.
type Service struct {
	repo     Repository
	perms    permission.Repository
	audit    *audit.Service
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, perms permission.Repository, auditSvc *audit.Service, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		perms:    perms,
		audit:    auditSvc,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Submit creates a Pending request and fans a notification out to every
// active admin.
func (s *Service) Submit(ctx context.Context, requesterID int64, requesterName string, dto SubmitRequestDTO) (*AccessRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	perm, err := s.perms.GetByID(dto.PermissionID)
	if err != nil {
		return nil, err
	}

	req := &AccessRequest{
		UserID:       requesterID,
		PermissionID: dto.PermissionID,
		Reason:       strings.TrimSpace(dto.Reason),
		Status:       request.StatusPending,
		ExpiresAt:    dto.ExpiresAt,
	}
	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create access request", "user_id", requesterID, "error", err)
		return nil, internal.NewInternalError("Failed to submit request", err)
	}

	s.audit.Log(&requesterID, "CREATE_PERMISSION_REQUEST", map[string]interface{}{
		"request_id":    req.ID,
		"permission_id": dto.PermissionID,
		"reason":        req.Reason,
	})

	adminEmails, err := s.repo.ActiveAdminEmails()
	if err != nil {
		s.logger.Error("failed to load admin emails for notification", "request_id", req.ID, "error", err)
	} else if len(adminEmails) > 0 {
		event := events.NewRequestSubmittedEvent(req.ID, requesterName, perm.Name, adminEmails)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish request submitted event", "request_id", req.ID, "error", err)
		}
	}

	return req, nil
}

// Approve grants the requested permission and marks the request Approved.
// The Pending re-check runs inside the repository transaction, so of two
// concurrent approvals exactly one commits and the other observes
// REQUEST_ALREADY_PROCESSED.
func (s *Service) Approve(ctx context.Context, reviewerID, requestID int64) error {
	req, err := s.repo.Approve(requestID, reviewerID, time.Now())
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to approve request", "request_id", requestID, "error", err)
		return internal.NewInternalError("Failed to approve request", err)
	}

	s.audit.Log(&reviewerID, "APPROVE_PERMISSION_REQUEST", map[string]interface{}{
		"request_id":    requestID,
		"user_id":       req.UserID,
		"permission_id": req.PermissionID,
		"expires_at":    req.ExpiresAt,
	})

	event := events.NewRequestApprovedEvent(req.ID, req.RequesterName, req.RequesterEmail, req.PermissionName)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish request approved event", "request_id", requestID, "error", err)
	}
	return nil
}

// Reject marks the request Rejected with the reviewer's reason. No
// entitlement changes.
func (s *Service) Reject(ctx context.Context, reviewerID, requestID int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return internal.NewValidationError("rejection reason is required", internal.ErrCodeValidationFailed)
	}

	req, err := s.repo.Reject(requestID, reviewerID, reason, time.Now())
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to reject request", "request_id", requestID, "error", err)
		return internal.NewInternalError("Failed to reject request", err)
	}

	s.audit.Log(&reviewerID, "REJECT_PERMISSION_REQUEST", map[string]interface{}{
		"request_id":       requestID,
		"user_id":          req.UserID,
		"permission_id":    req.PermissionID,
		"rejection_reason": reason,
	})

	event := events.NewRequestRejectedEvent(req.ID, req.RequesterName, req.RequesterEmail, req.PermissionName, reason)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish request rejected event", "request_id", requestID, "error", err)
	}
	return nil
}

// List returns requests visible to the caller: admins see all Pending
// requests plus the non-Pending ones they reviewed; everyone else sees only
// their own.
func (s *Service) List(actorID int64, isAdmin bool, status string) ([]AccessRequest, error) {
	status = normalizeStatus(status)
	if status == "" {
		return nil, internal.NewValidationFieldError("status", "must be Pending, Approved or Rejected", internal.ErrCodeValidationFailed)
	}

	var (
		reqs []AccessRequest
		err  error
	)
	if isAdmin {
		reqs, err = s.repo.ListForAdmin(actorID, status)
	} else {
		reqs, err = s.repo.ListForUser(actorID, status)
	}
	if err != nil {
		s.logger.Error("failed to list requests", "actor_id", actorID, "error", err)
		return nil, internal.NewInternalError("Failed to fetch requests", err)
	}
	return reqs, nil
}

func normalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "pending":
		return request.StatusPending
	case "approved":
		return request.StatusApproved
	case "rejected":
		return request.StatusRejected
	default:
		return ""
	}
}
