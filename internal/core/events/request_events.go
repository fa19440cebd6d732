package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestSubmitted = "request.submitted"
	EventTypeRequestApproved  = "request.approved"
	EventTypeRequestRejected  = "request.rejected"
)

// RequestSubmittedEvent fans out to every active admin so one of them can
// review the pending request.
type RequestSubmittedEvent struct {
	BaseEvent
	RequestID      int64    `json:"request_id"`
	RequesterName  string   `json:"requester_name"`
	PermissionName string   `json:"permission_name"`
	AdminEmails    []string `json:"admin_emails"`
}

func NewRequestSubmittedEvent(requestID int64, requesterName, permissionName string, adminEmails []string) *RequestSubmittedEvent {
	return &RequestSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"requester_name":  requesterName,
				"permission_name": permissionName,
			},
		},
		RequestID:      requestID,
		RequesterName:  requesterName,
		PermissionName: permissionName,
		AdminEmails:    adminEmails,
	}
}

type RequestReviewedEvent struct {
	BaseEvent
	RequestID       int64  `json:"request_id"`
	RequesterName   string `json:"requester_name"`
	RequesterEmail  string `json:"requester_email"`
	PermissionName  string `json:"permission_name"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func NewRequestApprovedEvent(requestID int64, requesterName, requesterEmail, permissionName string) *RequestReviewedEvent {
	return &RequestReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"permission_name": permissionName,
			},
		},
		RequestID:      requestID,
		RequesterName:  requesterName,
		RequesterEmail: requesterEmail,
		PermissionName: permissionName,
	}
}

func NewRequestRejectedEvent(requestID int64, requesterName, requesterEmail, permissionName, rejectionReason string) *RequestReviewedEvent {
	return &RequestReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRequestRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"permission_name": permissionName,
			},
		},
		RequestID:       requestID,
		RequesterName:   requesterName,
		RequesterEmail:  requesterEmail,
		PermissionName:  permissionName,
		RejectionReason: rejectionReason,
	}
}
