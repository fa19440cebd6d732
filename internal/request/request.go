package request

import "time"

// AccessRequest is a user's petition for a time-bounded direct permission
// grant. Status transitions exactly once out of Pending.
type AccessRequest struct {
	ID              int64      `json:"request_id"`
	UserID          int64      `json:"user_id"`
	RequesterName   string     `json:"requester_name,omitempty"`
	RequesterEmail  string     `json:"requester_email,omitempty"`
	PermissionID    int64      `json:"permission_id"`
	PermissionName  string     `json:"permission_name,omitempty"`
	Reason          string     `json:"reason"`
	RequestedAt     time.Time  `json:"requested_at"`
	Status          string     `json:"status"`
	ReviewedBy      *int64     `json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	RejectionReason *string    `json:"rejection_reason"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

type Repository interface {
	Create(req *AccessRequest) error
	GetByID(id int64) (*AccessRequest, error)

	// ListForAdmin returns all Pending requests when status is Pending, and
	// otherwise only requests the given admin reviewed.
	ListForAdmin(adminID int64, status string) ([]AccessRequest, error)
	ListForUser(userID int64, status string) ([]AccessRequest, error)

	// Approve atomically re-checks Pending status, inserts the direct grant
	// with the request's expiry, and marks the request Approved. Returns
	// ErrRequestAlreadyProcessed when the request already left Pending.
	Approve(requestID, reviewerID int64, reviewedAt time.Time) (*AccessRequest, error)

	// Reject atomically re-checks Pending status and marks the request
	// Rejected with the reviewer and reason. No grant is written.
	Reject(requestID, reviewerID int64, reason string, reviewedAt time.Time) (*AccessRequest, error)

	// ActiveAdminEmails lists the emails of active users holding an admin
	// role, for the submission fan-out.
	ActiveAdminEmails() ([]string, error)
}
