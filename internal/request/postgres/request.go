package postgres

import (
	"time"

	"github.com/frahmantamala/access-management/internal"
	permissionDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/permission"
	requestDatamodel "github.com/frahmantamala/access-management/internal/core/datamodel/request"
	"github.com/frahmantamala/access-management/internal/request"
	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.Repository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(req *request.AccessRequest) error {
	row := requestDatamodel.PermissionRequest{
		UserID:       req.UserID,
		PermissionID: req.PermissionID,
		Reason:       req.Reason,
		Status:       requestDatamodel.StatusPending,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return err
	}
	req.ID = row.RequestID
	req.RequestedAt = row.RequestedAt
	req.Status = row.Status
	return nil
}

func (r *RequestRepository) GetByID(id int64) (*request.AccessRequest, error) {
	var row requestDatamodel.PermissionRequest
	if err := r.db.Where("request_id = ?", id).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRequestNotFound
		}
		return nil, err
	}
	domain := toDomain(row)
	return &domain, nil
}

const listSelect = `
	SELECT pr.request_id, pr.user_id, u.full_name AS requester_name,
	       u.email AS requester_email, pr.permission_id, p.name AS permission_name,
	       pr.reason, pr.requested_at, pr.status, pr.reviewed_by, pr.reviewed_at,
	       pr.rejection_reason, pr.expires_at
	FROM permission_requests pr
	JOIN users u ON pr.user_id = u.user_id
	JOIN permissions p ON pr.permission_id = p.permission_id
`

type requestRow struct {
	RequestID       int64
	UserID          int64
	RequesterName   string
	RequesterEmail  string
	PermissionID    int64
	PermissionName  string
	Reason          string
	RequestedAt     time.Time
	Status          string
	ReviewedBy      *int64
	ReviewedAt      *time.Time
	RejectionReason *string
	ExpiresAt       *time.Time
}

// ListForAdmin exposes the shared Pending queue to every admin; once a
// request is reviewed it appears only in its reviewer's history.
func (r *RequestRepository) ListForAdmin(adminID int64, status string) ([]request.AccessRequest, error) {
	var rows []requestRow
	var err error
	if status == requestDatamodel.StatusPending {
		err = r.db.Raw(listSelect+` WHERE pr.status = ? ORDER BY pr.requested_at DESC`, status).Scan(&rows).Error
	} else {
		err = r.db.Raw(listSelect+` WHERE pr.status = ? AND pr.reviewed_by = ? ORDER BY pr.reviewed_at DESC`, status, adminID).Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (r *RequestRepository) ListForUser(userID int64, status string) ([]request.AccessRequest, error) {
	var rows []requestRow
	err := r.db.Raw(listSelect+` WHERE pr.user_id = ? AND pr.status = ? ORDER BY pr.requested_at DESC`, userID, status).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// Approve performs the three-step approval atomically: re-check Pending,
// insert the direct grant with the request's expiry, flip the status. The
// status flip is a conditional UPDATE guarded by `status = 'Pending'`; under
// concurrent approvals of the same request the loser sees RowsAffected == 0,
// fails with ErrRequestAlreadyProcessed and its transaction rolls back the
// grant.
func (r *RequestRepository) Approve(requestID, reviewerID int64, reviewedAt time.Time) (*request.AccessRequest, error) {
	var approved *request.AccessRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row requestDatamodel.PermissionRequest
		if err := tx.Where("request_id = ?", requestID).First(&row).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return internal.ErrRequestNotFound
			}
			return err
		}
		if row.Status != requestDatamodel.StatusPending {
			return internal.ErrRequestAlreadyProcessed
		}

		grant := permissionDatamodel.UserPermission{
			UserID:       row.UserID,
			PermissionID: row.PermissionID,
			ExpiresAt:    row.ExpiresAt,
			GrantedBy:    &reviewerID,
		}
		if err := tx.Create(&grant).Error; err != nil {
			return err
		}

		res := tx.Model(&requestDatamodel.PermissionRequest{}).
			Where("request_id = ? AND status = ?", requestID, requestDatamodel.StatusPending).
			Updates(map[string]interface{}{
				"status":      requestDatamodel.StatusApproved,
				"reviewed_by": reviewerID,
				"reviewed_at": reviewedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrRequestAlreadyProcessed
		}

		domain := toDomain(row)
		domain.Status = requestDatamodel.StatusApproved
		domain.ReviewedBy = &reviewerID
		domain.ReviewedAt = &reviewedAt
		approved = &domain
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.withNames(approved)
}

// Reject follows the same Pending re-check inside the transaction; a request
// already out of Pending is immutable.
func (r *RequestRepository) Reject(requestID, reviewerID int64, reason string, reviewedAt time.Time) (*request.AccessRequest, error) {
	var rejected *request.AccessRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var row requestDatamodel.PermissionRequest
		if err := tx.Where("request_id = ?", requestID).First(&row).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return internal.ErrRequestNotFound
			}
			return err
		}
		if row.Status != requestDatamodel.StatusPending {
			return internal.ErrRequestAlreadyProcessed
		}

		res := tx.Model(&requestDatamodel.PermissionRequest{}).
			Where("request_id = ? AND status = ?", requestID, requestDatamodel.StatusPending).
			Updates(map[string]interface{}{
				"status":           requestDatamodel.StatusRejected,
				"reviewed_by":      reviewerID,
				"reviewed_at":      reviewedAt,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrRequestAlreadyProcessed
		}

		domain := toDomain(row)
		domain.Status = requestDatamodel.StatusRejected
		domain.ReviewedBy = &reviewerID
		domain.ReviewedAt = &reviewedAt
		domain.RejectionReason = &reason
		rejected = &domain
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.withNames(rejected)
}

func (r *RequestRepository) ActiveAdminEmails() ([]string, error) {
	var emails []string
	err := r.db.Raw(`
		SELECT DISTINCT u.email
		FROM users u
		JOIN user_roles ur ON u.user_id = ur.user_id
		JOIN roles ro ON ur.role_id = ro.role_id
		WHERE u.user_status = ? AND LOWER(ro.name) IN (?, ?)
	`, "Active", "admin", "super admin").Scan(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

// withNames backfills requester and permission names for notification use.
func (r *RequestRepository) withNames(req *request.AccessRequest) (*request.AccessRequest, error) {
	var info struct {
		FullName string
		Email    string
	}
	err := r.db.Table("users").
		Select("full_name, email").
		Where("user_id = ?", req.UserID).
		Scan(&info).Error
	if err != nil {
		return nil, err
	}
	req.RequesterName = info.FullName
	req.RequesterEmail = info.Email

	var permName string
	err = r.db.Table("permissions").
		Where("permission_id = ?", req.PermissionID).
		Pluck("name", &permName).Error
	if err != nil {
		return nil, err
	}
	req.PermissionName = permName
	return req, nil
}

func fromRows(rows []requestRow) []request.AccessRequest {
	reqs := make([]request.AccessRequest, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, request.AccessRequest{
			ID:              row.RequestID,
			UserID:          row.UserID,
			RequesterName:   row.RequesterName,
			RequesterEmail:  row.RequesterEmail,
			PermissionID:    row.PermissionID,
			PermissionName:  row.PermissionName,
			Reason:          row.Reason,
			RequestedAt:     row.RequestedAt,
			Status:          row.Status,
			ReviewedBy:      row.ReviewedBy,
			ReviewedAt:      row.ReviewedAt,
			RejectionReason: row.RejectionReason,
			ExpiresAt:       row.ExpiresAt,
		})
	}
	return reqs
}

func toDomain(row requestDatamodel.PermissionRequest) request.AccessRequest {
	return request.AccessRequest{
		ID:              row.RequestID,
		UserID:          row.UserID,
		PermissionID:    row.PermissionID,
		Reason:          row.Reason,
		RequestedAt:     row.RequestedAt,
		Status:          row.Status,
		ReviewedBy:      row.ReviewedBy,
		ReviewedAt:      row.ReviewedAt,
		RejectionReason: row.RejectionReason,
		ExpiresAt:       row.ExpiresAt,
	}
}
