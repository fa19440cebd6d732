package audit

import (
	"encoding/json"
	"log/slog"
)

// Service appends immutable audit records. Every write is best-effort: a
// failure here is logged and swallowed so it can never abort the business
// operation that triggered it.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Log records an action. details may be a string or any JSON-marshalable
// value; userID is nil for system actions.
func (s *Service) Log(userID *int64, actionType string, details interface{}) {
	actionDetails, ok := details.(string)
	if !ok {
		encoded, err := json.Marshal(details)
		if err != nil {
			s.logger.Error("audit log: failed to encode details", "action_type", actionType, "error", err)
			actionDetails = "unserializable details"
		} else {
			actionDetails = string(encoded)
		}
	}

	if err := s.repo.Append(userID, actionType, actionDetails); err != nil {
		s.logger.Error("audit log error", "action_type", actionType, "error", err)
	}
}

func (s *Service) List(page, limit int, search string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.repo.List(page, limit, search)
}
