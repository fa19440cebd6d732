package audit

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

// List serves GET /audit_logs?page=&limit=&search= (admin only, enforced in
// the router).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")

	result, err := h.Service.List(page, limit, search)
	if err != nil {
		h.Logger.Error("failed to list audit logs", "error", err)
		h.WriteAppError(w, internal.NewInternalError("Failed to fetch audit logs", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
