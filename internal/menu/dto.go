package menu

import (
	"strings"

	"github.com/frahmantamala/access-management/internal"
)

type UpsertMenuDTO struct {
	Label   string `json:"label"`
	Route   string `json:"route"`
	MenuKey string `json:"menu_key"`
}

func (d UpsertMenuDTO) Validate() error {
	if strings.TrimSpace(d.Label) == "" {
		return internal.NewValidationFieldError("label", "label is required", internal.ErrCodeNameRequired)
	}
	if strings.TrimSpace(d.Route) == "" {
		return internal.NewValidationFieldError("route", "route is required", internal.ErrCodeNameRequired)
	}
	if strings.TrimSpace(d.MenuKey) == "" {
		return internal.NewValidationFieldError("menu_key", "menu_key is required", internal.ErrCodeNameRequired)
	}
	return nil
}
