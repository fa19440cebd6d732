package menu

import (
	"log/slog"
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/permission"
)

// GroupByMenuKey buckets permission names by substring containment: a
// permission belongs to the first menu key (in the given order) contained in
// its name, and to the misc bucket when no key matches. The classification is
// deliberately coarse; downstream consumers depend on this exact behavior, so
// do not replace it with a structured relation.
func GroupByMenuKey(permissionNames, menuKeys []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, name := range permissionNames {
		matched := ""
		for _, key := range menuKeys {
			if strings.Contains(name, key) {
				matched = key
				break
			}
		}
		if matched == "" {
			matched = MiscKey
		}
		grouped[matched] = append(grouped[matched], name)
	}
	return grouped
}

// Projector maps an effective permission set onto navigable menu entries.
type Projector struct {
	repo   Repository
	logger *slog.Logger
}

func NewProjector(repo Repository, logger *slog.Logger) *Projector {
	return &Projector{
		repo:   repo,
		logger: logger,
	}
}

// Project returns the menu entries visible to a holder of the given
// permission set, plus the non-empty permission groups keyed by menu key.
//
// An entry is included only when both mechanisms agree: the menu must be
// id-linked to a held permission AND its key's substring group must be
// non-empty. A mismatch between the two silently excludes the entry.
func (p *Projector) Project(set *permission.EffectiveSet) ([]MenuEntry, map[string][]string, error) {
	menuKeys, err := p.repo.AllMenuKeys()
	if err != nil {
		p.logger.Error("failed to load menu keys", "error", err)
		return nil, nil, internal.NewInternalError("Failed to project menu", err)
	}

	grouped := GroupByMenuKey(set.Names, menuKeys)

	if set.IsEmpty() {
		return []MenuEntry{}, map[string][]string{}, nil
	}

	linked, err := p.repo.LinkedToPermissions(set.IDs)
	if err != nil {
		p.logger.Error("failed to load linked menus", "error", err)
		return nil, nil, internal.NewInternalError("Failed to project menu", err)
	}

	entries := make([]MenuEntry, 0, len(linked))
	for _, m := range linked {
		perms := grouped[m.MenuKey]
		if len(perms) == 0 {
			continue
		}
		entries = append(entries, MenuEntry{
			Label:       m.Label,
			Key:         m.MenuKey,
			Route:       m.Route,
			Permissions: perms,
		})
	}

	return entries, grouped, nil
}
