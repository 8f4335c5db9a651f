package api

import (
	"strings"

	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/role"
)

// toApp copies the editable fields of req onto a. Identity, type, secret
// and audit fields are owned by the service.
func toApp(req AppRequest, a *app.App) {
	a.Name = strings.TrimSpace(req.Name)
	a.URL = strings.TrimSpace(req.URL)
	a.Icon = req.Icon
	a.Roles = joinRoles(req.Roles)
	a.ClientID = strings.TrimSpace(req.ClientID)
	a.Ps = req.Ps
	a.Order = req.Order
}

func toView(a *app.App, secret string) AppView {
	names := a.RoleNames()
	titles := make([]string, 0, len(names))
	for _, name := range names {
		if r, ok := role.ParseAppRole(name); ok {
			titles = append(titles, r.Title())
		}
	}
	if names == nil {
		names = []string{}
	}
	return AppView{
		ID:           a.ID,
		Name:         a.Name,
		URL:          a.URL,
		Icon:         a.Icon,
		Type:         string(a.Type),
		Roles:        names,
		RoleTitles:   titles,
		ClientID:     a.ClientID,
		ClientSecret: secret,
		Ps:           a.Ps,
		Active:       a.Active(),
		Order:        a.Order,
		CreatedAt:    a.CreatedAt,
		CreatedBy:    a.CreatedBy,
		LastUpdated:  a.LastUpdated,
		UpdatedBy:    a.UpdatedBy,
	}
}

func toViews(apps []app.App) []AppView {
	views := make([]AppView, len(apps))
	for i := range apps {
		views[i] = toView(&apps[i], "")
	}
	return views
}

// joinRoles stores canonical role names.
func joinRoles(names []string) string {
	roles := role.ParseAppRoles(names)
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
