// Package seed brings an empty portal to a usable state: the role catalogue,
// the first administrator and the default identity applications.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/config"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/user"
)

// Client ids of the default applications.
const (
	IdentityApiClientID   = "identity-api"
	IdentityWebClientID   = "identity-web"
	IdentityAdminClientID = "identity-admin"
)

// Deps are the services the seed writes through.
type Deps struct {
	Roles *role.RoleService
	Users *user.UserService
	Apps  *app.Service
}

// AppInfo describes one default application after seeding.
type AppInfo struct {
	ClientID string
	Type     app.Type
	Created  bool
	// ClientSecret is set only for APIs created by this run.
	ClientSecret string
}

// Result reports what Run changed.
type Result struct {
	Roles        []role.AppRole
	AdminID      string
	AdminEmail   string
	AdminCreated bool
	Apps         []AppInfo
}

type defaultApp struct {
	name     string
	clientID string
	typ      app.Type
	url      string
}

var defaultApps = []defaultApp{
	{name: "Identity API", clientID: IdentityApiClientID, typ: app.TypeApi},
	{name: "Identity Web", clientID: IdentityWebClientID, typ: app.TypeSpa, url: "http://localhost:5112/"},
	{name: "Identity Admin", clientID: IdentityAdminClientID, typ: app.TypeSpa, url: "http://localhost:3000/"},
}

// Run is idempotent: roles are upserted, the admin is created or refreshed,
// and apps that already exist are left alone.
func Run(ctx context.Context, deps Deps, admin config.AdminConfig) (*Result, error) {
	if err := admin.Validate(); err != nil {
		return nil, err
	}

	result := &Result{AdminEmail: admin.Email}

	for _, r := range role.AllAppRoles() {
		if err := deps.Roles.Ensure(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to ensure role %s: %w", r, err)
		}
		result.Roles = append(result.Roles, r)
	}

	adminUser, created, err := ensureAdmin(ctx, deps.Users, admin)
	if err != nil {
		return nil, err
	}
	result.AdminID = adminUser.ID
	result.AdminCreated = created

	apps, err := ensureApps(ctx, deps.Apps, adminUser.ID)
	if err != nil {
		return nil, err
	}
	result.Apps = apps

	slog.Info("seed completed", "roles", len(result.Roles), "admin_created", created, "apps", len(apps))
	return result, nil
}

func ensureAdmin(ctx context.Context, users *user.UserService, admin config.AdminConfig) (*user.User, bool, error) {
	u, err := users.FindByEmail(ctx, admin.Email)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find admin user: %w", err)
	}

	created := false
	if u == nil {
		u = &user.User{
			UserName:       admin.Email,
			Email:          admin.Email,
			Phone:          admin.Phone,
			Name:           admin.Name,
			EmailConfirmed: true,
			Active:         true,
		}
		if err := users.Create(ctx, u); err != nil {
			return nil, false, err
		}
		created = true
		slog.Info("admin user created", "user_id", u.ID, "email", u.Email)
	} else {
		u.Phone = admin.Phone
		u.Name = admin.Name
		if err := users.Update(ctx, u); err != nil {
			return nil, false, err
		}
	}

	isDev, err := users.HasRole(ctx, u, role.Dev)
	if err != nil {
		return nil, false, err
	}
	if !isDev {
		if err := users.AddToRole(ctx, u, role.Dev); err != nil {
			return nil, false, err
		}
	}
	return u, created, nil
}

func ensureApps(ctx context.Context, apps *app.Service, actorID string) ([]AppInfo, error) {
	var infos []AppInfo
	var apis []app.App

	for _, d := range defaultApps {
		existing, err := apps.FindByClientID(ctx, d.clientID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			slog.Info("app already exists, skipping", "client_id", d.clientID)
			infos = append(infos, AppInfo{ClientID: d.clientID, Type: existing.Type})
			if existing.Type == app.TypeApi {
				apis = append(apis, *existing)
			}
			continue
		}

		a := &app.App{
			Name:      d.name,
			URL:       d.url,
			ClientID:  d.clientID,
			CreatedBy: actorID,
		}
		info := AppInfo{ClientID: d.clientID, Type: d.typ, Created: true}

		switch d.typ {
		case app.TypeApi:
			if err := apps.CreateApi(ctx, a); err != nil {
				return nil, err
			}
			secret, err := apps.GetDecryptClientSecret(a)
			if err != nil {
				return nil, err
			}
			info.ClientSecret = secret
			apis = append(apis, *a)
		case app.TypeSpa:
			if err := apps.CreateSpa(ctx, a, apis); err != nil {
				return nil, err
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}
