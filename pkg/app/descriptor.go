package app

import "github.com/tendant/idm-portal/pkg/registry"

var spaPermissions = []string{
	registry.PermissionAuthorizationEndpoint,
	registry.PermissionTokenEndpoint,
	registry.PermissionAuthorizationCodeGrant,
	registry.PermissionRefreshTokenGrant,
	registry.PermissionCodeResponseType,
	registry.PermissionEmailScope,
	registry.PermissionProfileScope,
	registry.PermissionRolesScope,
}

// BuildDescriptor derives the registration parameters for a new app. apis are
// the resource servers an SPA may request tokens for; they are ignored for APIs.
func BuildDescriptor(app *App, apis []App) registry.Descriptor {
	var desc registry.Descriptor
	ApplyDescriptor(&desc, app, apis)
	return desc
}

// ApplyDescriptor overwrites everything in desc that is derived from app,
// leaving ClientSecret alone. Callers updating an existing registration
// populate desc from the registry first.
func ApplyDescriptor(desc *registry.Descriptor, app *App, apis []App) {
	desc.ClientID = app.ClientID
	desc.ClientType = app.Type.ClientType()
	desc.DisplayName = app.Name
	desc.Requirements = []string{registry.RequirementPKCE}

	if app.Type == TypeApi {
		desc.RedirectURIs = []string{}
		desc.Permissions = []string{registry.PermissionIntrospectionEndpoint}
		return
	}

	url := NormalizeURL(app.URL)
	desc.RedirectURIs = []string{
		url,
		url + "signin-callback",
		url + "signin-silent-callback",
	}

	permissions := make([]string, 0, len(spaPermissions)+len(apis))
	seen := make(map[string]bool, len(spaPermissions)+len(apis))
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			permissions = append(permissions, p)
		}
	}
	for _, p := range spaPermissions {
		add(p)
	}
	for _, api := range apis {
		if api.ClientID != "" {
			add(registry.ScopePermission(api.ClientID))
		}
	}
	desc.Permissions = permissions
}
