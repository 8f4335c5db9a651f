package registry

import "github.com/ory/fosite"

// FositeClient translates an application into the client model of the
// authorization engine. Grant types, response types and scopes come from the
// prefixed permissions; clients allowed at the authorization endpoint may also
// ask for openid and offline_access.
func FositeClient(app *Application) *fosite.DefaultClient {
	client := &fosite.DefaultClient{
		ID:            app.ClientID,
		Secret:        app.SecretHash,
		RedirectURIs:  append([]string(nil), app.RedirectURIs...),
		GrantTypes:    permissionValues(app.Permissions, GrantTypePrefix),
		ResponseTypes: permissionValues(app.Permissions, ResponseTypePrefix),
		Public:        app.ClientType == ClientTypePublic,
	}

	var scopes []string
	if contains(app.Permissions, PermissionAuthorizationEndpoint) {
		scopes = append(scopes, "openid", "offline_access")
	}
	client.Scopes = append(scopes, permissionValues(app.Permissions, ScopePrefix)...)

	// fosite falls back to authorization_code/code for empty lists, which would
	// widen an introspection-only client.
	if len(client.GrantTypes) == 0 {
		client.GrantTypes = fosite.Arguments{"none"}
	}
	if len(client.ResponseTypes) == 0 {
		client.ResponseTypes = fosite.Arguments{"none"}
	}
	return client
}
