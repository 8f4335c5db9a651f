package registry

import "strings"

// Permission prefixes
const (
	EndpointPrefix     = "ept:"
	GrantTypePrefix    = "gt:"
	ResponseTypePrefix = "rst:"
	ScopePrefix        = "scp:"
)

const (
	PermissionAuthorizationEndpoint = EndpointPrefix + "authorization"
	PermissionTokenEndpoint         = EndpointPrefix + "token"
	PermissionIntrospectionEndpoint = EndpointPrefix + "introspection"

	PermissionAuthorizationCodeGrant = GrantTypePrefix + "authorization_code"
	PermissionRefreshTokenGrant      = GrantTypePrefix + "refresh_token"
	PermissionClientCredentialsGrant = GrantTypePrefix + "client_credentials"

	PermissionCodeResponseType = ResponseTypePrefix + "code"

	PermissionEmailScope   = ScopePrefix + "email"
	PermissionProfileScope = ScopePrefix + "profile"
	PermissionRolesScope   = ScopePrefix + "roles"
)

// RequirementPKCE forces proof key for code exchange.
const RequirementPKCE = "ft:pkce"

// ScopePermission returns the permission that lets a client request scope.
func ScopePermission(scope string) string {
	return ScopePrefix + scope
}

// permissionValues returns the suffixes of every permission carrying prefix.
func permissionValues(permissions []string, prefix string) []string {
	var values []string
	for _, p := range permissions {
		if strings.HasPrefix(p, prefix) {
			values = append(values, strings.TrimPrefix(p, prefix))
		}
	}
	return values
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
