package oidc

import "strings"

// Endpoint paths served by Handle.Routes.
const (
	PathDiscovery     = "/.well-known/openid-configuration"
	PathJwks          = "/.well-known/jwks.json"
	PathAuthorize     = "/connect/authorize"
	PathToken         = "/connect/token"
	PathUserInfo      = "/connect/userinfo"
	PathIntrospection = "/connect/introspect"
)

// ProviderMetadata is the OpenID Connect discovery document.
type ProviderMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserInfoEndpoint                  string   `json:"userinfo_endpoint"`
	IntrospectionEndpoint             string   `json:"introspection_endpoint"`
	JwksURI                           string   `json:"jwks_uri"`
	ScopesSupported                   []string `json:"scopes_supported"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	ClaimsSupported                   []string `json:"claims_supported"`
}

// NewProviderMetadata builds the discovery document for issuer.
func NewProviderMetadata(issuer string) ProviderMetadata {
	base := strings.TrimSuffix(issuer, "/")
	return ProviderMetadata{
		Issuer:                            issuer,
		AuthorizationEndpoint:             base + PathAuthorize,
		TokenEndpoint:                     base + PathToken,
		UserInfoEndpoint:                  base + PathUserInfo,
		IntrospectionEndpoint:             base + PathIntrospection,
		JwksURI:                           base + PathJwks,
		ScopesSupported:                   []string{"openid", "offline_access", "email", "profile", "roles"},
		ResponseTypesSupported:            []string{"code"},
		GrantTypesSupported:               []string{"authorization_code", "refresh_token", "client_credentials"},
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{"RS256"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_basic", "client_secret_post"},
		CodeChallengeMethodsSupported:     []string{"S256"},
		ClaimsSupported:                   []string{ClaimSubject, ClaimName, ClaimEmail, ClaimRoles},
	}
}
