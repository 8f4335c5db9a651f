// Package oidc is the portal's OpenID Connect provider.
//
// Protocol handling is done by fosite, composed with every handler enabled and
// PKCE enforced for public clients. Clients are not configured here: each
// lookup goes to the application registry, so an App created or removed in the
// admin API is visible to the next request.
//
// # Principals
//
// The authorize endpoint resolves the signed-in portal user from the session
// token (bearer header or access_token cookie) and builds the principal with
// BuildUserIdentity. Users without a session are sent to the login page with
// the authorize request preserved in the redirect parameter:
//
//	/login?redirect=%2Fconnect%2Fauthorize%3Fclient_id%3Dweb%26...
//
// The token endpoint builds a principal only for client_credentials, using
// BuildClientIdentity. Code and refresh grants reuse the principal stored when
// the code was issued.
//
// # Usage
//
//	key, err := oidc.EnsureSigningKey("private.pem")
//	if err != nil {
//		return err
//	}
//	h := oidc.NewHandle(tokenAuth, registry, userService, key, oidc.DefaultConfig())
//	h.Routes(router)
package oidc
