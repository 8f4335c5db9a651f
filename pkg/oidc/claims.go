package oidc

import (
	"strings"

	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/user"
)

// Claim types issued by the portal.
const (
	ClaimSubject = "sub"
	ClaimName    = "name"
	ClaimEmail   = "email"
	ClaimRoles   = "roles"
)

// Destination is the set of tokens a claim is written to.
type Destination uint8

const (
	AccessToken Destination = 1 << iota
	IdentityToken
)

type Claim struct {
	Type         string
	Value        string
	Destinations Destination
}

// Identity is the principal handed to the authorization engine.
type Identity struct {
	Subject string
	Scopes  []string
	Claims  []Claim
}

// BuildUserIdentity builds the principal for a signed-in user. Scopes are the
// requested scopes the client is permitted, in requested order. Every user
// claim goes to both the access token and the identity token.
func BuildUserIdentity(u *user.User, roles []role.AppRole, requested, permitted []string) Identity {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}

	both := AccessToken | IdentityToken
	return Identity{
		Subject: u.ID,
		Scopes:  intersect(requested, permitted),
		Claims: []Claim{
			{Type: ClaimSubject, Value: u.ID, Destinations: both},
			{Type: ClaimName, Value: u.Name, Destinations: both},
			{Type: ClaimEmail, Value: u.Email, Destinations: both},
			{Type: ClaimRoles, Value: strings.Join(names, ","), Destinations: both},
		},
	}
}

// BuildClientIdentity builds the principal for a client acting on its own
// behalf.
func BuildClientIdentity(clientID string) Identity {
	return Identity{
		Subject: clientID,
		Claims: []Claim{
			{Type: ClaimSubject, Value: clientID, Destinations: AccessToken | IdentityToken},
			{Type: "some-claim", Value: "some-value", Destinations: AccessToken},
		},
	}
}

// Claim returns the value of the first claim of type t.
func (i Identity) Claim(t string) (string, bool) {
	for _, c := range i.Claims {
		if c.Type == t {
			return c.Value, true
		}
	}
	return "", false
}

// Session converts the identity into an engine session.
func (i Identity) Session() *Session {
	s := NewSession()
	i.applyTo(s)
	return s
}

// applyTo writes the principal into s without touching expirations already
// set by the engine.
func (i Identity) applyTo(s *Session) {
	s.Subject = i.Subject
	if name, ok := i.Claim(ClaimName); ok && name != "" {
		s.Username = name
	} else {
		s.Username = i.Subject
	}

	claims := s.IDTokenClaims()
	claims.Subject = i.Subject
	if claims.Extra == nil {
		claims.Extra = map[string]interface{}{}
	}
	extra := s.GetExtraClaims()

	for _, c := range i.Claims {
		if c.Type == ClaimSubject {
			continue
		}
		if c.Destinations&AccessToken != 0 {
			extra[c.Type] = c.Value
		}
		if c.Destinations&IdentityToken != 0 {
			claims.Extra[c.Type] = c.Value
		}
	}
}

func intersect(requested, permitted []string) []string {
	allowed := make(map[string]bool, len(permitted))
	for _, p := range permitted {
		allowed[p] = true
	}

	scopes := []string{}
	seen := map[string]bool{}
	for _, s := range requested {
		if allowed[s] && !seen[s] {
			seen[s] = true
			scopes = append(scopes, s)
		}
	}
	return scopes
}
