package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/user"
)

func TestBuildUserIdentity(t *testing.T) {
	u := &user.User{ID: "u-1", Name: "Alice", Email: "alice@example.com"}

	identity := BuildUserIdentity(u,
		[]role.AppRole{role.Clerk, role.Files},
		[]string{"openid", "email", "identity-api", "email", "unknown"},
		[]string{"identity-api", "openid", "email", "profile"},
	)

	assert.Equal(t, "u-1", identity.Subject)
	assert.Equal(t, []string{"openid", "email", "identity-api"}, identity.Scopes)

	roles, ok := identity.Claim(ClaimRoles)
	require.True(t, ok)
	assert.Equal(t, "Clerk,Files", roles)

	name, ok := identity.Claim(ClaimName)
	require.True(t, ok)
	assert.Equal(t, "Alice", name)

	for _, c := range identity.Claims {
		assert.Equal(t, AccessToken|IdentityToken, c.Destinations, c.Type)
	}

	s := identity.Session()
	assert.Equal(t, "u-1", s.GetSubject())
	assert.Equal(t, "Alice", s.GetUsername())
	assert.Equal(t, "u-1", s.Claims.Subject)
	assert.Equal(t, "alice@example.com", s.Extra[ClaimEmail])
	assert.Equal(t, "alice@example.com", s.Claims.Extra[ClaimEmail])
	assert.Equal(t, "Clerk,Files", s.Claims.Extra[ClaimRoles])
	assert.NotContains(t, s.Extra, ClaimSubject)
}

func TestBuildUserIdentityWithoutRoles(t *testing.T) {
	identity := BuildUserIdentity(&user.User{ID: "u-2"}, nil, nil, []string{"openid"})

	assert.Empty(t, identity.Scopes)
	roles, ok := identity.Claim(ClaimRoles)
	require.True(t, ok)
	assert.Equal(t, "", roles)
}

func TestBuildClientIdentity(t *testing.T) {
	identity := BuildClientIdentity("svc")
	s := identity.Session()

	assert.Equal(t, "svc", s.GetSubject())
	assert.Equal(t, "svc", s.GetUsername())
	assert.Equal(t, "some-value", s.Extra["some-claim"])
	assert.NotContains(t, s.Claims.Extra, "some-claim")
}

func TestSessionClone(t *testing.T) {
	s := BuildUserIdentity(&user.User{ID: "u-1", Name: "Alice"}, nil, nil, nil).Session()

	clone, ok := s.Clone().(*Session)
	require.True(t, ok)
	clone.Extra[ClaimName] = "Bob"
	clone.Claims.Extra[ClaimName] = "Bob"

	assert.Equal(t, "Alice", s.Extra[ClaimName])
	assert.Equal(t, "Alice", s.Claims.Extra[ClaimName])

	var nilSession *Session
	assert.Nil(t, nilSession.Clone())
}
