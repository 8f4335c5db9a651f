package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/idm-portal/pkg/registry"
)

func TestBuildDescriptorSpa(t *testing.T) {
	spa := &App{Name: "X", URL: "http://x", ClientID: "x-web", Type: TypeSpa}

	desc := BuildDescriptor(spa, nil)

	assert.Equal(t, "x-web", desc.ClientID)
	assert.Equal(t, registry.ClientTypePublic, desc.ClientType)
	assert.Equal(t, "X", desc.DisplayName)
	assert.Empty(t, desc.ClientSecret)
	assert.Equal(t, []string{"http://x/", "http://x/signin-callback", "http://x/signin-silent-callback"}, desc.RedirectURIs)
	assert.Equal(t, spaPermissions, desc.Permissions)
	assert.Equal(t, []string{registry.RequirementPKCE}, desc.Requirements)
}

func TestBuildDescriptorSpaScopes(t *testing.T) {
	spa := &App{URL: "http://x/", ClientID: "x-web", Type: TypeSpa}
	apis := []App{{ClientID: "identity-api"}, {ClientID: "files-api"}, {ClientID: "identity-api"}}

	desc := BuildDescriptor(spa, apis)

	assert.Len(t, desc.Permissions, len(spaPermissions)+2)
	assert.Equal(t, "scp:identity-api", desc.Permissions[len(spaPermissions)])
	assert.Equal(t, "scp:files-api", desc.Permissions[len(spaPermissions)+1])
}

func TestBuildDescriptorApi(t *testing.T) {
	api := &App{Name: "Identity API", URL: "http://api", ClientID: "identity-api", Type: TypeApi}

	desc := BuildDescriptor(api, []App{{ClientID: "ignored"}})

	assert.Equal(t, registry.ClientTypeConfidential, desc.ClientType)
	assert.Empty(t, desc.RedirectURIs)
	assert.Equal(t, []string{registry.PermissionIntrospectionEndpoint}, desc.Permissions)
	assert.Equal(t, []string{registry.RequirementPKCE}, desc.Requirements)
}

func TestApplyDescriptorIsIdempotent(t *testing.T) {
	spa := &App{Name: "X", URL: "http://x/", ClientID: "x-web", Type: TypeSpa}
	apis := []App{{ClientID: "identity-api"}}

	first := BuildDescriptor(spa, apis)
	second := first
	second.ClientSecret = "kept"
	ApplyDescriptor(&second, spa, apis)

	assert.Equal(t, "kept", second.ClientSecret)
	second.ClientSecret = ""
	assert.Equal(t, first, second)
}

func TestTypeMapping(t *testing.T) {
	for _, typ := range []Type{TypeSpa, TypeApi} {
		back, ok := TypeFromClientType(typ.ClientType())
		assert.True(t, ok)
		assert.Equal(t, typ, back)
	}
	_, ok := TypeFromClientType("hybrid")
	assert.False(t, ok)

	parsed, ok := ParseType("spa")
	assert.True(t, ok)
	assert.Equal(t, TypeSpa, parsed)
}

func TestVisibleTo(t *testing.T) {
	open := &App{}
	assert.True(t, open.VisibleTo(nil))

	gated := &App{Roles: "Files, Clerk"}
	assert.True(t, gated.VisibleTo([]string{"clerk"}))
	assert.False(t, gated.VisibleTo([]string{"Driver"}))
	assert.Equal(t, []string{"Files", "Clerk"}, gated.RoleNames())
}

func TestLoginURL(t *testing.T) {
	a := &App{URL: "http://localhost:5112"}
	assert.Equal(t, "http://localhost:5112/login?source=portal", a.LoginURL("portal"))
}
