// Package app manages client applications: the App record, its stores, and
// the Service that keeps records and the application registry in step.
package app

import (
	"strings"
	"time"

	"github.com/tendant/idm-portal/pkg/registry"
)

// Type distinguishes browser applications from resource servers.
type Type string

const (
	TypeSpa Type = "Spa"
	TypeApi Type = "Api"
)

// ParseType accepts a type name in any case. Unknown names yield "", false.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spa":
		return TypeSpa, true
	case "api":
		return TypeApi, true
	}
	return "", false
}

// ClientType maps Spa to public and Api to confidential.
func (t Type) ClientType() registry.ClientType {
	if t == TypeSpa {
		return registry.ClientTypePublic
	}
	return registry.ClientTypeConfidential
}

// TypeFromClientType is the inverse of Type.ClientType.
func TypeFromClientType(ct registry.ClientType) (Type, bool) {
	switch ct {
	case registry.ClientTypePublic:
		return TypeSpa, true
	case registry.ClientTypeConfidential:
		return TypeApi, true
	}
	return "", false
}

// App is a registered client application as the portal records it.
type App struct {
	ID       int
	Name     string
	URL      string
	Icon     string
	Type     Type
	Roles    string // comma separated role names; empty means everyone
	ClientID string
	Encrypt  string // client secret ciphertext, API apps only
	Ps       string

	Removed bool
	Order   int

	CreatedAt   time.Time
	CreatedBy   string
	LastUpdated *time.Time
	UpdatedBy   string
}

// Active reports whether the app has not been removed.
func (a *App) Active() bool {
	return !a.Removed
}

// RoleNames splits Roles into trimmed, non-empty names.
func (a *App) RoleNames() []string {
	var names []string
	for _, part := range strings.Split(a.Roles, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// VisibleTo reports whether a user holding roles may see the app.
func (a *App) VisibleTo(roles []string) bool {
	names := a.RoleNames()
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		for _, role := range roles {
			if strings.EqualFold(name, role) {
				return true
			}
		}
	}
	return false
}

// SetUpdated stamps the audit fields for a change made by actorID.
func (a *App) SetUpdated(actorID string, at time.Time) {
	a.UpdatedBy = actorID
	a.LastUpdated = &at
}

// NormalizeURL ensures a trailing slash.
func NormalizeURL(url string) string {
	if !strings.HasSuffix(url, "/") {
		return url + "/"
	}
	return url
}

// LoginURL is the entry point the portal links to for an SPA, tagged with the source that sent the user.
func (a *App) LoginURL(source string) string {
	return NormalizeURL(a.URL) + "login?source=" + source
}
