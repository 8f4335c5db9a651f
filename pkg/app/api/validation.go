package api

import (
	"net/url"
	"strings"

	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/errors"
	"github.com/tendant/idm-portal/pkg/role"
)

// ValidateAppRequest checks req for an app of type t and reports every
// problem at once.
func ValidateAppRequest(req *AppRequest, t app.Type) error {
	details := map[string]interface{}{}

	if strings.TrimSpace(req.ClientID) == "" {
		details["client_id"] = "required"
	}
	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "required"
	}
	if t == app.TypeSpa {
		if strings.TrimSpace(req.URL) == "" {
			details["url"] = "required"
		} else if !isAbsoluteHTTP(req.URL) {
			details["url"] = "must be an absolute http(s) URL"
		}
	} else if req.URL != "" && !isAbsoluteHTTP(req.URL) {
		details["url"] = "must be an absolute http(s) URL"
	}
	for _, name := range req.Roles {
		if _, ok := role.ParseAppRole(name); !ok {
			details["roles"] = "unknown role: " + name
			break
		}
	}

	if len(details) > 0 {
		return errors.ValidationFailed(details)
	}
	return nil
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
