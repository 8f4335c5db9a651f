package api

import "time"

// AppRequest is the editable part of an app.
type AppRequest struct {
	Name     string   `json:"name"`
	URL      string   `json:"url,omitempty"`
	Icon     string   `json:"icon,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	ClientID string   `json:"client_id"`
	Ps       string   `json:"ps,omitempty"`
	Order    int      `json:"order"`
	Apis     []string `json:"apis,omitempty"` // client ids of APIs an SPA may call
}

type AppView struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url"`
	Icon         string     `json:"icon"`
	Type         string     `json:"type"`
	Roles        []string   `json:"roles"`
	RoleTitles   []string   `json:"role_titles"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret,omitempty"`
	Ps           string     `json:"ps"`
	Active       bool       `json:"active"`
	Order        int        `json:"order"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    string     `json:"created_by"`
	LastUpdated  *time.Time `json:"last_updated,omitempty"`
	UpdatedBy    string     `json:"updated_by,omitempty"`
}

type ValidateSecretResponse struct {
	Valid bool `json:"valid"`
}

type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
