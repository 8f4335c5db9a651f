package registry

import (
	"context"
	"time"
)

// ClientType is the OAuth2 client type of a registered application.
type ClientType string

const (
	ClientTypePublic       ClientType = "public"
	ClientTypeConfidential ClientType = "confidential"
)

// Descriptor is the full set of registration parameters sent to the registry.
// It is rebuilt from scratch on every create and update.
type Descriptor struct {
	ClientID     string
	ClientSecret string
	ClientType   ClientType
	DisplayName  string
	RedirectURIs []string
	Permissions  []string
	Requirements []string
}

// Application is a registered OAuth2 client.
type Application struct {
	ID           string     `json:"id"`
	ClientID     string     `json:"client_id"`
	SecretHash   []byte     `json:"secret_hash,omitempty"`
	ClientType   ClientType `json:"client_type"`
	DisplayName  string     `json:"display_name"`
	RedirectURIs []string   `json:"redirect_uris"`
	Permissions  []string   `json:"permissions"`
	Requirements []string   `json:"requirements"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Registry is the authorization server's application store.
//
// Lookups return nil, nil when nothing matches. Create fails with
// errors.ErrCodeAlreadyExists when the client id is taken.
type Registry interface {
	FindByClientID(ctx context.Context, clientID string) (*Application, error)
	FindByID(ctx context.Context, id string) (*Application, error)
	Create(ctx context.Context, desc Descriptor) (*Application, error)
	Update(ctx context.Context, app *Application, desc Descriptor) error
	Delete(ctx context.Context, app *Application) error
	Populate(ctx context.Context, desc *Descriptor, app *Application) error
	HasPermission(ctx context.Context, app *Application, permission string) (bool, error)
	ValidateClientSecret(ctx context.Context, app *Application, secret string) (bool, error)
	List(ctx context.Context) ([]Application, error)
}
