package registry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/idm-portal/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// newApplication validates desc and builds a fresh record with a hashed secret.
func newApplication(desc Descriptor, hashCost int) (*Application, error) {
	now := time.Now().UTC()
	app := &Application{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	if err := app.apply(desc, hashCost, now); err != nil {
		return nil, err
	}
	return app, nil
}

// apply overwrites app with desc. An empty ClientSecret keeps the current hash.
func (a *Application) apply(desc Descriptor, hashCost int, now time.Time) error {
	if desc.ClientID == "" {
		return errors.InvalidInput("client_id", "cannot be empty")
	}
	clientType := desc.ClientType
	if clientType == "" {
		clientType = ClientTypeConfidential
	}

	var hash []byte
	switch clientType {
	case ClientTypePublic:
		if desc.ClientSecret != "" {
			return errors.InvalidInput("client_secret", "public clients cannot have a secret")
		}
	case ClientTypeConfidential:
		hash = a.SecretHash
		if desc.ClientSecret != "" {
			h, err := bcrypt.GenerateFromPassword([]byte(desc.ClientSecret), hashCost)
			if err != nil {
				return fmt.Errorf("failed to hash client secret: %w", err)
			}
			hash = h
		}
		if len(hash) == 0 {
			return errors.InvalidInput("client_secret", "confidential clients require a secret")
		}
	default:
		return errors.InvalidInput("client_type", string(clientType))
	}

	a.ClientID = desc.ClientID
	a.SecretHash = hash
	a.ClientType = clientType
	a.DisplayName = desc.DisplayName
	a.RedirectURIs = append([]string(nil), desc.RedirectURIs...)
	a.Permissions = append([]string(nil), desc.Permissions...)
	a.Requirements = append([]string(nil), desc.Requirements...)
	a.UpdatedAt = now
	return nil
}

func (a *Application) clone() *Application {
	c := *a
	c.SecretHash = append([]byte(nil), a.SecretHash...)
	c.RedirectURIs = append([]string(nil), a.RedirectURIs...)
	c.Permissions = append([]string(nil), a.Permissions...)
	c.Requirements = append([]string(nil), a.Requirements...)
	return &c
}

// populate copies app into desc. The plaintext secret is never recoverable, so
// ClientSecret is left empty and the stored hash survives a later update.
func populate(desc *Descriptor, app *Application) {
	desc.ClientID = app.ClientID
	desc.ClientSecret = ""
	desc.ClientType = app.ClientType
	desc.DisplayName = app.DisplayName
	desc.RedirectURIs = append([]string(nil), app.RedirectURIs...)
	desc.Permissions = append([]string(nil), app.Permissions...)
	desc.Requirements = append([]string(nil), app.Requirements...)
}

func hasPermission(app *Application, permission string) bool {
	return contains(app.Permissions, permission)
}

func validateSecret(app *Application, secret string) bool {
	if app.ClientType != ClientTypeConfidential || len(app.SecretHash) == 0 || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(app.SecretHash, []byte(secret)) == nil
}
