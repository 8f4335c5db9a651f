package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/idm-portal/pkg/errors"
	"github.com/tendant/idm-portal/pkg/registry"
)

// Cipher protects client secrets at rest.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Service keeps App records and registry entries in step.
//
// Store and registry calls run on a context detached from the caller's
// cancellation, so a dropped request cannot stop an operation halfway.
type Service struct {
	store     Store
	registry  registry.Registry
	cipher    Cipher
	now       func() time.Time
	newSecret func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source used for audit stamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithSecretGenerator overrides how client secrets are minted.
func WithSecretGenerator(gen func() string) ServiceOption {
	return func(s *Service) {
		s.newSecret = gen
	}
}

func NewService(store Store, reg registry.Registry, cipher Cipher, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		registry:  reg,
		cipher:    cipher,
		now:       func() time.Time { return time.Now().UTC() },
		newSecret: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch lists active apps of type t, or of every type when t is empty.
func (s *Service) Fetch(ctx context.Context, t Type) ([]App, error) {
	return s.store.List(context.WithoutCancel(ctx), ByType(t))
}

func (s *Service) FetchByIDs(ctx context.Context, ids []int) ([]App, error) {
	return s.store.List(context.WithoutCancel(ctx), ByIDs(ids))
}

// FindByClientID returns nil, nil when no active app holds clientID.
func (s *Service) FindByClientID(ctx context.Context, clientID string) (*App, error) {
	return s.store.First(context.WithoutCancel(ctx), ByClientID(clientID))
}

// GetByID returns nil, nil when no active app has id.
func (s *Service) GetByID(ctx context.Context, id int) (*App, error) {
	return s.store.First(context.WithoutCancel(ctx), ByID(id))
}

// GetPermissionApis filters candidates down to the APIs app may request scopes
// for. With no candidates every active API is considered.
func (s *Service) GetPermissionApis(ctx context.Context, app *App, candidates []App) ([]App, error) {
	ctx = context.WithoutCancel(ctx)

	entry, err := s.requireRegistration(ctx, app)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		candidates, err = s.store.List(ctx, ByType(TypeApi))
		if err != nil {
			return nil, err
		}
	}

	apis := []App{}
	for _, api := range candidates {
		ok, err := s.registry.HasPermission(ctx, entry, registry.ScopePermission(api.ClientID))
		if err != nil {
			return nil, err
		}
		if ok {
			apis = append(apis, api)
		}
	}
	return apis, nil
}

// CreateSpa stores app as a public client allowed to request scopes for apis.
func (s *Service) CreateSpa(ctx context.Context, app *App, apis []App) error {
	ctx = context.WithoutCancel(ctx)

	app.Type = TypeSpa
	app.Encrypt = ""
	if err := s.add(ctx, app); err != nil {
		return err
	}

	desc := BuildDescriptor(app, apis)
	if _, err := s.registry.Create(ctx, desc); err != nil {
		return s.diverged(app, "create", err)
	}
	slog.Info("spa app created", "client_id", app.ClientID, "id", app.ID, "apis", len(apis))
	return nil
}

// CreateApi stores app as a confidential client with a freshly minted secret.
func (s *Service) CreateApi(ctx context.Context, app *App) error {
	ctx = context.WithoutCancel(ctx)

	secret := s.newSecret()
	encrypted, err := s.cipher.Encrypt(secret)
	if err != nil {
		return err
	}
	app.Type = TypeApi
	app.Encrypt = encrypted
	app.Roles = ""
	if err := s.add(ctx, app); err != nil {
		return err
	}

	desc := BuildDescriptor(app, nil)
	desc.ClientSecret = secret
	if _, err := s.registry.Create(ctx, desc); err != nil {
		return s.diverged(app, "create", err)
	}
	slog.Info("api app created", "client_id", app.ClientID, "id", app.ID)
	return nil
}

// UpdateSpa saves app and rewrites its registration. apis replaces the
// previous scope set.
func (s *Service) UpdateSpa(ctx context.Context, app *App, apis []App) error {
	ctx = context.WithoutCancel(ctx)

	entry, err := s.requireRegistration(ctx, app)
	if err != nil {
		return err
	}
	if err := requireType(app, entry, TypeSpa); err != nil {
		return err
	}

	app.Type = TypeSpa
	app.Encrypt = ""
	if err := s.update(ctx, app); err != nil {
		return err
	}

	desc, err := s.describe(ctx, entry, app, apis)
	if err != nil {
		return s.diverged(app, "update", err)
	}
	if err := s.registry.Update(ctx, entry, desc); err != nil {
		return s.diverged(app, "update", err)
	}
	slog.Info("spa app updated", "client_id", app.ClientID, "id", app.ID)
	return nil
}

// UpdateApi saves app and rewrites its registration. A missing secret is
// minted and stored; an existing one is carried over.
func (s *Service) UpdateApi(ctx context.Context, app *App) error {
	return s.saveApi(ctx, app, false)
}

// ResetClientSecret discards the current secret and issues a new one.
func (s *Service) ResetClientSecret(ctx context.Context, app *App) error {
	return s.saveApi(ctx, app, true)
}

func (s *Service) saveApi(ctx context.Context, app *App, reset bool) error {
	ctx = context.WithoutCancel(ctx)

	entry, err := s.requireRegistration(ctx, app)
	if err != nil {
		return err
	}
	if err := requireType(app, entry, TypeApi); err != nil {
		return err
	}
	if reset {
		app.Encrypt = ""
	}

	var secret string
	if app.Encrypt == "" {
		secret = s.newSecret()
		encrypted, err := s.cipher.Encrypt(secret)
		if err != nil {
			return err
		}
		app.Encrypt = encrypted
	} else {
		secret, err = s.GetDecryptClientSecret(app)
		if err != nil {
			return err
		}
	}

	app.Type = TypeApi
	app.Roles = ""
	if err := s.update(ctx, app); err != nil {
		return err
	}

	desc, err := s.describe(ctx, entry, app, nil)
	if err != nil {
		return s.diverged(app, "update", err)
	}
	desc.ClientSecret = secret
	if err := s.registry.Update(ctx, entry, desc); err != nil {
		return s.diverged(app, "update", err)
	}
	slog.Info("api app updated", "client_id", app.ClientID, "id", app.ID, "secret_reset", reset)
	return nil
}

// Remove soft deletes app and drops its registration.
func (s *Service) Remove(ctx context.Context, app *App, actorID string) error {
	ctx = context.WithoutCancel(ctx)

	entry, err := s.requireRegistration(ctx, app)
	if err != nil {
		return err
	}

	app.Removed = true
	app.SetUpdated(actorID, s.now())
	if err := s.store.Update(ctx, app); err != nil {
		return err
	}

	if err := s.registry.Delete(ctx, entry); err != nil {
		return s.diverged(app, "delete", err)
	}
	slog.Info("app removed", "client_id", app.ClientID, "id", app.ID, "actor", actorID)
	return nil
}

// GetDecryptClientSecret returns the plaintext secret, or "" when none was issued.
func (s *Service) GetDecryptClientSecret(app *App) (string, error) {
	if app.Encrypt == "" {
		return "", nil
	}
	return s.cipher.Decrypt(app.Encrypt)
}

// ValidateClientSecret checks the stored secret against the registry's hash.
func (s *Service) ValidateClientSecret(ctx context.Context, app *App) (bool, error) {
	ctx = context.WithoutCancel(ctx)

	entry, err := s.requireRegistration(ctx, app)
	if err != nil {
		return false, err
	}
	secret, err := s.GetDecryptClientSecret(app)
	if err != nil {
		return false, err
	}
	return s.registry.ValidateClientSecret(ctx, entry, secret)
}

// ValidateClientID reports errors.ErrCodeDuplicateClientID when an app other
// than selfID, or a registration it does not own, already uses clientID.
// selfID is 0 for new apps.
//
// This is a pre-check for friendlier errors; concurrent writers are stopped by
// the store and registry uniqueness constraints.
func (s *Service) ValidateClientID(ctx context.Context, clientID string, selfID int) error {
	ctx = context.WithoutCancel(ctx)

	holder, err := s.store.First(ctx, ByClientID(clientID))
	if err != nil {
		return err
	}
	if holder != nil && holder.ID != selfID {
		return errors.DuplicateClientID(clientID)
	}

	entry, err := s.registry.FindByClientID(ctx, clientID)
	if err != nil {
		return err
	}
	if entry != nil && holder == nil {
		return errors.DuplicateClientID(clientID)
	}
	return nil
}

func (s *Service) requireRegistration(ctx context.Context, app *App) (*registry.Application, error) {
	entry, err := s.registry.FindByClientID(ctx, app.ClientID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.ApplicationNotExist(app.ClientID)
	}
	return entry, nil
}

// requireType rejects updates that would move an app to another client type.
// The registration's client type is authoritative; an unset app.Type is taken
// from it.
func requireType(app *App, entry *registry.Application, want Type) error {
	registered, _ := TypeFromClientType(entry.ClientType)
	if registered != want || (app.Type != "" && app.Type != want) {
		return errors.InvalidInput("type", fmt.Sprintf("%s is registered as %s and cannot be saved as %s", app.ClientID, entry.ClientType, want))
	}
	return nil
}

func (s *Service) describe(ctx context.Context, entry *registry.Application, app *App, apis []App) (registry.Descriptor, error) {
	var desc registry.Descriptor
	if err := s.registry.Populate(ctx, &desc, entry); err != nil {
		return desc, err
	}
	ApplyDescriptor(&desc, app, apis)
	return desc, nil
}

// add persists a new app after making sure the registry has no entry under
// its client id.
func (s *Service) add(ctx context.Context, app *App) error {
	entry, err := s.registry.FindByClientID(ctx, app.ClientID)
	if err != nil {
		return err
	}
	if entry != nil {
		return errors.DuplicateClientID(app.ClientID)
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = s.now()
	}
	if err := s.store.Add(ctx, app); err != nil {
		if errors.IsCode(err, errors.ErrCodeAlreadyExists) {
			return errors.DuplicateClientID(app.ClientID)
		}
		return err
	}
	return nil
}

func (s *Service) update(ctx context.Context, app *App) error {
	if err := s.store.Update(ctx, app); err != nil {
		if errors.IsCode(err, errors.ErrCodeAlreadyExists) {
			return errors.DuplicateClientID(app.ClientID)
		}
		return err
	}
	return nil
}

func (s *Service) diverged(app *App, step string, err error) error {
	slog.Error("store and registry diverged", "client_id", app.ClientID, "id", app.ID, "step", step, "error", err)
	return errors.PartialFailure(err, app.ClientID, step)
}
