package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendant/idm-portal/pkg/errors"
)

// MemoryRegistry keeps applications in process memory.
type MemoryRegistry struct {
	mu         sync.RWMutex
	apps       map[string]*Application // id -> application
	byClientID map[string]string       // client id -> id
	settings   settings
}

// NewMemoryRegistry creates an empty in-memory registry
func NewMemoryRegistry(opts ...Option) *MemoryRegistry {
	return &MemoryRegistry{
		apps:       make(map[string]*Application),
		byClientID: make(map[string]string),
		settings:   newSettings(opts),
	}
}

func (r *MemoryRegistry) FindByClientID(ctx context.Context, clientID string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byClientID[clientID]
	if !ok {
		return nil, nil
	}
	return r.apps[id].clone(), nil
}

func (r *MemoryRegistry) FindByID(ctx context.Context, id string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.apps[id]
	if !ok {
		return nil, nil
	}
	return app.clone(), nil
}

func (r *MemoryRegistry) Create(ctx context.Context, desc Descriptor) (*Application, error) {
	app, err := newApplication(desc, r.settings.hashCost)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byClientID[app.ClientID]; exists {
		return nil, errors.AlreadyExists("application", app.ClientID)
	}
	r.apps[app.ID] = app
	r.byClientID[app.ClientID] = app.ID
	return app.clone(), nil
}

func (r *MemoryRegistry) Update(ctx context.Context, app *Application, desc Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.apps[app.ID]
	if !ok {
		return errors.ApplicationNotExist(app.ClientID)
	}
	if desc.ClientID != stored.ClientID {
		if _, taken := r.byClientID[desc.ClientID]; taken {
			return errors.AlreadyExists("application", desc.ClientID)
		}
	}

	updated := stored.clone()
	if err := updated.apply(desc, r.settings.hashCost, time.Now().UTC()); err != nil {
		return err
	}

	delete(r.byClientID, stored.ClientID)
	r.byClientID[updated.ClientID] = updated.ID
	r.apps[updated.ID] = updated
	*app = *updated.clone()
	return nil
}

func (r *MemoryRegistry) Delete(ctx context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.apps[app.ID]
	if !ok {
		return errors.ApplicationNotExist(app.ClientID)
	}
	delete(r.byClientID, stored.ClientID)
	delete(r.apps, stored.ID)
	return nil
}

func (r *MemoryRegistry) Populate(ctx context.Context, desc *Descriptor, app *Application) error {
	populate(desc, app)
	return nil
}

func (r *MemoryRegistry) HasPermission(ctx context.Context, app *Application, permission string) (bool, error) {
	return hasPermission(app, permission), nil
}

func (r *MemoryRegistry) ValidateClientSecret(ctx context.Context, app *Application, secret string) (bool, error) {
	return validateSecret(app, secret), nil
}

func (r *MemoryRegistry) List(ctx context.Context) ([]Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apps := make([]Application, 0, len(r.apps))
	for _, app := range r.apps {
		apps = append(apps, *app.clone())
	}
	sortApplications(apps)
	return apps, nil
}

func sortApplications(apps []Application) {
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].CreatedAt.Before(apps[j].CreatedAt)
		}
		return apps[i].ClientID < apps[j].ClientID
	})
}
