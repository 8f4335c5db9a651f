package app

import (
	"context"
	"sync"
	"time"

	"github.com/tendant/idm-portal/pkg/errors"
)

// MemoryStore keeps apps in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	apps   map[int]App
	nextID int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		apps:   make(map[int]App),
		nextID: 1,
	}
}

func (s *MemoryStore) List(ctx context.Context, spec Spec) ([]App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := []App{}
	if spec.matchesNothing() {
		return apps, nil
	}
	for _, a := range s.apps {
		a := a
		if spec.Matches(&a) {
			apps = append(apps, a)
		}
	}
	sortApps(apps)
	return apps, nil
}

func (s *MemoryStore) First(ctx context.Context, spec Spec) (*App, error) {
	apps, err := s.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (s *MemoryStore) Add(ctx context.Context, app *App) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkClientID(app, 0); err != nil {
		return err
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	app.ID = s.nextID
	s.nextID++
	s.apps[app.ID] = *app
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, app *App) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(app)
}

func (s *MemoryStore) UpdateRange(ctx context.Context, apps []*App) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[int]*App, len(apps))
	for _, app := range apps {
		if _, ok := s.apps[app.ID]; !ok {
			return errors.NotFound("app", app.ClientID)
		}
		batch[app.ID] = app
	}
	// client ids are checked against the state after the whole batch applies
	for _, app := range apps {
		if app.ClientID == "" || app.Removed {
			continue
		}
		for id, other := range s.apps {
			if _, ok := batch[id]; !ok && !other.Removed && other.ClientID == app.ClientID {
				return errors.AlreadyExists("app", app.ClientID)
			}
		}
		for id, other := range batch {
			if id != app.ID && !other.Removed && other.ClientID == app.ClientID {
				return errors.AlreadyExists("app", app.ClientID)
			}
		}
	}
	for _, app := range apps {
		s.apps[app.ID] = *app
	}
	return nil
}

func (s *MemoryStore) update(app *App) error {
	if _, ok := s.apps[app.ID]; !ok {
		return errors.NotFound("app", app.ClientID)
	}
	if err := s.checkClientID(app, app.ID); err != nil {
		return err
	}
	s.apps[app.ID] = *app
	return nil
}

// checkClientID mirrors the partial unique index on active client ids.
func (s *MemoryStore) checkClientID(app *App, selfID int) error {
	if app.ClientID == "" || app.Removed {
		return nil
	}
	for id, other := range s.apps {
		if id != selfID && !other.Removed && other.ClientID == app.ClientID {
			return errors.AlreadyExists("app", app.ClientID)
		}
	}
	return nil
}
