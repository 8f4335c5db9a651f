package oidc

import (
	"context"
	"log/slog"

	"github.com/ory/fosite"
	"github.com/ory/fosite/storage"
	"github.com/tendant/idm-portal/pkg/registry"
)

// ClientStore keeps codes, tokens and sessions in memory and reads clients
// from the application registry on every lookup, so registry changes apply
// immediately.
type ClientStore struct {
	*storage.MemoryStore
	registry registry.Registry
}

func NewClientStore(reg registry.Registry) *ClientStore {
	return &ClientStore{
		MemoryStore: storage.NewMemoryStore(),
		registry:    reg,
	}
}

func (s *ClientStore) GetClient(ctx context.Context, id string) (fosite.Client, error) {
	app, err := s.registry.FindByClientID(ctx, id)
	if err != nil {
		slog.Error("failed to load client", "client_id", id, "err", err)
		return nil, fosite.ErrServerError.WithWrap(err).WithDebug(err.Error())
	}
	if app == nil {
		return nil, fosite.ErrNotFound
	}
	return registry.FositeClient(app), nil
}
