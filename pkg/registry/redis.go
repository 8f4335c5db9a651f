package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	idmerrors "github.com/tendant/idm-portal/pkg/errors"
)

// RedisRegistry stores applications in Redis so several portal instances
// share one view of the registered clients.
//
// Layout under the key prefix:
//
//	app:<id>           JSON encoded Application
//	client:<client id> id of the owning application
//	apps               set of all application ids
type RedisRegistry struct {
	client    redis.UniversalClient
	keyPrefix string
	settings  settings
}

// NewRedisRegistry connects to addr and verifies the connection.
func NewRedisRegistry(ctx context.Context, addr, password string, db int, keyPrefix string, opts ...Option) (*RedisRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisRegistryWithClient(client, keyPrefix, opts...), nil
}

// NewRedisRegistryWithClient wraps a pre-configured client.
func NewRedisRegistryWithClient(client redis.UniversalClient, keyPrefix string, opts ...Option) *RedisRegistry {
	return &RedisRegistry{
		client:    client,
		keyPrefix: keyPrefix,
		settings:  newSettings(opts),
	}
}

// Close closes the Redis client connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

// Ping checks Redis connectivity.
func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRegistry) appKey(id string) string {
	return r.keyPrefix + "app:" + id
}

func (r *RedisRegistry) clientKey(clientID string) string {
	return r.keyPrefix + "client:" + clientID
}

func (r *RedisRegistry) setKey() string {
	return r.keyPrefix + "apps"
}

func (r *RedisRegistry) FindByClientID(ctx context.Context, clientID string) (*Application, error) {
	id, err := r.client.Get(ctx, r.clientKey(clientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get client index: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *RedisRegistry) FindByID(ctx context.Context, id string) (*Application, error) {
	data, err := r.client.Get(ctx, r.appKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	var app Application
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, fmt.Errorf("failed to unmarshal application: %w", err)
	}
	return &app, nil
}

func (r *RedisRegistry) Create(ctx context.Context, desc Descriptor) (*Application, error) {
	app, err := newApplication(desc, r.settings.hashCost)
	if err != nil {
		return nil, err
	}

	// The client index is claimed first so two creators of the same client id
	// cannot both succeed.
	claimed, err := r.client.SetNX(ctx, r.clientKey(app.ClientID), app.ID, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim client id: %w", err)
	}
	if !claimed {
		return nil, idmerrors.AlreadyExists("application", app.ClientID)
	}

	if err := r.save(ctx, app); err != nil {
		r.client.Del(context.WithoutCancel(ctx), r.clientKey(app.ClientID))
		return nil, err
	}
	return app, nil
}

func (r *RedisRegistry) Update(ctx context.Context, app *Application, desc Descriptor) error {
	stored, err := r.FindByID(ctx, app.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return idmerrors.ApplicationNotExist(app.ClientID)
	}

	updated := stored.clone()
	if err := updated.apply(desc, r.settings.hashCost, time.Now().UTC()); err != nil {
		return err
	}

	if updated.ClientID != stored.ClientID {
		claimed, err := r.client.SetNX(ctx, r.clientKey(updated.ClientID), updated.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("failed to claim client id: %w", err)
		}
		if !claimed {
			return idmerrors.AlreadyExists("application", updated.ClientID)
		}
		if err := r.client.Del(ctx, r.clientKey(stored.ClientID)).Err(); err != nil {
			return fmt.Errorf("failed to release client id: %w", err)
		}
	}

	if err := r.save(ctx, updated); err != nil {
		return err
	}
	*app = *updated
	return nil
}

func (r *RedisRegistry) Delete(ctx context.Context, app *Application) error {
	stored, err := r.FindByID(ctx, app.ID)
	if err != nil {
		return err
	}
	if stored == nil {
		return idmerrors.ApplicationNotExist(app.ClientID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.appKey(stored.ID))
		pipe.Del(ctx, r.clientKey(stored.ClientID))
		pipe.SRem(ctx, r.setKey(), stored.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Populate(ctx context.Context, desc *Descriptor, app *Application) error {
	populate(desc, app)
	return nil
}

func (r *RedisRegistry) HasPermission(ctx context.Context, app *Application, permission string) (bool, error) {
	return hasPermission(app, permission), nil
}

func (r *RedisRegistry) ValidateClientSecret(ctx context.Context, app *Application, secret string) (bool, error) {
	return validateSecret(app, secret), nil
}

func (r *RedisRegistry) List(ctx context.Context) ([]Application, error) {
	ids, err := r.client.SMembers(ctx, r.setKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	apps := make([]Application, 0, len(ids))
	for _, id := range ids {
		app, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if app != nil {
			apps = append(apps, *app)
		}
	}
	sortApplications(apps)
	return apps, nil
}

func (r *RedisRegistry) save(ctx context.Context, app *Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("failed to marshal application: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.appKey(app.ID), data, 0)
		pipe.SAdd(ctx, r.setKey(), app.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	return nil
}
