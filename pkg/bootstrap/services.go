package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/idm-portal/pkg/app"
	"github.com/tendant/idm-portal/pkg/config"
	"github.com/tendant/idm-portal/pkg/crypto"
	"github.com/tendant/idm-portal/pkg/registry"
	"github.com/tendant/idm-portal/pkg/role"
	"github.com/tendant/idm-portal/pkg/seed"
	"github.com/tendant/idm-portal/pkg/user"
)

// Services is the wired service graph.
type Services struct {
	Crypto   *crypto.Service
	Registry registry.Registry
	AppStore app.Store
	Apps     *app.Service
	Roles    *role.RoleService
	Users    *user.UserService

	closers []func()
}

// Close releases database pools and connections.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// SeedDeps exposes the services the seed writes through.
func (s *Services) SeedDeps() seed.Deps {
	return seed.Deps{Roles: s.Roles, Users: s.Users, Apps: s.Apps}
}

// Build wires every service. A missing APP_KEY is fatal.
func Build(ctx context.Context, cfg Config) (*Services, error) {
	if err := cfg.Crypto.Validate(); err != nil {
		return nil, err
	}
	cipher, err := crypto.New(cfg.Crypto.AppKey)
	if err != nil {
		return nil, err
	}

	s := &Services{Crypto: cipher}

	s.AppStore, err = s.openStore(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Registry, err = s.openRegistry(ctx, cfg.Registry)
	if err != nil {
		s.Close()
		return nil, err
	}

	roles := role.NewInMemoryRoleRepository()
	s.Roles = role.NewRoleService(roles)
	s.Users = user.NewUserService(user.NewMemoryAccountStore(roles))
	s.Apps = app.NewService(s.AppStore, s.Registry, cipher)
	return s, nil
}

func (s *Services) openStore(ctx context.Context, cfg Config) (app.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory, "":
		slog.Info("Using in-memory app store")
		return app.NewMemoryStore(), nil

	case config.StoreDriverPostgres:
		dbConfig := cfg.Database.ToDbConfig()
		pool, err := dbutils.NewDbPool(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		return openPostgres(ctx, pool)

	case config.StoreDriverSQLite:
		store, err := app.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		slog.Info("Using SQLite app store", "path", cfg.Store.SQLitePath)
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func openPostgres(ctx context.Context, pool *pgxpool.Pool) (app.Store, error) {
	store := app.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare apps schema: %w", err)
	}
	slog.Info("Using PostgreSQL app store")
	return store, nil
}

func (s *Services) openRegistry(ctx context.Context, cfg config.RegistryConfig) (registry.Registry, error) {
	if !cfg.UseRedis() {
		slog.Info("Using in-memory application registry")
		return registry.NewMemoryRegistry(), nil
	}

	reg, err := registry.NewRedisRegistry(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.closers = append(s.closers, func() { _ = reg.Close() })
	slog.Info("Using Redis application registry", "addr", cfg.RedisAddr)
	return reg, nil
}
