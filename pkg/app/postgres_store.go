package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	idmerrors "github.com/tendant/idm-portal/pkg/errors"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS apps (
	id           SERIAL PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	icon         TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL,
	roles        TEXT NOT NULL DEFAULT '',
	client_id    TEXT NOT NULL DEFAULT '',
	encrypt      TEXT NOT NULL DEFAULT '',
	ps           TEXT NOT NULL DEFAULT '',
	removed      BOOLEAN NOT NULL DEFAULT false,
	sort_order   INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by   TEXT NOT NULL DEFAULT '',
	last_updated TIMESTAMPTZ,
	updated_by   TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS apps_active_client_id_idx
	ON apps (client_id) WHERE removed = false AND client_id <> '';
`

// PostgresStore keeps apps in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the apps table and its indexes if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create apps schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, spec Spec) ([]App, error) {
	apps := []App{}
	if spec.matchesNothing() {
		return apps, nil
	}

	where, args := buildWhere(spec, dollarPlaceholder, func(ids []int, next func(any) string) string {
		ids32 := make([]int32, len(ids))
		for i, id := range ids {
			ids32[i] = int32(id)
		}
		return "id = ANY(" + next(ids32) + ")"
	})
	query := "SELECT " + appColumns + " FROM apps" + where + " ORDER BY sort_order, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a App
		if err := rows.Scan(&a.ID, &a.Name, &a.URL, &a.Icon, &a.Type, &a.Roles, &a.ClientID, &a.Encrypt, &a.Ps,
			&a.Removed, &a.Order, &a.CreatedAt, &a.CreatedBy, &a.LastUpdated, &a.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

func (s *PostgresStore) First(ctx context.Context, spec Spec) (*App, error) {
	apps, err := s.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (s *PostgresStore) Add(ctx context.Context, app *App) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO apps (name, url, icon, type, roles, client_id, encrypt, ps, removed, sort_order, created_at, created_by, last_updated, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()), $12, $13, $14)
		RETURNING id, created_at`,
		app.Name, app.URL, app.Icon, string(app.Type), app.Roles, app.ClientID, app.Encrypt, app.Ps,
		app.Removed, app.Order, nullTime(app), app.CreatedBy, app.LastUpdated, app.UpdatedBy,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return mapPgError(err, app)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, app *App) error {
	return updatePg(ctx, s.pool, app)
}

// UpdateRange saves every app in one transaction.
func (s *PostgresStore) UpdateRange(ctx context.Context, apps []*App) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, app := range apps {
		if err := updatePg(ctx, tx, app); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit apps: %w", err)
	}
	return nil
}

type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var (
	_ pgExecer = (*pgxpool.Pool)(nil)
	_ pgExecer = (pgx.Tx)(nil)
)

func updatePg(ctx context.Context, db pgExecer, app *App) error {
	tag, err := db.Exec(ctx, `
		UPDATE apps SET name = $2, url = $3, icon = $4, type = $5, roles = $6, client_id = $7, encrypt = $8, ps = $9,
			removed = $10, sort_order = $11, last_updated = $12, updated_by = $13
		WHERE id = $1`,
		app.ID, app.Name, app.URL, app.Icon, string(app.Type), app.Roles, app.ClientID, app.Encrypt, app.Ps,
		app.Removed, app.Order, app.LastUpdated, app.UpdatedBy,
	)
	if err != nil {
		return mapPgError(err, app)
	}
	if tag.RowsAffected() == 0 {
		return idmerrors.NotFound("app", app.ClientID)
	}
	return nil
}

func nullTime(app *App) any {
	if app.CreatedAt.IsZero() {
		return nil
	}
	return app.CreatedAt
}

func mapPgError(err error, app *App) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return idmerrors.AlreadyExists("app", app.ClientID)
	}
	return fmt.Errorf("failed to save app %q: %w", app.ClientID, err)
}
