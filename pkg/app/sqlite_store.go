package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	idmerrors "github.com/tendant/idm-portal/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore keeps apps in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database exists once per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS apps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			roles TEXT NOT NULL DEFAULT '',
			client_id TEXT NOT NULL DEFAULT '',
			encrypt TEXT NOT NULL DEFAULT '',
			ps TEXT NOT NULL DEFAULT '',
			removed INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			created_by TEXT NOT NULL DEFAULT '',
			last_updated TEXT,
			updated_by TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS apps_active_client_id_idx
			ON apps (client_id) WHERE removed = 0 AND client_id <> ''`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, spec Spec) ([]App, error) {
	apps := []App{}
	if spec.matchesNothing() {
		return apps, nil
	}

	where, args := buildWhere(spec, questionPlaceholder, func(ids []int, next func(any) string) string {
		marks := make([]string, len(ids))
		for i, id := range ids {
			marks[i] = next(id)
		}
		return "id IN (" + strings.Join(marks, ", ") + ")"
	})
	query := "SELECT " + appColumns + " FROM apps" + where + " ORDER BY sort_order, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a           App
			typ         string
			createdAt   string
			lastUpdated sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.URL, &a.Icon, &typ, &a.Roles, &a.ClientID, &a.Encrypt, &a.Ps,
			&a.Removed, &a.Order, &createdAt, &a.CreatedBy, &lastUpdated, &a.UpdatedBy); err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		a.Type = Type(typ)
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of app %d: %w", a.ID, err)
		}
		if lastUpdated.Valid {
			t, err := time.Parse(time.RFC3339Nano, lastUpdated.String)
			if err != nil {
				return nil, fmt.Errorf("parse last_updated of app %d: %w", a.ID, err)
			}
			a.LastUpdated = &t
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *SQLiteStore) First(ctx context.Context, spec Spec) (*App, error) {
	apps, err := s.List(ctx, spec)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (s *SQLiteStore) Add(ctx context.Context, app *App) error {
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO apps (name, url, icon, type, roles, client_id, encrypt, ps, removed, sort_order, created_at, created_by, last_updated, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.Name, app.URL, app.Icon, string(app.Type), app.Roles, app.ClientID, app.Encrypt, app.Ps,
		app.Removed, app.Order, formatTime(app.CreatedAt), app.CreatedBy, formatTimePtr(app.LastUpdated), app.UpdatedBy,
	)
	if err != nil {
		return mapSQLiteError(err, app)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read app id: %w", err)
	}
	app.ID = int(id)
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, app *App) error {
	return updateSQLite(ctx, s.db, app)
}

func (s *SQLiteStore) UpdateRange(ctx context.Context, apps []*App) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, app := range apps {
		if err := updateSQLite(ctx, tx, app); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateSQLite(ctx context.Context, db sqlExecer, app *App) error {
	res, err := db.ExecContext(ctx, `
		UPDATE apps SET name = ?, url = ?, icon = ?, type = ?, roles = ?, client_id = ?, encrypt = ?, ps = ?,
			removed = ?, sort_order = ?, last_updated = ?, updated_by = ?
		WHERE id = ?`,
		app.Name, app.URL, app.Icon, string(app.Type), app.Roles, app.ClientID, app.Encrypt, app.Ps,
		app.Removed, app.Order, formatTimePtr(app.LastUpdated), app.UpdatedBy, app.ID,
	)
	if err != nil {
		return mapSQLiteError(err, app)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update app: %w", err)
	}
	if n == 0 {
		return idmerrors.NotFound("app", app.ClientID)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func mapSQLiteError(err error, app *App) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return idmerrors.AlreadyExists("app", app.ClientID)
	}
	return fmt.Errorf("save app %q: %w", app.ClientID, err)
}
