package repositories

import (
	"context"
	"io/fs"
	"sort"
	"strings"

	"reel/internal/pkg/errors"
	"reel/internal/repositories/migrations"
)

type migration struct {
	version string
	name    string
	sql     string
}

// Migrate applies the embedded migrations that schema_migrations does not
// list yet, each in its own transaction.
func Migrate(ctx context.Context, db DB) error {
	const op = "repositories.migrate"

	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return errors.Wrap(err, op, "create schema_migrations")
	}

	applied := map[string]bool{}
	rows, err := db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return errors.Wrap(err, op, "read schema_migrations")
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return errors.Wrap(err, op, "scan schema_migrations")
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, op, "read schema_migrations")
	}

	pending, err := loadMigrations(migrations.Files)
	if err != nil {
		return errors.Wrap(err, op, "load migrations")
	}
	for _, m := range pending {
		if applied[m.version] {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return errors.Wrapf(err, op, "apply %s", m.name)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db DB, m migration) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// No arguments: pgx uses the simple protocol, which accepts several
	// statements in one call.
	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}

	var out []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		raw, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			continue
		}
		out = append(out, migration{
			version: migrationVersion(e.Name()),
			name:    e.Name(),
			sql:     body,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// migrationVersion is the file name up to the first underscore.
func migrationVersion(name string) string {
	name = strings.TrimSuffix(name, ".sql")
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	return name
}
