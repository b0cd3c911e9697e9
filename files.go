package marketplace

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// CreateSchema applies the embedded up migrations for the database dialect.
// Statements are idempotent so it is safe to run on every start.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	dir, err := migrationsDir(db.Dialect().Name())
	if err != nil {
		return err
	}

	files, err := fs.Glob(migrationsFS, path.Join(dir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		raw, err := migrationsFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		for _, stmt := range splitStatements(string(raw)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", path.Base(file), err)
			}
		}
	}

	return nil
}

func migrationsDir(name dialect.Name) (string, error) {
	switch name {
	case dialect.PG:
		return "data/sql/migrations/postgres", nil
	case dialect.SQLite:
		return "data/sql/migrations/sqlite", nil
	default:
		return "", fmt.Errorf("no migrations for dialect %s", name)
	}
}

func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
