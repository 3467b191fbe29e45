// Package migrations holds the Postgres schema, applied with bun's migrator.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed *.sql
var sqlFiles embed.FS

var Migrations = migrate.NewMigrations()

func execFile(ctx context.Context, db *bun.DB, name string) error {
	query, err := sqlFiles.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	_, err = db.ExecContext(ctx, string(query))
	return err
}
