// Package database хранит схему базы сервиса.
package database

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"

	"deck-server/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет встроенные миграции.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return migration.NewMigrator(migration.Config{FS: migrationsFS, Path: "migrations"}, pool).Up(ctx)
}
