package database

import (
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrationSource() *migrate.EmbedFileSystemMigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// RunMigrations applies all pending up migrations through a database/sql view of the pool.
func RunMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	n, err := migrate.Exec(db, "postgres", migrationSource(), migrate.Up)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if n > 0 {
		slog.Info("applied migrations", "count", n)
	}
	return nil
}
