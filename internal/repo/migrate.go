package repo

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-planner/migrations"
)

// Migrate applies every pending migration to the database at dsn and returns
// how many were applied. goose drives database/sql, so a short-lived *sql.DB
// is opened for the run.
func Migrate(ctx context.Context, dsn string) (int, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("repo.Migrate: open: %w", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("repo.Migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("repo.Migrate: up: %w", err)
	}
	return len(results), nil
}
