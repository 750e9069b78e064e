package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mantavyam/jacob-web/migrations"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.SetBaseFS(migrations.FS)
}

// Migrate applies every pending embedded migration to sqlDB.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MigratePool runs Migrate over a database/sql handle borrowed from the pool's
// connection config.
func (db *DB) MigratePool(ctx context.Context) error {
	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := Migrate(ctx, sqlDB); err != nil {
		return err
	}
	db.logger.Info("database migrations applied")
	return nil
}
