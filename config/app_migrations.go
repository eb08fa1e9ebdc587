package config

import (
	"context"
	"fmt"

	"github.com/akeren/landing-api/internal/log"
	sqlmigrations "github.com/akeren/landing-api/migrations"
	"github.com/akeren/landing-api/pkg/migrations"
	"github.com/akeren/landing-api/pkg/utils"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded SQL schema, or MIGRATIONS_DIR when set.
func RunMigrations(ctx context.Context, logger *log.Logger, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate: db is empty")
	}

	if db.Dialector.Name() != DriverPostgres {
		return fmt.Errorf("migrations target postgres, not %s; use --auto-migrate for local databases", db.Dialector.Name())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("migrations: get sql db: %w", err)
	}

	cfg := migrations.Config{
		MigrationsTable: utils.GetEnvTrimmedOrDefault("MIGRATIONS_TABLE", migrations.DefaultTable),
		Logger:          logger,
	}
	if dir := utils.GetEnvTrimmed("MIGRATIONS_DIR"); dir != "" {
		cfg.Dir = dir
	} else {
		cfg.FS = sqlmigrations.FS
	}

	return migrations.Up(ctx, sqlDB, cfg)
}
