package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBConfig_WithDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("DB_MAX_IDLE_CONNS", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "")

	cfg := DBConfig{MaxIdleConns: 2}.withDefaults()

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, 40, cfg.MaxOpenConns)
	assert.Equal(t, 2, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, "require", cfg.SSLMode)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(log.NewDiscardLogger(), &DBConfig{Driver: "mysql"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestNewDatabase_PostgresNeedsHost(t *testing.T) {
	t.Setenv("APP_DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_USER", "landing")
	t.Setenv("POSTGRES_DB_NAME", "landing")

	_, err := NewDatabase(log.NewDiscardLogger(), &DBConfig{Driver: DriverPostgres})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_HOST")
}

func TestNewDatabase_SQLiteForLocalDevelopment(t *testing.T) {
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "landing.db"))
	logger := log.NewDiscardLogger()

	db, err := NewDatabase(logger, &DBConfig{Driver: DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { CloseDatabase(db, logger) })

	require.NoError(t, AutoMigrate(logger, db, models.ModelRegistry...))
	assert.True(t, db.Migrator().HasTable(&models.WaitlistEntry{}))

	err = RunMigrations(context.Background(), logger, db)
	assert.ErrorContains(t, err, "migrations target postgres")
}

func TestSanitizeEnv(t *testing.T) {
	assert.Equal(t, "secret", sanitizeEnv(` "secret" `))
	assert.Equal(t, "secret", sanitizeEnv(`'secret'`))
	assert.Equal(t, `"half`, sanitizeEnv(`"half`))
}

func TestEnvFiles(t *testing.T) {
	assert.Equal(t, []string{".env"}, envFiles(""))
	assert.Equal(t, []string{".env.local", ".env"}, envFiles(" .env.local, ,.env "))
}
