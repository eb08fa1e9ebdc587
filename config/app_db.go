package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	// DriverSQLite is for local development only; versioned migrations target postgres.
	DriverSQLite = "sqlite"
)

type DBConfig struct {
	Driver          string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// withDefaults fills zero fields from DB_* env vars, then fixed defaults.
func (cfg DBConfig) withDefaults() DBConfig {
	if cfg.Driver == "" {
		cfg.Driver = strings.ToLower(utils.GetEnvTrimmedOrDefault("DB_DRIVER", DriverPostgres))
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = utils.GetEnvPositiveInt("DB_MAX_OPEN_CONNS", 25)
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = utils.GetEnvPositiveInt("DB_MAX_IDLE_CONNS", 5)
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = utils.GetEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "require"
	}
	return cfg
}

func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &DBConfig{}
	}
	resolved := cfg.withDefaults()

	dialector, err := openDialector(logger, resolved)
	if err != nil {
		return nil, err
	}

	// TranslateError maps unique violations to gorm.ErrDuplicatedKey for both drivers.
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel()),
	})
	if err != nil {
		logger.Error("Failed to connect to database", "driver", resolved.Driver, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(resolved.MaxIdleConns)
	sqlDB.SetMaxOpenConns(resolved.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(resolved.ConnMaxLifetime)
	if resolved.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		logger.Error("Database ping failed", "error", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established", "driver", resolved.Driver)
	return gdb, nil
}

func openDialector(logger *log.Logger, cfg DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		path := utils.GetEnvTrimmedOrDefault("SQLITE_PATH", "landing.db")
		logger.Warn("Using SQLite database; not for production", "path", path)
		return sqlite.Open(path + "?_busy_timeout=5000&_foreign_keys=on"), nil
	case DriverPostgres:
		dsn, err := postgresDSN(logger, cfg)
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use %s or %s)", cfg.Driver, DriverPostgres, DriverSQLite)
	}
}

func postgresDSN(logger *log.Logger, cfg DBConfig) (string, error) {
	if appDatabaseURL := sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", "")); appDatabaseURL != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return appDatabaseURL, nil
	}

	params := map[string]string{}
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB_NAME", "POSTGRES_SSLMODE"} {
		params[key] = sanitizeEnv(GetValueFromEnvironmentVariable(key, ""))
	}
	if params["POSTGRES_PORT"] == "" {
		params["POSTGRES_PORT"] = "5432"
	}
	if params["POSTGRES_SSLMODE"] == "" {
		params["POSTGRES_SSLMODE"] = cfg.SSLMode
	}

	var missing []string
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_DB_NAME"} {
		if params[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		logger.Error("Missing required database environment variables", "missing_vars", strings.Join(missing, ", "))
		return "", fmt.Errorf("missing required database env vars: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(params["POSTGRES_PORT"])
	if err != nil {
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", params["POSTGRES_PORT"], err)
	}

	logger.Info("Connecting to database",
		"host", params["POSTGRES_HOST"],
		"port", port,
		"user", params["POSTGRES_USER"],
		"dbname", params["POSTGRES_DB_NAME"],
		"sslmode", params["POSTGRES_SSLMODE"],
	)

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		params["POSTGRES_HOST"], port, params["POSTGRES_USER"], params["POSTGRES_PASSWORD"],
		params["POSTGRES_DB_NAME"], params["POSTGRES_SSLMODE"],
	), nil
}

// gormLogLevel follows LOG_LEVEL; SQL is only logged at debug.
func gormLogLevel() gormlogger.LogLevel {
	switch strings.ToLower(utils.GetEnvTrimmed("LOG_LEVEL")) {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// sanitizeEnv strips one pair of matching quotes left by some dotenv writers.
func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("cannot migrate: db is empty")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database auto-migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database auto-migration completed", "models", len(models))
	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
		return
	}
	logger.Info("Database closed")
}
