package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/pkg/utils"
	"github.com/joho/godotenv"
)

const (
	AppEnvKey = "APP_ENV"
	// EnvFileKey lists the dotenv files to load, comma-separated. Defaults to .env.
	EnvFileKey = "ENV_FILE"
)

var devLikeEnvs = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads dotenv files without overriding variables already set.
func InitializeEnvFile(logger *log.Logger) {
	if os.Getenv("SKIP_DOTENV") == "true" {
		logger.Debug("Skipping dotenv load (SKIP_DOTENV=true)")
		return
	}

	files := envFiles(utils.GetEnvTrimmed(EnvFileKey))
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("No dotenv file loaded", "files", strings.Join(files, ","), "error", err.Error())
		return
	}

	logger.Info("Environment loaded from dotenv", "files", strings.Join(files, ","))
}

func envFiles(raw string) []string {
	var files []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return []string{".env"}
	}
	return files
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func GetAppEnv() string {
	return normalizeAppEnv(os.Getenv(AppEnvKey))
}

func normalizeAppEnv(appEnv string) string {
	return strings.ToLower(strings.TrimSpace(appEnv))
}

func isProductionEnv(appEnv string) bool {
	env := normalizeAppEnv(appEnv)
	return env == "production" || env == "prod"
}

// ValidateAutoMigrateAllowed keeps gorm AutoMigrate out of shared environments; they use versioned SQL migrations.
func ValidateAutoMigrateAllowed(appEnv string) error {
	env := normalizeAppEnv(appEnv)
	if slices.Contains(devLikeEnvs, env) {
		return nil
	}

	return fmt.Errorf("--auto-migrate is not allowed when %s=%q; run `landing migrate` instead", AppEnvKey, env)
}
