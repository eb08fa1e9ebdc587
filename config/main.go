package config

import (
	"context"
	"time"

	"github.com/akeren/landing-api/config/router"
	"github.com/akeren/landing-api/internal/log"
	"github.com/akeren/landing-api/internal/mailer"
	"github.com/akeren/landing-api/internal/models"
	"github.com/akeren/landing-api/pkg/constants"
	"github.com/akeren/landing-api/pkg/utils"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Mailer          mailer.Sender
	MailerConfig    *mailer.Config
	Auth            *AuthConfig
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration

	// JoinRateLimitRequests is the per-IP budget for the public waitlist join.
	JoinRateLimitRequests int
	JoinRateLimitWindow   time.Duration
	WaitlistCountCacheTTL time.Duration
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests:     utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:       utils.GetEnvDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:        utils.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		JoinRateLimitRequests: utils.GetEnvPositiveInt("WAITLIST_JOIN_RATE_LIMIT", 10),
		JoinRateLimitWindow:   utils.GetEnvDuration("WAITLIST_JOIN_RATE_WINDOW", time.Minute),
		WaitlistCountCacheTTL: utils.GetEnvDuration("WAITLIST_COUNT_CACHE_TTL", 30*time.Second),
	}
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	dbCfg := &DBConfig{}
	db, err := NewDatabase(logger, dbCfg)
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			return nil, err
		}
	}

	appConfig := NewAppConfig()
	cache := NewCacheConfig().NewCacheOrNil(logger)
	mailerConfig := NewMailerConfig()

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		DB:              db,
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Mailer:          NewMailer(logger, mailerConfig),
		MailerConfig:    mailerConfig,
		Auth:            NewAuthConfig(logger),
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
