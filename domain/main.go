package domain

import (
	"time"

	"github.com/akeren/landing-api/config"
	"github.com/akeren/landing-api/domain/articles"
	"github.com/akeren/landing-api/domain/auth"
	"github.com/akeren/landing-api/domain/monitoring"
	"github.com/akeren/landing-api/domain/waitlist"
	"github.com/akeren/landing-api/internal/mailer"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	rs := appConfig.RouterService

	monitoringFactory := monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, appConfig.Cache, appConfig.Mailer)
	rs.MountController(monitoringFactory.CreateController())

	authConfig := appConfig.Auth
	if authConfig == nil {
		authConfig = &config.AuthConfig{}
	}
	cookieName := authConfig.CookieName
	if cookieName == "" {
		cookieName = config.AuthCookieName
	}

	authService := auth.NewAuthService(appConfig.Logger, authConfig)
	adminGuard := auth.RequireAdmin(authService, cookieName)
	rs.MountController(auth.NewAuthController(authService, authConfig))

	waitlistFactory := waitlist.NewWaitlistServiceFactory(
		appConfig.DB,
		appConfig.Logger,
		waitlistServiceConfig(appConfig),
		joinRateLimit(appConfig.Config),
	)
	for _, controller := range waitlistFactory.CreateControllers(adminGuard) {
		rs.MountController(controller)
	}

	articleFactory := articles.NewArticleServiceFactory(appConfig.DB, appConfig.Logger)
	for _, controller := range articleFactory.CreateControllers(adminGuard) {
		rs.MountController(controller)
	}
}

func waitlistServiceConfig(appConfig *config.ApplicationConfig) *waitlist.ServiceConfig {
	cfg := &waitlist.ServiceConfig{
		Mailer:      appConfig.Mailer,
		ProductName: mailer.DefaultProductName,
		Metrics:     appConfig.RouterService.MetricsRegisterer(),
	}

	if appConfig.MailerConfig != nil && appConfig.MailerConfig.ProductName != "" {
		cfg.ProductName = appConfig.MailerConfig.ProductName
	}
	if appConfig.Cache != nil {
		cfg.Cache = appConfig.Cache
	}
	if appConfig.Config != nil {
		cfg.CountCacheTTL = appConfig.Config.WaitlistCountCacheTTL
	}

	return cfg
}

func joinRateLimit(appCfg *config.AppConfig) waitlist.JoinRateLimit {
	limit := waitlist.JoinRateLimit{Requests: 10, Window: time.Minute}
	if appCfg == nil {
		return limit
	}

	if appCfg.JoinRateLimitRequests > 0 {
		limit.Requests = appCfg.JoinRateLimitRequests
	}
	if appCfg.JoinRateLimitWindow > 0 {
		limit.Window = appCfg.JoinRateLimitWindow
	}
	return limit
}
