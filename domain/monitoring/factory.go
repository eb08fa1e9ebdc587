package monitoring

import (
	"github.com/akeren/landing-api/config/router"
	"github.com/akeren/landing-api/internal/log"
	"gorm.io/gorm"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	db     *gorm.DB
	logger *log.Logger
	cache  Cache
	mailer MailerHealth
}

// NewMonitoringControllerFactory accepts any sender; only breaker-guarded ones report mailer health.
func NewMonitoringControllerFactory(db *gorm.DB, logger *log.Logger, cache Cache, sender any) MonitoringControllerFactory {
	f := &DefaultMonitoringControllerFactory{
		db:     db,
		logger: logger,
		cache:  cache,
	}
	if health, ok := sender.(MailerHealth); ok {
		f.mailer = health
	}
	return f
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.db, f.logger, f.cache, f.mailer)
}
