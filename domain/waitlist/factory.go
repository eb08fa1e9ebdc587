package waitlist

import (
	"github.com/akeren/landing-api/config/router"
	"github.com/akeren/landing-api/internal/log"
	"gorm.io/gorm"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateControllers(adminGuard router.MiddlewareFunc) []*router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db        *gorm.DB
	logger    *log.Logger
	config    *ServiceConfig
	joinLimit JoinRateLimit
	service   WaitlistService
}

func NewWaitlistServiceFactory(db *gorm.DB, logger *log.Logger, config *ServiceConfig, joinLimit JoinRateLimit) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:        db,
		logger:    logger,
		config:    config,
		joinLimit: joinLimit,
	}
}

// CreateService builds the service once; both controllers share it.
func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	if f.service == nil {
		repository := NewWaitlistRepository(f.db)
		f.service = NewWaitlistService(f.logger, repository, f.config)
	}
	return f.service
}

func (f *DefaultWaitlistServiceFactory) CreateControllers(adminGuard router.MiddlewareFunc) []*router.RESTController {
	service := f.CreateService()
	return []*router.RESTController{
		NewPublicWaitlistController(service, f.joinLimit),
		NewAdminWaitlistController(service, adminGuard),
	}
}
