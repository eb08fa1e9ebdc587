package articles

import (
	"github.com/akeren/landing-api/config/router"
	"github.com/akeren/landing-api/internal/log"
	"gorm.io/gorm"
)

type ArticleServiceFactory interface {
	CreateService() ArticleService
	CreateControllers(adminGuard router.MiddlewareFunc) []*router.RESTController
}

type DefaultArticleServiceFactory struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewArticleServiceFactory(db *gorm.DB, logger *log.Logger) ArticleServiceFactory {
	return &DefaultArticleServiceFactory{db: db, logger: logger}
}

func (f *DefaultArticleServiceFactory) CreateService() ArticleService {
	return NewArticleService(f.logger, NewArticleRepository(f.db))
}

func (f *DefaultArticleServiceFactory) CreateControllers(adminGuard router.MiddlewareFunc) []*router.RESTController {
	service := f.CreateService()
	return []*router.RESTController{
		NewPublicArticlesController(service),
		NewAdminArticlesController(service, adminGuard),
	}
}
