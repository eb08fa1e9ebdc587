package articles

import (
	"strings"

	"github.com/akeren/landing-api/config/router"
)

func NewPublicArticlesController(service ArticleService) *router.RESTController {
	return router.NewVersionedRESTController(
		"PublicArticlesController",
		"v1",
		"/public/articles",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "", listPublishedHandler(service))
			rs.AddGetHandler(c, nil, ":slug", getPublishedHandler(service))
		},
	)
}

func NewAdminArticlesController(service ArticleService, adminGuard router.MiddlewareFunc) *router.RESTController {
	return router.NewVersionedRESTController(
		"AdminArticlesController",
		"v1",
		"/articles",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, nil, "", createArticleHandler(service), adminGuard)
			rs.AddGetHandler(c, nil, "", listArticlesHandler(service), adminGuard)
			rs.AddGetHandler(c, nil, "categories", listCategoriesHandler(service), adminGuard)
			rs.AddGetHandler(c, nil, "tags", listTagsHandler(service), adminGuard)
			rs.AddGetHandler(c, nil, ":id", getArticleHandler(service), adminGuard)
			rs.AddPutHandler(c, nil, ":id", updateArticleHandler(service), adminGuard)
			rs.AddDeleteHandler(c, nil, ":id", deleteArticleHandler(service), adminGuard)
		},
	)
}

func listQuery(ctx *router.RequestContext) ListArticlesQuery {
	pagination := router.ParsePagination(ctx)
	return ListArticlesQuery{
		Kind:     strings.TrimSpace(ctx.Query("kind")),
		Category: ctx.Query("category"),
		Tag:      ctx.Query("tag"),
		Status:   strings.TrimSpace(ctx.Query("status")),
		Page:     pagination.Page,
		Limit:    pagination.Limit,
	}
}

func listPublishedHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		query := listQuery(ctx)
		query.Status = ""

		response, err := service.ListPublished(ctx.Request.Context(), query)
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Articles retrieved successfully")
	}
}

func getPublishedHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.GetPublishedBySlug(ctx.Request.Context(), ctx.Param("slug"))
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Article retrieved successfully")
	}
}

func createArticleHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req ArticleRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind article request", "error", err)
			return router.ValidationFailedResult(err, &req)
		}

		response, err := service.CreateArticle(ctx.Request.Context(), &req)
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.CreatedResult(response, "Article")
	}
}

func listArticlesHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.ListArticles(ctx.Request.Context(), listQuery(ctx))
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Articles retrieved successfully")
	}
}

func getArticleHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		response, err := service.GetArticle(ctx.Request.Context(), id)
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Article retrieved successfully")
	}
}

func updateArticleHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req ArticleRequest

		if err := ctx.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind article request", "error", err)
			return router.ValidationFailedResult(err, &req)
		}

		response, err := service.UpdateArticle(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(response, "Article updated successfully")
	}
}

func deleteArticleHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		id, errResult := router.ParseUUIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		if err := service.DeleteArticle(ctx.Request.Context(), id); err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(nil, "Article deleted successfully")
	}
}

func listCategoriesHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		categories, err := service.ListCategories(ctx.Request.Context())
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(categories, "Categories retrieved successfully")
	}
}

func listTagsHandler(service ArticleService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		tags, err := service.ListTags(ctx.Request.Context())
		if err != nil {
			return router.ResultFromError(err)
		}

		return router.OKResult(tags, "Tags retrieved successfully")
	}
}
